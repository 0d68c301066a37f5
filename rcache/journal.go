package rcache

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coredao-org/rcache/internal/rlog"
)

// journalHeader is the literal, 8-byte, no-separator header every fresh
// journal begins with.
const journalHeader = "R2D2v1.0"

// journal is the append-only write-ahead log: every write or delete intent
// is recorded before it touches the payload store, and committed once the
// store operation succeeds, so a crash mid-operation is always detectable
// on the next Open. Like JournalFileWriter, it keeps a
// single os.O_APPEND file handle open and fsyncs after every record so a
// crash leaves, at worst, a trailing W/D record with no matching C.
type journal struct {
	fs   FileSystem
	lay  layout
	file AppendFile
}

func newJournal(fs FileSystem, lay layout) *journal {
	return &journal{fs: fs, lay: lay}
}

// ensureOpen opens the journal file for appending, creating it (with just
// the header) if it doesn't exist yet.
func (j *journal) ensureOpen() error {
	if j.file != nil {
		return nil
	}
	if _, err := j.fs.Stat(j.lay.journalPath); err != nil {
		if err := j.fs.WriteFile(j.lay.journalPath, []byte(journalHeader), 0o644); err != nil {
			return fmt.Errorf("rcache: create journal: %w", err)
		}
	}
	f, err := j.fs.OpenAppend(j.lay.journalPath)
	if err != nil {
		return fmt.Errorf("rcache: open journal: %w", err)
	}
	j.file = f
	return nil
}

func (j *journal) close() error {
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}

func (j *journal) appendRecord(tag, id, key string, now time.Time) error {
	if err := j.ensureOpen(); err != nil {
		return err
	}
	line := fmt.Sprintf("\n%s: %s %s %s", tag, id, key, now.Format(time.RFC3339Nano))
	if _, err := j.file.Write([]byte(line)); err != nil {
		return fmt.Errorf("rcache: append journal record: %w", err)
	}
	return j.file.Sync()
}

func (j *journal) beginWrite(key string, now time.Time) (string, error) {
	id := uuid.NewString()
	return id, j.appendRecord("W", id, key, now)
}

func (j *journal) beginDelete(key string, now time.Time) (string, error) {
	id := uuid.NewString()
	return id, j.appendRecord("D", id, key, now)
}

func (j *journal) commit(id string) error {
	if err := j.ensureOpen(); err != nil {
		return err
	}
	line := fmt.Sprintf("\nC: %s", id)
	if _, err := j.file.Write([]byte(line)); err != nil {
		return fmt.Errorf("rcache: commit journal record: %w", err)
	}
	return j.file.Sync()
}

// reset deletes the journal file (if present) and writes a fresh one
// containing only the header. Used once at Open (after recovery) and on
// clear_all.
func (j *journal) reset() error {
	if err := j.close(); err != nil {
		rlog.Warn("failed to close journal before reset", "err", err)
	}
	if _, err := j.fs.Stat(j.lay.journalPath); err == nil {
		if err := j.fs.Remove(j.lay.journalPath); err != nil {
			return fmt.Errorf("rcache: remove journal: %w", err)
		}
	}
	if err := j.fs.WriteFile(j.lay.journalPath, []byte(journalHeader), 0o644); err != nil {
		return fmt.Errorf("rcache: write fresh journal: %w", err)
	}
	return nil
}

// journalRecord is one parsed W/D/C line.
type journalRecord struct {
	tag string // "W", "D", or "C"
	id  string
	key string // empty for C records
}

// readAll returns every record after the header, in file order. Malformed
// lines are skipped defensively rather than aborting recovery entirely.
func (j *journal) readAll() ([]journalRecord, error) {
	data, err := j.fs.ReadFile(j.lay.journalPath)
	if err != nil {
		return nil, err
	}
	content := string(data)
	if !strings.HasPrefix(content, journalHeader) {
		return nil, fmt.Errorf("rcache: journal missing %q header", journalHeader)
	}
	content = content[len(journalHeader):]

	var records []journalRecord
	for _, line := range strings.Split(content, "\n") {
		if line == "" {
			continue
		}
		rec, ok := parseJournalLine(line)
		if !ok {
			rlog.Warn("skipping malformed journal line", "line", line)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseJournalLine(line string) (journalRecord, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return journalRecord{}, false
	}
	switch fields[0] {
	case "W:", "D:":
		if len(fields) < 3 {
			return journalRecord{}, false
		}
		tag := strings.TrimSuffix(fields[0], ":")
		return journalRecord{tag: tag, id: fields[1], key: fields[2]}, true
	case "C:":
		return journalRecord{tag: "C", id: fields[1]}, true
	default:
		return journalRecord{}, false
	}
}
