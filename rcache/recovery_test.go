package rcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecoverJournalNoFileIsNoop(t *testing.T) {
	clk := newTestClock()
	fsys := newTestFS(clk)
	lay := newLayout("/root")
	assert.NoError(t, recoverJournal(fsys, lay))
}

func TestRecoverJournalRemovesUncommittedWrite(t *testing.T) {
	clk := newTestClock()
	fsys := newTestFS(clk)
	lay := newLayout("/root")
	fsys.MkdirAll(lay.payloadDir, 0o755)
	fsys.MkdirAll(lay.journalDir, 0o755)

	st := newStore(fsys, lay)
	assert.NoError(t, st.write("partial", []byte("x")))

	j := newJournal(fsys, lay)
	_, err := j.beginWrite("partial", clk.Now())
	assert.NoError(t, err)
	assert.NoError(t, j.close())

	assert.NoError(t, recoverJournal(fsys, lay))

	_, ok, err := st.read("partial")
	assert.NoError(t, err)
	assert.False(t, ok, "uncommitted write must be rolled back")

	records, err := newJournal(fsys, lay).readAll()
	assert.NoError(t, err)
	assert.Empty(t, records, "journal must be reset after recovery")
}

func TestRecoverJournalKeepsCommittedWrite(t *testing.T) {
	clk := newTestClock()
	fsys := newTestFS(clk)
	lay := newLayout("/root")
	fsys.MkdirAll(lay.payloadDir, 0o755)
	fsys.MkdirAll(lay.journalDir, 0o755)

	st := newStore(fsys, lay)
	assert.NoError(t, st.write("done", []byte("x")))

	j := newJournal(fsys, lay)
	id, err := j.beginWrite("done", clk.Now())
	assert.NoError(t, err)
	assert.NoError(t, j.commit(id))
	assert.NoError(t, j.close())

	assert.NoError(t, recoverJournal(fsys, lay))

	_, ok, err := st.read("done")
	assert.NoError(t, err)
	assert.True(t, ok, "committed write must survive recovery")
}

func TestRecoverJournalCorruptFileResets(t *testing.T) {
	clk := newTestClock()
	fsys := newTestFS(clk)
	lay := newLayout("/root")
	fsys.MkdirAll(lay.journalDir, 0o755)
	assert.NoError(t, fsys.WriteFile(lay.journalPath, []byte("not a valid journal"), 0o644))

	assert.NoError(t, recoverJournal(fsys, lay))

	records, err := newJournal(fsys, lay).readAll()
	assert.NoError(t, err)
	assert.Empty(t, records)
}
