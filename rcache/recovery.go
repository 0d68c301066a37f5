package rcache

import "github.com/coredao-org/rcache/internal/rlog"

// recoverJournal reads every record, tracks W/D intents that never reached a
// matching C, and removes the payload file for each still-pending key. The
// scan is fully separated from the cleanup: a C record appearing later in
// the file always protects its key, regardless of scan order.
func recoverJournal(fs FileSystem, lay layout) error {
	if _, err := fs.Stat(lay.journalPath); err != nil {
		// No journal file yet: nothing to recover from.
		return nil
	}

	jr := newJournal(fs, lay)
	records, err := jr.readAll()
	if err != nil {
		// A completely unreadable/corrupt journal triggers a reset.
		rlog.Warn("journal unreadable, discarding", "err", err)
		return jr.reset()
	}

	pending := make(map[string]string, len(records))
	for _, rec := range records {
		switch rec.tag {
		case "W", "D":
			pending[rec.id] = rec.key
		case "C":
			delete(pending, rec.id)
		}
	}

	for id, key := range pending {
		path := lay.payloadPath(key)
		if err := fs.Remove(path); err != nil {
			rlog.Debug("recovery: no partial payload to remove", "txn", id, "key", key, "err", err)
		} else {
			rlog.Info("recovery: removed partial payload", "txn", id, "key", key)
		}
	}

	return jr.reset()
}
