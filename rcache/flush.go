package rcache

import "github.com/coredao-org/rcache/internal/rlog"

// flushEngine durably persists every dirty entry in the index and then
// enforces the on-disk size budget. It runs entirely under the caller's
// held lock; it never spawns its own goroutine (the facade does that for
// the async Flush operation).
type flushEngine struct {
	idx   *lruIndex
	store *store
	jrnl  *journal
	clock Clock
}

func newFlushEngine(idx *lruIndex, st *store, jrnl *journal, clock Clock) *flushEngine {
	return &flushEngine{idx: idx, store: st, jrnl: jrnl, clock: clock}
}

// run walks a stable snapshot of index keys (new puts/deletes mid-flush are
// picked up on the next Flush, never half-applied to this one) and applies
// the Updated/Deleted/Accessed transition table, then trims the payload
// store down to maxOnDisk.
func (fe *flushEngine) run(maxOnDisk int64) error {
	for _, key := range fe.idx.snapshotKeys() {
		entry, ok := fe.idx.peek(key)
		if !ok {
			continue
		}
		if err := fe.settle(key, entry); err != nil {
			return err
		}
	}
	return fe.trim(maxOnDisk)
}

// settle persists a single entry according to its current state and advances
// it in place. Updated writes the payload and commits a W record, turning
// the entry Synced. Deleted removes the payload and commits a D record,
// removing the tombstone from the index entirely. Accessed has nothing new
// to persist but still counts as a touch, so its on-disk mtime is bumped to
// keep disk LRU order consistent with memory LRU order; it becomes Synced.
// Synced entries are already durable and are left untouched.
func (fe *flushEngine) settle(key string, entry *cacheEntry) error {
	now := fe.clock.Now()
	switch entry.state {
	case stateUpdated:
		id, err := fe.jrnl.beginWrite(key, now)
		if err != nil {
			return err
		}
		if err := fe.store.write(key, entry.bytes); err != nil {
			return err
		}
		if err := fe.jrnl.commit(id); err != nil {
			return err
		}
		entry.state = stateSynced
		rlog.Debug("flush: wrote entry", "key", key)

	case stateDeleted:
		id, err := fe.jrnl.beginDelete(key, now)
		if err != nil {
			return err
		}
		if err := fe.store.delete(key); err != nil {
			return err
		}
		if err := fe.jrnl.commit(id); err != nil {
			return err
		}
		fe.idx.remove(key)
		rlog.Debug("flush: deleted entry", "key", key)

	case stateAccessed:
		if err := fe.store.setMtime(key, now); err != nil {
			return err
		}
		entry.state = stateSynced
		rlog.Debug("flush: refreshed entry", "key", key)

	case stateSynced:
		// Already durable; nothing to do.
	}
	return nil
}

// trim removes the oldest payload files until the store is at or under
// maxOnDisk. A key still resident in the index is skipped even if it's the
// oldest file on disk: the index state is the fresher source of truth, and
// the entry will be reconsidered next flush if it becomes stale again.
func (fe *flushEngine) trim(maxOnDisk int64) error {
	total, err := fe.store.totalSize()
	if err != nil {
		return err
	}
	if total <= maxOnDisk {
		return nil
	}
	files, err := fe.store.listByAge()
	if err != nil {
		return err
	}
	for _, f := range files {
		if total <= maxOnDisk {
			break
		}
		if fe.idx.contains(f.key) {
			continue
		}
		if err := fe.store.delete(f.key); err != nil {
			return err
		}
		total -= f.size
		rlog.Debug("flush: trimmed entry", "key", f.key, "size", f.size)
	}
	return nil
}
