package rcache

import (
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
)

// lruIndex is an ordered map from key to cacheEntry, recency-ordered so the
// least-recently-used entry is the one RemoveOldest returns. It is built on
// github.com/hashicorp/golang-lru rather than a hand-rolled container/list,
// since Get/Add there already implement the move-to-back-on-touch discipline
// this needs. Capacity is set to the largest practical int so the underlying
// structure never evicts on its own; byte-budget eviction is driven
// explicitly by evictUntil, and deleted entries are excluded from the
// tracked byte total.
type lruIndex struct {
	inner *lru.Cache[string, *cacheEntry]
	bytes int64
}

func newLRUIndex() *lruIndex {
	c, err := lru.New[string, *cacheEntry](math.MaxInt32)
	if err != nil {
		// Only returns an error for a non-positive size, which math.MaxInt32
		// never is.
		panic(err)
	}
	return &lruIndex{inner: c}
}

// get returns the entry for key, moving it to the most-recently-used
// position as a side effect: any successful lookup counts as a touch.
func (l *lruIndex) get(key string) (*cacheEntry, bool) {
	return l.inner.Get(key)
}

// peek looks up an entry without affecting recency.
func (l *lruIndex) peek(key string) (*cacheEntry, bool) {
	return l.inner.Peek(key)
}

func (l *lruIndex) contains(key string) bool {
	return l.inner.Contains(key)
}

// put inserts or replaces the entry for key at the MRU position, keeping the
// tracked byte total (over non-Deleted entries) correct.
func (l *lruIndex) put(key string, e *cacheEntry) {
	if old, ok := l.inner.Peek(key); ok && old.state != stateDeleted {
		l.bytes -= int64(old.size)
	}
	l.inner.Add(key, e)
	if e.state != stateDeleted {
		l.bytes += int64(e.size)
	}
}

// markDeleted transitions an in-place entry to the Deleted tombstone state,
// removing its bytes from the tracked memory total.
func (l *lruIndex) markDeleted(key string) {
	e, ok := l.inner.Peek(key)
	if !ok || e.state == stateDeleted {
		return
	}
	l.bytes -= int64(e.size)
	e.state = stateDeleted
}

// remove unlinks key entirely, e.g. once a flush has persisted its deletion.
func (l *lruIndex) remove(key string) {
	if old, ok := l.inner.Peek(key); ok {
		if old.state != stateDeleted {
			l.bytes -= int64(old.size)
		}
		l.inner.Remove(key)
	}
}

// lenBytes is the byte-sum of all non-Deleted entries.
func (l *lruIndex) lenBytes() int64 {
	return l.bytes
}

// evictUntil performs pure in-memory eviction until the tracked byte total is
// at or below max. It never touches disk or the journal and never changes an
// entry's state: a dirty entry can be evicted from memory here while its
// on-disk copy (if any) remains the durable record.
func (l *lruIndex) evictUntil(max int64) {
	for l.bytes > max {
		_, v, ok := l.inner.RemoveOldest()
		if !ok {
			return
		}
		if v.state != stateDeleted {
			l.bytes -= int64(v.size)
		}
	}
}

// snapshotKeys returns every key currently in the index. Used by the flush
// engine, which must not mutate the index map while walking it.
func (l *lruIndex) snapshotKeys() []string {
	return l.inner.Keys()
}

func (l *lruIndex) clear() {
	l.inner.Purge()
	l.bytes = 0
}

func (l *lruIndex) len() int {
	return l.inner.Len()
}
