package rcache

import (
	"sync"

	"github.com/coredao-org/rcache/internal/rlog"
)

// Cache is a two-tier key/value cache: a bounded in-memory LRU index backed
// by a bounded on-disk payload store, with a write-ahead journal making
// flushes crash-recoverable. All exported methods are safe for concurrent
// use. Every operation, including reads, takes the same lock: a fetch that
// hits moves its entry to the most-recently-used position, which is a write
// to the index even though nothing else about the cache changes.
type Cache struct {
	mu sync.Mutex

	opts Options
	lay  layout
	fs   FileSystem
	clk  Clock

	idx   *lruIndex
	store *store
	jrnl  *journal
	miss  *missFilter
	flush *flushEngine

	lock *dirLock

	closed bool
}

// Open prepares the cache root (creating it if necessary), recovers from any
// journal left by an unclean shutdown, and returns a ready-to-use Cache.
func Open(opts Options) (*Cache, error) {
	return OpenWithDeps(opts, osFS{}, realClock{})
}

// OpenWithDeps is Open with the FileSystem and Clock capability objects
// supplied explicitly, for embedding applications that want to run the
// cache against something other than the real filesystem (tests, an
// in-memory rcachefs.Mem, a mock clock for deterministic recency).
func OpenWithDeps(opts Options, fsys FileSystem, clk Clock) (*Cache, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	lay := newLayout(opts.CacheLocation)

	if err := fsys.MkdirAll(lay.payloadDir, 0o755); err != nil {
		return nil, err
	}
	if err := fsys.MkdirAll(lay.journalDir, 0o755); err != nil {
		return nil, err
	}

	var lock *dirLock
	if _, ok := fsys.(realFS); ok {
		lock, err = acquireDirLock(lay.lockPath)
		if err != nil {
			return nil, err
		}
	}

	if err := recoverJournal(fsys, lay); err != nil {
		if lock != nil {
			_ = lock.release()
		}
		return nil, err
	}

	jrnl := newJournal(fsys, lay)
	if err := jrnl.reset(); err != nil {
		if lock != nil {
			_ = lock.release()
		}
		return nil, err
	}

	idx := newLRUIndex()
	st := newStore(fsys, lay)

	c := &Cache{
		opts:  opts,
		lay:   lay,
		fs:    fsys,
		clk:   clk,
		idx:   idx,
		store: st,
		jrnl:  jrnl,
		miss:  newMissFilter(),
		flush: newFlushEngine(idx, st, jrnl, clk),
		lock:  lock,
	}
	rlog.Info("rcache opened", "root", opts.CacheLocation,
		"max_disk", opts.MaxSizeOnDisk, "max_memory", opts.MaxSizeInMemory)
	return c, nil
}

// Close releases the directory lock (if any) and closes the journal handle.
// Pending in-memory writes are not flushed by Close; call Flush first if
// that durability is needed.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	err := c.jrnl.close()
	if c.lock != nil {
		if rerr := c.lock.release(); rerr != nil && err == nil {
			err = rerr
		}
	}
	rlog.Info("rcache closed", "root", c.opts.CacheLocation)
	return err
}

// Fetch returns the payload for key, checking memory first and falling back
// to disk. A disk hit is promoted into the index as Accessed. Any hit —
// whether already resident or freshly loaded — counts as a touch, moves the
// entry to the most-recently-used position, and, if the entry was Synced,
// flips it to Accessed so the next Flush refreshes its on-disk mtime. Every
// return-with-a-hit path enforces the in-memory size budget before
// returning.
func (c *Cache) Fetch(key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, false, ErrClosed
	}
	if err := validateKey(key); err != nil {
		return nil, false, err
	}

	if entry, ok := c.idx.get(key); ok {
		if entry.state == stateDeleted {
			return nil, false, nil
		}
		if entry.state == stateSynced {
			entry.state = stateAccessed
		}
		entry.lastAccessed = c.clk.Now()
		c.idx.evictUntil(c.opts.MaxSizeInMemory)
		return entry.bytes, true, nil
	}

	if c.miss.isMiss(key) {
		return nil, false, nil
	}

	data, ok, err := c.store.read(key)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		c.miss.markMiss(key)
		return nil, false, nil
	}

	entry := &cacheEntry{
		key:          key,
		bytes:        data,
		state:        stateAccessed,
		lastAccessed: c.clk.Now(),
		size:         len(data),
	}
	c.idx.put(key, entry)
	c.idx.evictUntil(c.opts.MaxSizeInMemory)
	return data, true, nil
}

// Store inserts or replaces the payload for key, marking it Updated. The
// write becomes durable on the next Flush. Unlike Fetch, this never triggers
// memory eviction: the budget is enforced lazily, on the next Fetch (Flush
// does not evict from memory either).
func (c *Cache) Store(key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if err := validateKey(key); err != nil {
		return err
	}
	c.miss.clear(key)
	entry := &cacheEntry{
		key:          key,
		bytes:        data,
		state:        stateUpdated,
		lastAccessed: c.clk.Now(),
		size:         len(data),
	}
	c.idx.put(key, entry)
	return nil
}

// Delete removes key. If the key is currently resident, its entry is marked
// Deleted (a tombstone, invisible to Fetch but still occupying no memory
// budget) so the removal survives until the next Flush persists it. If the
// key is not resident but may exist on disk, a tombstone is synthesized so a
// concurrent Fetch cannot resurrect it before the flush runs.
func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if err := validateKey(key); err != nil {
		return err
	}
	c.miss.clear(key)
	if c.idx.contains(key) {
		c.idx.markDeleted(key)
		return nil
	}
	entry := &cacheEntry{
		key:          key,
		state:        stateDeleted,
		lastAccessed: c.clk.Now(),
	}
	c.idx.put(key, entry)
	return nil
}

// ClearMemory evicts everything from the in-memory index without touching
// disk or the journal. Entries that were never flushed are lost.
func (c *Cache) ClearMemory() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.idx.clear()
	c.miss.reset()
	return nil
}

// MemSize returns the current tracked in-memory byte total.
func (c *Cache) MemSize() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrClosed
	}
	return c.idx.lenBytes(), nil
}

// Flush schedules a background flush: every dirty entry is persisted through
// the journal and the disk budget is enforced. It returns immediately; call
// Wait on the returned Future to block for completion.
func (c *Cache) Flush() *Future[struct{}] {
	fut := newFuture[struct{}]()
	go func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			fut.complete(struct{}{}, ErrClosed)
			return
		}
		err := c.flush.run(c.opts.MaxSizeOnDisk)
		fut.complete(struct{}{}, err)
	}()
	return fut
}

// FileSize schedules a background measurement of total on-disk payload
// bytes.
func (c *Cache) FileSize() *Future[int64] {
	fut := newFuture[int64]()
	go func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			fut.complete(0, ErrClosed)
			return
		}
		size, err := c.store.totalSize()
		fut.complete(size, err)
	}()
	return fut
}

// ClearAll schedules a background wipe of both tiers: the in-memory index,
// every payload file, and the journal (reset to a fresh, header-only file).
func (c *Cache) ClearAll() *Future[struct{}] {
	fut := newFuture[struct{}]()
	go func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			fut.complete(struct{}{}, ErrClosed)
			return
		}
		c.idx.clear()
		c.miss.reset()
		err := c.fs.RemoveAll(c.lay.payloadDir)
		if err == nil {
			err = c.fs.MkdirAll(c.lay.payloadDir, 0o755)
		}
		if err == nil {
			err = c.jrnl.reset()
		}
		fut.complete(struct{}{}, err)
	}()
	return fut
}
