package rcache

import "github.com/VictoriaMetrics/fastcache"

// missFilterBytes sizes the negative-lookup accelerator. fastcache rounds
// this up internally; it only needs to be big enough to be useful, not
// precise.
const missFilterBytes = 1 << 20 // 1 MiB

// missFilter remembers keys a fetch most recently confirmed absent from
// disk, so a repeated fetch for the same never-stored key can skip the
// payload-store read entirely. It is purely an accelerator: fastcache's own
// (non-LRU, hash-bucketed) eviction may forget an entry at any time, which
// only costs a redundant disk read — it can never cause a false "present"
// answer. It is never treated as a source of truth and its contents are
// never enumerated.
type missFilter struct {
	c *fastcache.Cache
}

func newMissFilter() *missFilter {
	return &missFilter{c: fastcache.New(missFilterBytes)}
}

var missMarker = []byte{1}

func (m *missFilter) markMiss(key string) {
	m.c.Set([]byte(key), missMarker)
}

func (m *missFilter) isMiss(key string) bool {
	return m.c.Has([]byte(key))
}

func (m *missFilter) clear(key string) {
	m.c.Del([]byte(key))
}

func (m *missFilter) reset() {
	m.c.Reset()
}
