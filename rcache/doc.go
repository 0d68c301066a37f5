// Package rcache implements a two-tier (in-memory + on-disk) key/value cache
// with LRU eviction and write-ahead journaling. Clients store and fetch opaque
// byte payloads by string key; committed entries survive process restarts,
// both tiers are bounded in size, and the cache is safe for concurrent use.
package rcache
