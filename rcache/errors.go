package rcache

import "errors"

var (
	// ErrInvalidKey is returned when a caller supplies a key that is empty,
	// contains a path separator, or contains a null byte.
	ErrInvalidKey = errors.New("rcache: key must be a non-empty, single filesystem path component")

	// ErrCacheLocationRequired is returned by Open when no explicit
	// cache root directory was supplied. The source this cache is modeled
	// on defaults to a relative "image_cache" path; this implementation
	// treats that default as unspecified behavior and requires callers to
	// be explicit instead (see DESIGN.md).
	ErrCacheLocationRequired = errors.New("rcache: CacheLocation must be set")

	// ErrLocked is returned by Open when another process already holds the
	// advisory lock on the cache root directory.
	ErrLocked = errors.New("rcache: cache root is locked by another process")

	// ErrClosed is returned by any operation performed after Close.
	ErrClosed = errors.New("rcache: cache is closed")
)
