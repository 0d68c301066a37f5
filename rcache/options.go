package rcache

const (
	defaultMaxSizeOnDisk   int64 = 50 * 1024 * 1024 // 50 MiB
	minMaxSizeInMemoryFrac       = 4                // in-memory default is disk / 4
)

// Options configures a Cache at Open.
type Options struct {
	// CacheLocation is the root directory the cache owns. Required: there is
	// no default, since a relative fallback directory has caused surprises
	// in similar designs (see DESIGN.md).
	CacheLocation string

	// MaxSizeOnDisk bounds the payload store, in bytes. Zero means
	// defaultMaxSizeOnDisk.
	MaxSizeOnDisk int64

	// MaxSizeInMemory bounds the tracked in-memory byte total. Zero means
	// MaxSizeOnDisk / minMaxSizeInMemoryFrac. Values above MaxSizeOnDisk are
	// clamped down to it: the in-memory tier is never allowed to promise more
	// than the disk tier can back.
	MaxSizeInMemory int64
}

func (o Options) normalize() (Options, error) {
	if o.CacheLocation == "" {
		return Options{}, ErrCacheLocationRequired
	}
	if o.MaxSizeOnDisk <= 0 {
		o.MaxSizeOnDisk = defaultMaxSizeOnDisk
	}
	if o.MaxSizeInMemory <= 0 {
		o.MaxSizeInMemory = o.MaxSizeOnDisk / minMaxSizeInMemoryFrac
	}
	if o.MaxSizeInMemory > o.MaxSizeOnDisk {
		o.MaxSizeInMemory = o.MaxSizeOnDisk
	}
	return o, nil
}
