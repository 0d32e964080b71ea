package api

// Cache-Control header values.
const (
	// CacheNoStore keeps standings out of shared caches; every view is a fresh read.
	CacheNoStore = "no-store"
)
