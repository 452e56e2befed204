package dirty

// DirtyTracker is the minimal interface for tracking dirty (modified) byte ranges.
// Implementations track which parts of a file-backed region have been modified
// and need to be flushed to disk.
//
// This interface is intended for components that only need to report dirty
// regions but don't manage flushing themselves (the allocator).
type DirtyTracker interface {
	// Add marks a byte range as dirty.
	// off is the offset from the start of the region, length is the number of bytes.
	Add(off, length int)
}

// Mapping is the backing store a Tracker flushes.
type Mapping interface {
	Bytes() []byte
	FD() int
}

// RangeWriter is implemented by mappings that are not shared with the file
// (heap mirrors). Flushing writes each dirty range back through it.
type RangeWriter interface {
	WriteRange(off int64, p []byte) error
	SyncFile() error
}
