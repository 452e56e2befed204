package region

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joshuapare/segalloc/region/dirty"
)

// File is a region backed by a file. On linux, darwin and freebsd the file is
// mmap'd read-write and remapped on every Extend; elsewhere it is mirrored in
// a heap buffer and written back on Sync.
//
// Because Extend may remap, slices returned by Bytes before an Extend must
// not be used afterwards.
type File struct {
	f       *os.File
	data    []byte
	size    int64
	limit   int
	tracker *dirty.Tracker
}

// Create creates (or truncates) the file at path and returns an empty region.
func Create(path string, opts *Options) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, err
	}
	r := &File{f: f, limit: opts.limit()}
	r.tracker = dirty.NewTracker(r)
	return r, nil
}

// OpenFile opens an existing region file, mapping its current contents.
func OpenFile(path string, opts *Options) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	sz := st.Size()
	limit := opts.limit()
	if sz > int64(limit) {
		_ = f.Close()
		return nil, fmt.Errorf("region: %s is %d bytes, over limit %d: %w", path, sz, limit, ErrExhausted)
	}

	r := &File{f: f, size: sz, limit: limit}
	r.tracker = dirty.NewTracker(r)
	if sz > 0 {
		data, err := r.mapSize(sz)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("region: map %s: %w", path, err)
		}
		r.data = data
	}
	return r, nil
}

// Extend grows the file by n bytes and remaps it. The new bytes are
// zero-initialized by the OS.
func (r *File) Extend(n int) (int, error) {
	if r == nil || r.f == nil {
		return 0, ErrClosed
	}
	old := int(r.size)
	if err := checkExtend(old, n, r.limit); err != nil {
		return 0, fmt.Errorf("file region: extend %d at %d: %w", n, old, err)
	}
	if err := r.grow(r.size + int64(n)); err != nil {
		return 0, err
	}
	return old, nil
}

// Bytes returns the mapped region contents.
func (r *File) Bytes() []byte { return r.data }

// Len returns the current region length.
func (r *File) Len() int { return int(r.size) }

// FD returns the underlying file descriptor, or -1 when closed.
func (r *File) FD() int {
	if r == nil || r.f == nil {
		return -1
	}
	return int(r.f.Fd())
}

// Tracker returns the dirty-range tracker for this region. Hand it to the
// allocator so that block writes are flushed by Sync.
func (r *File) Tracker() *dirty.Tracker { return r.tracker }

// Sync flushes dirty ranges and syncs the file descriptor.
func (r *File) Sync(ctx context.Context) error {
	if r == nil || r.f == nil {
		return ErrClosed
	}
	return r.tracker.Flush(ctx, dirty.FlushAuto)
}

// Close flushes pending changes, releases the mapping and closes the file.
func (r *File) Close() error {
	if r == nil || r.f == nil {
		return nil
	}
	syncErr := r.tracker.Flush(context.Background(), dirty.FlushDataOnly)
	unmapErr := r.release()
	closeErr := r.f.Close()
	r.f = nil
	r.size = 0
	return errors.Join(syncErr, unmapErr, closeErr)
}
