//go:build !linux && !darwin && !freebsd

package region

import (
	"fmt"
	"io"
)

// mapSize reads the file into a heap buffer when mmap is not available.
func (r *File) mapSize(size int64) ([]byte, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(io.NewSectionReader(r.f, 0, size), data); err != nil {
		return nil, err
	}
	return data, nil
}

// grow extends the file and the in-memory mirror. The new bytes are zero.
func (r *File) grow(newSize int64) error {
	if err := r.f.Truncate(newSize); err != nil {
		return fmt.Errorf("region: failed to extend file: %w", err)
	}
	data := make([]byte, newSize)
	copy(data, r.data)
	r.data = data
	r.size = newSize
	return nil
}

// WriteRange writes p back to the file at off. The dirty tracker calls it in
// place of msync on platforms without a shared mapping.
func (r *File) WriteRange(off int64, p []byte) error {
	_, err := r.f.WriteAt(p, off)
	return err
}

// SyncFile flushes the file descriptor.
func (r *File) SyncFile() error {
	return r.f.Sync()
}

func (r *File) release() error {
	r.data = nil
	return nil
}
