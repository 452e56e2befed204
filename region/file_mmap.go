//go:build linux || darwin || freebsd

package region

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

func (r *File) mapSize(size int64) ([]byte, error) {
	return unix.Mmap(r.FD(), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

// grow extends the file to newSize and remaps it. On failure the old mapping
// is restored so the region stays usable at its previous size.
func (r *File) grow(newSize int64) error {
	if r.data != nil {
		if err := unix.Munmap(r.data); err != nil {
			return fmt.Errorf("region: failed to unmap before grow: %w", err)
		}
		r.data = nil
	}

	if err := r.f.Truncate(newSize); err != nil {
		r.restore()
		return fmt.Errorf("region: failed to extend file: %w", err)
	}

	data, err := r.mapSize(newSize)
	if err != nil {
		_ = r.f.Truncate(r.size)
		r.restore()
		return fmt.Errorf("region: failed to remap after grow: %w", err)
	}

	r.data = data
	r.size = newSize
	return nil
}

// restore remaps the region at its recorded size after a failed grow.
func (r *File) restore() {
	if r.size == 0 {
		return
	}
	data, err := r.mapSize(r.size)
	if err == nil {
		r.data = data
	}
}

func (r *File) release() error {
	if r.data == nil {
		return nil
	}
	err := unix.Munmap(r.data)
	r.data = nil
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		return nil
	}
	return err
}
