//go:build darwin

package dirty

import (
	"context"

	"golang.org/x/sys/unix"
)

// flushRanges flushes dirty ranges to disk.
//
// On macOS, msync() must be handed the original mmap() address, so the
// entire mapping is synced. The kernel only writes pages that are dirty.
func (t *Tracker) flushRanges(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return unix.Msync(data, unix.MS_SYNC)
}

// syncFD uses F_FULLFSYNC when full is set, fsync otherwise. macOS has no
// fdatasync.
func (t *Tracker) syncFD(full bool) error {
	fd := t.m.FD()
	if fd < 0 {
		return nil
	}
	if full {
		_, err := unix.FcntlInt(uintptr(fd), unix.F_FULLFSYNC, 0)
		return err
	}
	return unix.Fsync(fd)
}
