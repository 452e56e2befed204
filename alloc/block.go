package alloc

import (
	"fmt"
	"math"

	"github.com/joshuapare/segalloc/internal/buf"
	"github.com/joshuapare/segalloc/internal/format"
)

const (
	overhead   = format.Overhead
	minBlock   = format.MinBlockSize
	firstBlock = format.BootstrapSize // payload offset of the first real block

	// maxRequest keeps adjusted sizes inside 32-bit offsets.
	maxRequest = math.MaxUint32 - format.PageSize
)

// adjustSize returns the block size for a payload request: header and footer
// added, rounded up to the alignment, never below the minimum block size.
func adjustSize(size uint32) (uint32, error) {
	if size == 0 {
		return 0, ErrZeroSize
	}
	if size > maxRequest {
		return 0, fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}
	if size <= format.DoubleWord {
		return minBlock, nil
	}
	return format.Align8U32(size + overhead), nil
}

// tag returns the header tag of the block at bp.
func (a *Allocator) tag(data []byte, bp uint32) format.Tag {
	return format.ReadTag(data, format.HeaderOffset(bp))
}

// setBoundary writes header and footer of the block at bp and reports both
// words to the dirty tracker.
func (a *Allocator) setBoundary(data []byte, bp, size uint32, allocated bool) {
	format.WriteBoundary(data, bp, format.Tag{Size: size, Allocated: allocated})
	if a.dt != nil {
		a.dt.Add(format.HeaderOffset(bp), format.WordSize)
		a.dt.Add(int(bp+size)-format.DoubleWord, format.WordSize)
	}
}

// setEpilogue writes the terminal header whose payload offset would be bp.
func (a *Allocator) setEpilogue(data []byte, bp uint32) {
	off := format.HeaderOffset(bp)
	format.WriteTag(data, off, format.Tag{Allocated: true})
	if a.dt != nil {
		a.dt.Add(off, format.WordSize)
	}
}

// lookup validates that addr names an allocated block and returns its tag.
func (a *Allocator) lookup(data []byte, addr Addr) (format.Tag, error) {
	if addr < firstBlock || !format.IsAligned(addr) {
		return format.Tag{}, fmt.Errorf("%w: %d", ErrBadAddr, addr)
	}
	if !buf.Has(data, format.HeaderOffset(addr), format.WordSize) {
		return format.Tag{}, fmt.Errorf("%w: %d beyond region end %d", ErrBadAddr, addr, len(data))
	}
	t := a.tag(data, addr)
	if t.Size < minBlock || !format.IsAligned(t.Size) {
		return format.Tag{}, fmt.Errorf("%w: %d has header %v", ErrBadAddr, addr, t)
	}
	ftr := int(addr) + int(t.Size) - format.DoubleWord
	if !buf.Has(data, ftr, format.WordSize) || format.ReadTag(data, ftr) != t {
		return format.Tag{}, fmt.Errorf("%w: %d header %v has no matching footer", ErrBadAddr, addr, t)
	}
	if !t.Allocated {
		return format.Tag{}, fmt.Errorf("%w: %d", ErrNotAllocated, addr)
	}
	return t, nil
}

// payload returns the usable bytes of the block at bp.
func payload(data []byte, bp, size uint32) []byte {
	p, ok := buf.Slice(data, int(bp), int(size-overhead))
	if !ok {
		return nil
	}
	return p
}
