package alloc

import (
	"fmt"
	"math"

	"github.com/joshuapare/segalloc/internal/buf"
	"github.com/joshuapare/segalloc/internal/format"
)

// grow extends the region by words 4-byte words, rounded up to an even
// count. The new space becomes one free block whose header replaces the old
// epilogue; a new epilogue is written at the top. The block is coalesced
// with a free predecessor and inserted into its list. grow returns the
// address of the resulting free block.
//
// Nothing is written unless the provider extends successfully.
func (a *Allocator) grow(words uint32) (uint32, error) {
	words = format.EvenWords(words)
	if words > math.MaxUint32/format.WordSize {
		return Nil, fmt.Errorf("%w: grow by %d words", ErrTooLarge, words)
	}
	size := words * format.WordSize

	cur := a.r.Len()
	if uint64(cur) > math.MaxUint32 {
		return Nil, fmt.Errorf("%w: region is %d bytes", ErrNoSpace, cur)
	}
	if _, ok := buf.AddU32(uint32(cur), size); !ok {
		return Nil, fmt.Errorf("%w: grow by %d at %d overflows 32-bit offsets", ErrNoSpace, size, cur)
	}

	off, err := a.r.Extend(int(size))
	if err != nil {
		return Nil, fmt.Errorf("%w: grow by %d: %w", ErrNoSpace, size, err)
	}

	data := a.r.Bytes()
	bp := uint32(off)
	a.setBoundary(data, bp, size, false)
	a.setEpilogue(data, bp+size)

	a.stats.GrowCalls++
	a.stats.GrowBytes += int64(size)
	a.log.Debug("region grown", "bytes", size, "region", len(data))
	if a.cfg.OnGrow != nil {
		a.cfg.OnGrow(size)
	}

	return a.coalesce(data, bp)
}
