package alloc

import (
	"errors"
	"fmt"

	"github.com/joshuapare/segalloc/internal/format"
)

// walk visits every block between the prologue and the epilogue in address
// order. It fails if a block does not decode or the epilogue is not at the
// end of the region.
func (a *Allocator) walk(data []byte, fn func(format.Block) error) error {
	if len(data) < format.BootstrapSize {
		return fmt.Errorf("%w: region is %d bytes", ErrCorrupt, len(data))
	}
	pro := format.Tag{Size: format.PrologueSize, Allocated: true}
	if format.ReadTag(data, format.PrologueHeaderOffset) != pro ||
		format.ReadTag(data, format.PrologueFooterOffset) != pro {
		return fmt.Errorf("%w: bad prologue", ErrCorrupt)
	}

	bp := uint32(firstBlock)
	for {
		blk, next, err := format.DecodeBlock(data, bp)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if blk.Header.IsEpilogue() {
			if int(bp) != len(data) {
				return fmt.Errorf("%w: epilogue at %d, region ends at %d", ErrCorrupt, bp-format.WordSize, len(data))
			}
			return nil
		}
		if blk.Header.Size < minBlock {
			return fmt.Errorf("%w: block %d smaller than %d bytes", ErrCorrupt, bp, minBlock)
		}
		if err := fn(blk); err != nil {
			return err
		}
		bp = next
	}
}

// errStopWalk ends a Walk early without reporting an error.
var errStopWalk = errors.New("stop walk")

// Walk calls fn for every block in address order until fn returns false.
// The prologue and epilogue are not reported.
func (a *Allocator) Walk(fn func(Block) bool) error {
	err := a.walk(a.r.Bytes(), func(blk format.Block) error {
		if !fn(Block{Addr: blk.Offset, Size: blk.Header.Size, Allocated: blk.Header.Allocated}) {
			return errStopWalk
		}
		return nil
	})
	if errors.Is(err, errStopWalk) {
		return nil
	}
	return err
}

// Verify checks the structure of the region against the free lists:
//
//   - every block's header matches its footer and is 8-byte aligned
//   - no two free blocks are physically adjacent
//   - every free block is on exactly the list its size maps to
//   - list links are mutually consistent and contain only free blocks
//   - the epilogue closes the region
//   - the in-use byte count matches the allocated blocks
//
// It returns an error wrapping ErrCorrupt describing the first violation.
func (a *Allocator) Verify() error {
	data := a.r.Bytes()

	var (
		prevFree  bool
		freeCount int
		inUse     int64
		live      int
	)
	err := a.walk(data, func(blk format.Block) error {
		if blk.Free() {
			if prevFree {
				return fmt.Errorf("%w: free block %d follows a free block", ErrCorrupt, blk.Offset)
			}
			if _, ok := a.links[blk.Offset]; !ok {
				return fmt.Errorf("%w: free block %d (%d bytes) is on no list", ErrCorrupt, blk.Offset, blk.Header.Size)
			}
			freeCount++
		} else {
			inUse += int64(blk.Header.Size)
			live++
		}
		prevFree = blk.Free()
		return nil
	})
	if err != nil {
		a.log.Error("heap verification failed", "err", err)
		return err
	}

	listed := 0
	for sc, root := range a.roots {
		prev := uint32(Nil)
		for bp := root; bp != Nil; bp = a.links[bp].next {
			l, ok := a.links[bp]
			if !ok {
				return fmt.Errorf("%w: list %d reaches unknown block %d", ErrCorrupt, sc, bp)
			}
			if l.prev != prev {
				return fmt.Errorf("%w: block %d on list %d has prev %d, want %d", ErrCorrupt, bp, sc, l.prev, prev)
			}
			t := a.tag(data, bp)
			if t.Allocated {
				return fmt.Errorf("%w: allocated block %d on free list %d", ErrCorrupt, bp, sc)
			}
			if got := a.classes.classify(t.Size); got != sc {
				return fmt.Errorf("%w: block %d (%d bytes) on list %d, belongs on %d", ErrCorrupt, bp, t.Size, sc, got)
			}
			listed++
			if listed > len(a.links) {
				return fmt.Errorf("%w: cycle in list %d", ErrCorrupt, sc)
			}
			prev = bp
		}
	}
	if listed != freeCount || listed != len(a.links) {
		return fmt.Errorf("%w: %d free blocks, %d listed, %d links", ErrCorrupt, freeCount, listed, len(a.links))
	}
	if inUse != a.stats.BytesInUse || live != a.stats.LiveBlocks {
		return fmt.Errorf("%w: %d bytes in %d blocks allocated, counters say %d in %d",
			ErrCorrupt, inUse, live, a.stats.BytesInUse, a.stats.LiveBlocks)
	}
	return nil
}
