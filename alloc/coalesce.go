package alloc

import "github.com/joshuapare/segalloc/internal/format"

// coalesce merges the free block at bp with whichever physical neighbours are
// free, inserts the result into its free list and returns its address.
// bp itself must not be on a list yet. Neighbours are removed from their
// lists before any size field changes, so a neighbour missing from its list
// aborts the merge with ErrCorrupt before anything is rewritten.
func (a *Allocator) coalesce(data []byte, bp uint32) (uint32, error) {
	size := a.tag(data, bp).Size
	prevAlloc := format.ReadTag(data, int(bp)-format.DoubleWord).Allocated
	next := bp + size
	nextTag := a.tag(data, next)

	switch {
	case prevAlloc && nextTag.Allocated:
		a.stats.CoalesceNone++

	case prevAlloc && !nextTag.Allocated:
		if err := a.removeFree(data, next); err != nil {
			return Nil, err
		}
		a.stats.CoalesceNext++
		size += nextTag.Size
		a.setBoundary(data, bp, size, false)

	case !prevAlloc && nextTag.Allocated:
		prev := format.PrevBlock(data, bp)
		if err := a.removeFree(data, prev); err != nil {
			return Nil, err
		}
		a.stats.CoalescePrev++
		size += a.tag(data, prev).Size
		bp = prev
		a.setBoundary(data, bp, size, false)

	default:
		prev := format.PrevBlock(data, bp)
		if _, ok := a.links[next]; !ok {
			return Nil, a.removeFree(data, next)
		}
		if err := a.removeFree(data, prev); err != nil {
			return Nil, err
		}
		if err := a.removeFree(data, next); err != nil {
			return Nil, err
		}
		a.stats.CoalesceBoth++
		size += a.tag(data, prev).Size + nextTag.Size
		bp = prev
		a.setBoundary(data, bp, size, false)
	}

	a.insertFree(data, bp)
	return bp, nil
}
