package alloc

import "fmt"

// link holds the list neighbours of one free block. 0 means none; no block
// ever has payload offset 0.
type link struct {
	prev uint32
	next uint32
}

// insertFree pushes the free block at bp onto the head of its class list.
// The class comes from the block's current header.
func (a *Allocator) insertFree(data []byte, bp uint32) {
	sc := a.classes.classify(a.tag(data, bp).Size)
	head := a.roots[sc]

	a.links[bp] = link{next: head}
	if head != Nil {
		l := a.links[head]
		l.prev = bp
		a.links[head] = l
	}
	a.roots[sc] = bp
	a.stats.ListInserts++
}

// removeFree splices the block at bp out of its class list. The header must
// still hold the size the block was inserted with, so callers remove before
// they rewrite a block's size. A block with no list entry is reported as
// ErrCorrupt and nothing is changed.
func (a *Allocator) removeFree(data []byte, bp uint32) error {
	l, ok := a.links[bp]
	if !ok {
		a.log.Error("free block missing from list", "addr", bp)
		return fmt.Errorf("%w: free block %d is on no list", ErrCorrupt, bp)
	}

	if l.prev == Nil {
		sc := a.classes.classify(a.tag(data, bp).Size)
		a.roots[sc] = l.next
	} else {
		p := a.links[l.prev]
		p.next = l.next
		a.links[l.prev] = p
	}
	if l.next != Nil {
		n := a.links[l.next]
		n.prev = l.prev
		a.links[l.next] = n
	}
	delete(a.links, bp)
	a.stats.ListRemoves++
	return nil
}

// findFit returns the first free block of at least asize bytes, searching from
// the request's class upwards and each list in order.
func (a *Allocator) findFit(data []byte, asize uint32) (uint32, bool) {
	for sc := a.classes.classify(asize); sc < len(a.roots); sc++ {
		for bp := a.roots[sc]; bp != Nil; bp = a.links[bp].next {
			if a.tag(data, bp).Size >= asize {
				return bp, true
			}
		}
	}
	return Nil, false
}

// FreeBlocks returns the addresses on free list sc, head first. It returns
// nil for an out-of-range class.
func (a *Allocator) FreeBlocks(sc int) []Addr {
	if sc < 0 || sc >= len(a.roots) {
		return nil
	}
	var out []Addr
	for bp := a.roots[sc]; bp != Nil; bp = a.links[bp].next {
		out = append(out, bp)
	}
	return out
}

// NumClasses returns the number of free lists.
func (a *Allocator) NumClasses() int {
	return a.classes.numClasses()
}
