package trace

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/joshuapare/segalloc/alloc"
)

var (
	// ErrOverlap indicates the allocator returned a payload overlapping a live one.
	ErrOverlap = errors.New("trace: overlapping payloads")

	// ErrPayload indicates live payload bytes changed behind the caller's back.
	ErrPayload = errors.New("trace: payload corrupted")

	// ErrMisuse indicates a trace that frees or resizes an id that is not live,
	// or allocates one that is.
	ErrMisuse = errors.New("trace: invalid id use")
)

// checkInterval is how many requests run between context checks.
const checkInterval = 1024

// Result summarizes one replay.
type Result struct {
	Name        string
	Ops         int
	PeakPayload int64 // high-water mark of requested live bytes
	RegionSize  int
	Stats       alloc.Stats
}

// Utilization is the peak requested payload over the final region size.
func (r Result) Utilization() float64 {
	if r.RegionSize == 0 {
		return 0
	}
	return float64(r.PeakPayload) / float64(r.RegionSize)
}

// Options tunes Replay.
type Options struct {
	// Verify runs the allocator's consistency check every Verify requests.
	// Zero checks only at the end.
	Verify int

	// Progress, when set, is called with the number of requests completed.
	Progress func(done int)
}

type liveID struct {
	addr alloc.Addr
	size uint32
}

// span is a live payload range [lo, hi).
type span struct {
	lo, hi uint32
	id     int
}

// replayer holds the state of one replay.
type replayer struct {
	a     *alloc.Allocator
	live  map[int]liveID
	spans []span // sorted by lo

	payload int64
	peak    int64
}

// Replay runs every request of tr against a. Payloads are filled with an
// id-specific pattern which is checked before each free and across each
// resize, and no two live payloads may overlap.
func Replay(ctx context.Context, a *alloc.Allocator, tr *Trace, opts *Options) (Result, error) {
	if opts == nil {
		opts = &Options{}
	}
	rp := &replayer{a: a, live: make(map[int]liveID, tr.NumIDs)}

	for i, op := range tr.Ops {
		if i%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}
		if err := rp.apply(op); err != nil {
			return Result{}, fmt.Errorf("%s: request %d (%s %d): %w", tr.Name, i, op.Kind, op.ID, err)
		}
		if opts.Verify > 0 && (i+1)%opts.Verify == 0 {
			if err := a.Verify(); err != nil {
				return Result{}, fmt.Errorf("%s: after request %d: %w", tr.Name, i, err)
			}
		}
		if opts.Progress != nil {
			opts.Progress(i + 1)
		}
	}

	if err := a.Verify(); err != nil {
		return Result{}, fmt.Errorf("%s: %w", tr.Name, err)
	}
	return Result{
		Name:        tr.Name,
		Ops:         len(tr.Ops),
		PeakPayload: rp.peak,
		RegionSize:  a.Region().Len(),
		Stats:       a.Stats(),
	}, nil
}

func (rp *replayer) apply(op Op) error {
	switch op.Kind {
	case Alloc:
		if _, ok := rp.live[op.ID]; ok {
			return fmt.Errorf("%w: id already live", ErrMisuse)
		}
		addr, p, err := rp.a.Alloc(op.Size)
		if err != nil {
			return err
		}
		return rp.track(op.ID, addr, p, op.Size)

	case Realloc:
		old, ok := rp.live[op.ID]
		if !ok {
			return fmt.Errorf("%w: resize of id that is not live", ErrMisuse)
		}
		if err := rp.check(op.ID, old); err != nil {
			return err
		}
		addr, p, err := rp.a.Realloc(old.addr, op.Size)
		if err != nil {
			return err
		}
		rp.untrack(op.ID, old)
		if addr == alloc.Nil {
			return nil
		}
		keep := min(old.size, op.Size)
		for i := range keep {
			if p[i] != pattern(op.ID, i) {
				return fmt.Errorf("%w: byte %d not carried over by resize", ErrPayload, i)
			}
		}
		return rp.track(op.ID, addr, p, op.Size)

	case Free:
		old, ok := rp.live[op.ID]
		if !ok {
			return fmt.Errorf("%w: free of id that is not live", ErrMisuse)
		}
		if err := rp.check(op.ID, old); err != nil {
			return err
		}
		if err := rp.a.Free(old.addr); err != nil {
			return err
		}
		rp.untrack(op.ID, old)
		return nil
	}
	return fmt.Errorf("%w: unknown request %s", ErrBadTrace, op.Kind)
}

// track records a new live payload, rejecting overlaps, and fills it.
func (rp *replayer) track(id int, addr alloc.Addr, p []byte, size uint32) error {
	if addr%8 != 0 {
		return fmt.Errorf("payload %d is not 8-byte aligned", addr)
	}
	if uint32(len(p)) < size {
		return fmt.Errorf("payload %d has %d bytes, asked for %d", addr, len(p), size)
	}

	s := span{lo: addr, hi: addr + max(size, 1), id: id}
	i, _ := slices.BinarySearchFunc(rp.spans, s.lo, func(e span, lo uint32) int {
		return cmp.Compare(e.lo, lo)
	})
	if i > 0 && rp.spans[i-1].hi > s.lo {
		return fmt.Errorf("%w: [%d,%d) and id %d", ErrOverlap, s.lo, s.hi, rp.spans[i-1].id)
	}
	if i < len(rp.spans) && rp.spans[i].lo < s.hi {
		return fmt.Errorf("%w: [%d,%d) and id %d", ErrOverlap, s.lo, s.hi, rp.spans[i].id)
	}
	rp.spans = slices.Insert(rp.spans, i, s)

	for j := range size {
		p[j] = pattern(id, j)
	}
	rp.live[id] = liveID{addr: addr, size: size}
	rp.payload += int64(size)
	rp.peak = max(rp.peak, rp.payload)
	return nil
}

func (rp *replayer) untrack(id int, old liveID) {
	i, found := slices.BinarySearchFunc(rp.spans, old.addr, func(e span, lo uint32) int {
		return cmp.Compare(e.lo, lo)
	})
	if found {
		rp.spans = slices.Delete(rp.spans, i, i+1)
	}
	delete(rp.live, id)
	rp.payload -= int64(old.size)
}

// check compares a live payload against its fill pattern.
func (rp *replayer) check(id int, l liveID) error {
	p, err := rp.a.Payload(l.addr)
	if err != nil {
		return err
	}
	for i := range l.size {
		if p[i] != pattern(id, i) {
			return fmt.Errorf("%w: id %d byte %d", ErrPayload, id, i)
		}
	}
	return nil
}

func pattern(id int, i uint32) byte {
	return byte(uint32(id)*131 + i)
}
