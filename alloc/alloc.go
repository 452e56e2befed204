package alloc

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joshuapare/segalloc/internal/format"
	"github.com/joshuapare/segalloc/internal/logger"
	"github.com/joshuapare/segalloc/region"
	"github.com/joshuapare/segalloc/region/dirty"
)

// Runtime debug flag for allocation logging - controlled by SEGALLOC_LOG_ALLOC env var.
var logAlloc = os.Getenv("SEGALLOC_LOG_ALLOC") != ""

// Allocator manages one region with boundary-tagged blocks and segregated
// LIFO free lists.
type Allocator struct {
	r  region.Provider
	dt DirtyTracker // Dirty range tracker for header/footer writes, may be nil

	cfg     Config
	classes *sizeClassTable

	// Free list heads per size class and the link table for every free block.
	roots []uint32
	links map[uint32]link

	log   *slog.Logger
	trace bool // per-request debug logging

	stats Stats
}

// trackerSource is implemented by regions that carry their own dirty tracker.
type trackerSource interface {
	Tracker() *dirty.Tracker
}

// New bootstraps an empty region and returns an allocator ready for use.
// The region receives the padding word, the prologue and the epilogue, and
// is then grown by one chunk. A nil cfg uses DefaultConfig.
func New(r region.Provider, cfg *Config) (*Allocator, error) {
	a, err := newAllocator(r, cfg)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrRegionNotEmpty, r.Len())
	}
	if err := a.init(); err != nil {
		return nil, err
	}
	return a, nil
}

func newAllocator(r region.Provider, cfg *Config) (*Allocator, error) {
	if cfg == nil {
		cfg = &DefaultConfig
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	a := &Allocator{
		r:       r,
		cfg:     *cfg,
		classes: newSizeClassTable(cfg),
		roots:   make([]uint32, cfg.NumClasses),
		links:   make(map[uint32]link),
		log:     cfg.Logger,
	}

	a.dt = cfg.Tracker
	if a.dt == nil {
		if ts, ok := r.(trackerSource); ok {
			a.dt = ts.Tracker()
		}
	}

	if a.log == nil {
		a.log = logger.L
	}
	if logAlloc {
		a.log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	a.trace = a.log.Enabled(context.Background(), slog.LevelDebug)
	return a, nil
}

// init writes the bootstrap area and performs the initial growth.
func (a *Allocator) init() error {
	if _, err := a.r.Extend(format.BootstrapSize); err != nil {
		return fmt.Errorf("%w: bootstrap: %w", ErrNoSpace, err)
	}
	data := a.r.Bytes()

	format.PutU32(data, format.PaddingOffset, 0)
	a.setBoundary(data, format.PrologueBlock, format.PrologueSize, true)
	a.setEpilogue(data, firstBlock)
	if a.dt != nil {
		a.dt.Add(format.PaddingOffset, format.WordSize)
	}

	if _, err := a.grow(a.cfg.ChunkSize / format.WordSize); err != nil {
		return err
	}
	a.log.Debug("allocator initialised",
		"config", a.cfg.Name, "classes", len(a.roots), "region", a.r.Len())
	return nil
}

// Alloc returns a block with room for at least size bytes. The returned slice
// covers the block's whole payload, which may exceed size.
//
// Alloc fails with ErrZeroSize for size 0 and with ErrNoSpace when no block
// fits and the region cannot grow. Neither failure changes allocator state,
// statistics included.
func (a *Allocator) Alloc(size uint32) (Addr, []byte, error) {
	asize, err := adjustSize(size)
	if err != nil {
		return Nil, nil, err
	}

	data := a.r.Bytes()
	bp, ok := a.findFit(data, asize)
	if !ok {
		bp, err = a.grow(max(asize, a.cfg.ChunkSize) / format.WordSize)
		if err != nil {
			a.log.Warn("allocation failed", "size", size, "asize", asize, "region", a.r.Len(), "err", err)
			return Nil, nil, err
		}
		data = a.r.Bytes()
	}

	if err := a.removeFree(data, bp); err != nil {
		return Nil, nil, err
	}
	bsize := a.place(data, bp, asize)

	a.stats.AllocCalls++
	if ok {
		a.stats.AllocFastPath++
	} else {
		a.stats.AllocSlowPath++
	}
	if a.trace {
		a.log.Debug("alloc", "size", size, "asize", asize, "addr", bp, "block", bsize, "grew", !ok)
	}
	return bp, payload(data, bp, bsize), nil
}

// place marks the unlisted free block at bp allocated, splitting off the tail
// as a new free block when it is at least the minimum block size. It returns
// the size of the allocated block.
func (a *Allocator) place(data []byte, bp, asize uint32) uint32 {
	csize := a.tag(data, bp).Size

	if csize-asize >= minBlock {
		a.setBoundary(data, bp, asize, true)
		rest := bp + asize
		a.setBoundary(data, rest, csize-asize, false)
		a.insertFree(data, rest)
		a.stats.SplitCount++
		csize = asize
	} else {
		a.setBoundary(data, bp, csize, true)
	}

	// The caller fills the payload next; flush it with the tags.
	if a.dt != nil {
		a.dt.Add(int(bp), int(csize-overhead))
	}
	a.stats.allocated(csize)
	return csize
}

// Free releases the block at addr and merges it with free neighbours.
// Free(Nil) is a no-op. Addresses that do not name an allocated block are
// rejected with ErrBadAddr or ErrNotAllocated and leave the region untouched.
func (a *Allocator) Free(addr Addr) error {
	if addr == Nil {
		return nil
	}
	a.stats.FreeCalls++

	data := a.r.Bytes()
	t, err := a.lookup(data, addr)
	if err != nil {
		return err
	}
	if err := a.release(data, addr, t.Size); err != nil {
		return err
	}
	if a.trace {
		a.log.Debug("free", "addr", addr, "block", t.Size)
	}
	return nil
}

// release frees a validated allocated block.
func (a *Allocator) release(data []byte, bp, size uint32) error {
	a.setBoundary(data, bp, size, false)
	a.stats.freed(size)
	_, err := a.coalesce(data, bp)
	return err
}

// Payload returns the usable bytes of the allocated block at addr. Slices
// from a file-backed region go stale when the region grows; call Payload
// again after any Alloc or Realloc.
func (a *Allocator) Payload(addr Addr) ([]byte, error) {
	data := a.r.Bytes()
	t, err := a.lookup(data, addr)
	if err != nil {
		return nil, err
	}
	return payload(data, addr, t.Size), nil
}

// Region returns the provider the allocator manages.
func (a *Allocator) Region() region.Provider { return a.r }

// Config returns a copy of the allocator's configuration.
func (a *Allocator) Config() Config { return a.cfg }
