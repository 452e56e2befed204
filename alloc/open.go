package alloc

import (
	"fmt"

	"github.com/joshuapare/segalloc/internal/format"
	"github.com/joshuapare/segalloc/region"
)

// Open adopts a region previously laid out by New, typically a reopened
// region.File. The free lists are rebuilt by walking every block, and the
// result is verified before it is returned.
func Open(r region.Provider, cfg *Config) (*Allocator, error) {
	a, err := newAllocator(r, cfg)
	if err != nil {
		return nil, err
	}

	data := r.Bytes()
	err = a.walk(data, func(blk format.Block) error {
		if blk.Free() {
			a.insertFree(data, blk.Offset)
		} else {
			a.stats.allocated(blk.Header.Size)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("open region: %w", err)
	}
	if err := a.Verify(); err != nil {
		return nil, fmt.Errorf("open region: %w", err)
	}

	a.log.Debug("allocator opened",
		"config", a.cfg.Name, "region", len(data), "free", len(a.links), "live", a.stats.LiveBlocks)
	return a, nil
}
