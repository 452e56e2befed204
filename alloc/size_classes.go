package alloc

import (
	"fmt"
	"log/slog"
	"math/bits"

	"github.com/joshuapare/segalloc/internal/format"
)

const (
	// NumClasses is the number of size classes in DefaultConfig.
	NumClasses = 12

	// ChunkSize is the default minimum growth step in bytes.
	ChunkSize = 4096
)

// Config defines the size class ladder and growth policy of an allocator.
// Different configurations can be compared with the trace replayer.
type Config struct {
	// Name for this configuration (for reports)
	Name string

	// NumClasses is the number of segregated free lists. The last one is a
	// catch-all for blocks above every bound.
	NumClasses int

	// MinClassBound is the upper bound of class 0. Each further class doubles
	// it. Must be a power of two no smaller than the minimum block size.
	MinClassBound uint32

	// ChunkSize is the smallest amount the region grows by on a fit miss.
	// Must be a multiple of 8 no smaller than the minimum block size.
	ChunkSize uint32

	// Logger receives growth and exhaustion events. Nil uses logger.L.
	Logger *slog.Logger

	// Tracker is told about every byte range the allocator writes. Nil uses
	// the region's own tracker when it has one.
	Tracker DirtyTracker

	// OnGrow is called after each successful growth with the bytes added
	// (nil in production).
	OnGrow func(bytes uint32)
}

// Predefined configurations.
var (
	// DefaultConfig: 12 classes from 16 bytes to a >16 KiB catch-all, 4 KiB growth.
	DefaultConfig = Config{
		Name:          "Default",
		NumClasses:    NumClasses,
		MinClassBound: format.MinBlockSize,
		ChunkSize:     ChunkSize,
	}

	// ConfigCoarse: fewer lists and bigger growth steps. Fewer list heads to
	// scan, more internal fragmentation in the catch-all class.
	ConfigCoarse = Config{
		Name:          "Coarse",
		NumClasses:    8,
		MinClassBound: format.MinBlockSize,
		ChunkSize:     16 << 10,
	}

	// ConfigFine: 16 classes and 1 KiB growth steps, for small heaps.
	ConfigFine = Config{
		Name:          "Fine",
		NumClasses:    16,
		MinClassBound: format.MinBlockSize,
		ChunkSize:     1 << 10,
	}
)

// validate checks a configuration.
func (c *Config) validate() error {
	if c.NumClasses < 1 || c.NumClasses > 32 {
		return fmt.Errorf("%w: NumClasses %d not in [1, 32]", ErrBadConfig, c.NumClasses)
	}
	if c.MinClassBound < format.MinBlockSize || bits.OnesCount32(c.MinClassBound) != 1 {
		return fmt.Errorf("%w: MinClassBound %d must be a power of two >= %d",
			ErrBadConfig, c.MinClassBound, format.MinBlockSize)
	}
	if bits.Len32(c.MinClassBound)+c.NumClasses-2 >= 32 {
		return fmt.Errorf("%w: class bounds overflow 32 bits", ErrBadConfig)
	}
	if c.ChunkSize < format.MinBlockSize || !format.IsAligned(c.ChunkSize) {
		return fmt.Errorf("%w: ChunkSize %d must be a multiple of %d, at least %d",
			ErrBadConfig, c.ChunkSize, format.Alignment, format.MinBlockSize)
	}
	return nil
}

// sizeClassTable holds the computed size class boundaries.
type sizeClassTable struct {
	bounds []uint32 // upper bound per class; the last entry is unused
}

// newSizeClassTable computes size class boundaries from config.
func newSizeClassTable(c *Config) *sizeClassTable {
	bounds := make([]uint32, c.NumClasses)
	for i := range bounds {
		bounds[i] = c.MinClassBound << i
	}
	return &sizeClassTable{bounds: bounds}
}

// classify returns the class index for a block of the given total size.
// Callers never pass sizes below the minimum block size.
func (t *sizeClassTable) classify(size uint32) int {
	last := len(t.bounds) - 1
	for i := range last {
		if size <= t.bounds[i] {
			return i
		}
	}
	return last
}

// numClasses returns the number of free lists.
func (t *sizeClassTable) numClasses() int {
	return len(t.bounds)
}

// ClassBounds returns the inclusive upper bound of each class. The final
// class is a catch-all and reports 0.
func (a *Allocator) ClassBounds() []uint32 {
	out := make([]uint32, len(a.classes.bounds))
	copy(out, a.classes.bounds)
	out[len(out)-1] = 0
	return out
}
