package alloc

import (
	"fmt"
	"io"
)

// Stats holds allocator counters for testing and instrumentation.
type Stats struct {
	AllocCalls    int // Successful-request Alloc calls (zero-size requests excluded)
	AllocFastPath int // Allocations served from a free list
	AllocSlowPath int // Allocations that required growth
	FreeCalls     int // Free calls with a non-nil address
	ReallocCalls  int // Realloc calls that resized or freed an existing block

	SplitCount int // Blocks split during placement

	// Coalescing outcomes, one per free or growth.
	CoalesceNone int // both neighbours allocated
	CoalesceNext int // merged with the next block
	CoalescePrev int // merged with the previous block
	CoalesceBoth int // merged with both

	ListInserts int // free-list insertions
	ListRemoves int // free-list removals

	GrowCalls int   // region extensions after bootstrap
	GrowBytes int64 // bytes added by growth

	BytesInUse     int64 // total size of allocated blocks, tags included
	PeakBytesInUse int64 // high-water mark of BytesInUse
	LiveBlocks     int   // allocated blocks

	// Filled in by (*Allocator).Stats.
	RegionSize int64 // current region length
	FreeBlocks int   // blocks on free lists
	FreeBytes  int64 // total size of free blocks
}

func (s *Stats) allocated(size uint32) {
	s.BytesInUse += int64(size)
	s.LiveBlocks++
	if s.BytesInUse > s.PeakBytesInUse {
		s.PeakBytesInUse = s.BytesInUse
	}
}

func (s *Stats) freed(size uint32) {
	s.BytesInUse -= int64(size)
	s.LiveBlocks--
}

// Utilization is the peak in-use block bytes over the region size, in [0, 1].
func (s Stats) Utilization() float64 {
	if s.RegionSize == 0 {
		return 0
	}
	return float64(s.PeakBytesInUse) / float64(s.RegionSize)
}

// Stats returns a snapshot of the allocator counters.
func (a *Allocator) Stats() Stats {
	s := a.stats
	data := a.r.Bytes()
	s.RegionSize = int64(len(data))
	s.FreeBlocks = len(a.links)
	for bp := range a.links {
		s.FreeBytes += int64(a.tag(data, bp).Size)
	}
	return s
}

// PrintStats writes a human-readable summary of the counters to w.
func (a *Allocator) PrintStats(w io.Writer) {
	s := a.Stats()
	fmt.Fprintf(w, "=== Allocator Statistics (%s) ===\n", a.cfg.Name)
	fmt.Fprintf(w, "Region:       %d bytes (%d grown in %d steps)\n", s.RegionSize, s.GrowBytes, s.GrowCalls)
	fmt.Fprintf(w, "Allocations:  %d (fast %d, slow %d)\n", s.AllocCalls, s.AllocFastPath, s.AllocSlowPath)
	fmt.Fprintf(w, "Frees:        %d\n", s.FreeCalls)
	fmt.Fprintf(w, "Reallocs:     %d\n", s.ReallocCalls)
	fmt.Fprintf(w, "Splits:       %d\n", s.SplitCount)
	fmt.Fprintf(w, "Coalesce:     none %d, next %d, prev %d, both %d\n",
		s.CoalesceNone, s.CoalesceNext, s.CoalescePrev, s.CoalesceBoth)
	fmt.Fprintf(w, "In use:       %d bytes in %d blocks (peak %d)\n", s.BytesInUse, s.LiveBlocks, s.PeakBytesInUse)
	fmt.Fprintf(w, "Free:         %d bytes in %d blocks\n", s.FreeBytes, s.FreeBlocks)
	fmt.Fprintf(w, "Utilization:  %.1f%%\n", 100*s.Utilization())
}
