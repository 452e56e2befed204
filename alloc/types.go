package alloc

import "github.com/joshuapare/segalloc/region/dirty"

// Addr is the region-relative offset of a block payload.
type Addr = uint32

// Nil is the null address. Offset 0 is padding, so no payload starts there.
const Nil Addr = 0

// DirtyTracker is a type alias for the interface defined in region/dirty.
type DirtyTracker = dirty.DirtyTracker

// Block describes one block as seen by Walk.
type Block struct {
	Addr      Addr   // payload offset
	Size      uint32 // total size including header and footer
	Allocated bool
}

// PayloadSize is the number of usable bytes in the block.
func (b Block) PayloadSize() uint32 { return b.Size - overhead }
