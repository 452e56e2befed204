package format

import "fmt"

// Tag is the decoded form of a boundary-tag word.
//
// Tag word layout (little-endian uint32):
//
//	Bits   Description
//	31..3  Block size in bytes, including header and footer (multiple of 8).
//	2..1   Reserved, always zero.
//	0      Allocated flag.
//
// Every block carries the same word twice: as its header (the word just
// before the payload) and as its footer (the last word of the block).
type Tag struct {
	Size      uint32
	Allocated bool
}

// Pack encodes size and the allocated flag into a single tag word.
func Pack(size uint32, allocated bool) uint32 {
	w := size & SizeMask
	if allocated {
		w |= AllocatedBit
	}
	return w
}

// Unpack decodes a tag word.
func Unpack(w uint32) Tag {
	return Tag{Size: w & SizeMask, Allocated: w&AllocatedBit != 0}
}

// Word re-encodes the tag.
func (t Tag) Word() uint32 {
	return Pack(t.Size, t.Allocated)
}

// IsEpilogue reports whether the tag is the zero-size terminal header.
func (t Tag) IsEpilogue() bool {
	return t.Size == 0 && t.Allocated
}

func (t Tag) String() string {
	state := "free"
	if t.Allocated {
		state = "alloc"
	}
	return fmt.Sprintf("%d/%s", t.Size, state)
}

// ReadTag decodes the tag word stored at off.
func ReadTag(b []byte, off int) Tag {
	return Unpack(ReadU32(b, off))
}

// WriteTag stores t at off.
func WriteTag(b []byte, off int, t Tag) {
	PutU32(b, off, t.Word())
}
