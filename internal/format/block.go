package format

import "fmt"

// Block address arithmetic. A block is identified by its payload offset bp:
//
//	bp-4          header word
//	bp            first payload byte (free blocks: list links live here)
//	bp+size-8     footer word
//	bp+size       payload offset of the physically next block
//
// The footer location is derived from the header, so rewriting a header to a
// new size moves the footer that FooterOffset reports.

// HeaderOffset returns the offset of the header word of the block at bp.
func HeaderOffset(bp uint32) int {
	return int(bp) - WordSize
}

// FooterOffset returns the offset of the footer word of the block at bp, as
// implied by the block's current header.
func FooterOffset(b []byte, bp uint32) int {
	return int(bp) + int(ReadTag(b, HeaderOffset(bp)).Size) - DoubleWord
}

// NextBlock returns the payload offset of the block physically after bp.
func NextBlock(b []byte, bp uint32) uint32 {
	return bp + ReadTag(b, HeaderOffset(bp)).Size
}

// PrevBlock returns the payload offset of the block physically before bp,
// found through the previous block's footer.
func PrevBlock(b []byte, bp uint32) uint32 {
	return bp - ReadTag(b, int(bp)-DoubleWord).Size
}

// WriteBoundary stores the same tag as header and footer of the block at bp.
// The header is written first, so the footer lands where the new size says.
func WriteBoundary(b []byte, bp uint32, t Tag) {
	WriteTag(b, HeaderOffset(bp), t)
	WriteTag(b, int(bp)+int(t.Size)-DoubleWord, t)
}

// Block is a decoded view of one block in the region.
type Block struct {
	Offset uint32 // payload offset
	Header Tag
	Footer Tag
}

// Free reports whether the block is unallocated.
func (blk Block) Free() bool { return !blk.Header.Allocated }

// PayloadSize is the number of usable bytes in the block.
func (blk Block) PayloadSize() uint32 {
	if blk.Header.Size < Overhead {
		return 0
	}
	return blk.Header.Size - Overhead
}

// DecodeBlock reads the block at bp and returns it with the offset of the
// following block. The epilogue decodes as a zero-size allocated block with
// next == bp. Header/footer agreement and alignment are checked.
func DecodeBlock(b []byte, bp uint32) (Block, uint32, error) {
	hdr := HeaderOffset(bp)
	if hdr < 0 || hdr+WordSize > len(b) {
		return Block{}, 0, fmt.Errorf("block %d: %w", bp, ErrTruncated)
	}
	if !IsAligned(bp) {
		return Block{}, 0, fmt.Errorf("block %d: %w", bp, ErrMisaligned)
	}
	h := ReadTag(b, hdr)
	if h.IsEpilogue() {
		return Block{Offset: bp, Header: h, Footer: h}, bp, nil
	}
	if h.Size == 0 {
		return Block{}, 0, fmt.Errorf("block %d: %w", bp, ErrZeroSize)
	}
	if !IsAligned(h.Size) {
		return Block{}, 0, fmt.Errorf("block %d size %d: %w", bp, h.Size, ErrMisaligned)
	}
	ftr := int(bp) + int(h.Size) - DoubleWord
	if ftr < int(bp) || ftr+WordSize > len(b) {
		return Block{}, 0, fmt.Errorf("block %d size %d: %w", bp, h.Size, ErrTruncated)
	}
	f := ReadTag(b, ftr)
	if f != h {
		return Block{}, 0, fmt.Errorf("block %d header %v footer %v: %w", bp, h, f, ErrTagMismatch)
	}
	return Block{Offset: bp, Header: h, Footer: f}, bp + h.Size, nil
}
