// Package format houses the low-level layout of the managed region: the
// boundary-tag word shared by every block, the alignment rules, and the
// little-endian word encoding. Higher-level packages build the allocator on
// top of these helpers and never touch raw bit packing themselves.
package format

const (
	// WordSize is the size of a boundary-tag word (header or footer) in bytes.
	WordSize = 4

	// DoubleWord is the size of two words. Payloads are aligned to it, and a
	// block's header+footer overhead equals one double word.
	DoubleWord = 2 * WordSize

	// Alignment is the required alignment of block sizes and payload offsets.
	Alignment = DoubleWord

	// AlignmentMask is the bitmask used for aligning to Alignment (Alignment - 1).
	AlignmentMask = Alignment - 1

	// MinBlockSize is the smallest legal block: header + footer + two
	// word-sized free-list links.
	MinBlockSize = 2 * DoubleWord

	// Overhead is the number of bytes a block spends on its boundary tags.
	Overhead = DoubleWord

	// PageSize is the granularity used for dirty-range flushing of file
	// backed regions.
	PageSize = 0x1000

	// PageSizeMask is the bitmask used for aligning to PageSize (PageSize - 1).
	PageSizeMask = PageSize - 1

	// AllocatedBit is the low bit of a tag word that marks a block in use.
	AllocatedBit = 0x1

	// SizeMask clears the flag bits of a tag word, leaving the block size.
	SizeMask = ^uint32(AlignmentMask)
)

// Bootstrap area layout. The region starts with one word of padding so the
// first payload lands on a double-word boundary, followed by the prologue
// block (header+footer, no payload) and the initial epilogue header.
//
//	Offset  Size  Description
//	0x00    4     alignment padding (always zero)
//	0x04    4     prologue header  Pack(8, true)
//	0x08    4     prologue footer  Pack(8, true)
//	0x0C    4     epilogue header  Pack(0, true)
const (
	PaddingOffset        = 0x00
	PrologueHeaderOffset = 0x04
	PrologueFooterOffset = 0x08
	EpilogueOffset       = 0x0C

	// PrologueBlock is the payload offset of the prologue block, the first
	// block reached by a forward walk.
	PrologueBlock = 0x08

	// PrologueSize is the prologue's total size (header + footer).
	PrologueSize = DoubleWord

	// BootstrapSize is the number of bytes requested from the region provider
	// when the allocator is initialised.
	BootstrapSize = 4 * WordSize
)
