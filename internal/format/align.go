package format

// Alignment utilities for the managed region. Block sizes and payload offsets
// are always multiples of Alignment (8 bytes).

// Align8 returns n aligned up to the next 8-byte boundary.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
//	Align8(16) = 16
func Align8(n int) int {
	return (n + AlignmentMask) & ^AlignmentMask
}

// Align8U32 is the uint32 variant of Align8 used by the allocator, whose
// offsets and sizes are all 32-bit.
func Align8U32(n uint32) uint32 {
	return (n + AlignmentMask) & ^uint32(AlignmentMask)
}

// AlignPage returns n aligned up to the next PageSize boundary.
//
// Example:
//
//	AlignPage(1)    = 4096
//	AlignPage(4096) = 4096
//	AlignPage(4097) = 8192
func AlignPage(n int) int {
	return (n + PageSizeMask) & ^PageSizeMask
}

// EvenWords rounds a word count up to an even number so that growth always
// preserves double-word alignment.
func EvenWords(words uint32) uint32 {
	if words%2 != 0 {
		return words + 1
	}
	return words
}

// IsAligned reports whether n is a multiple of Alignment.
func IsAligned(n uint32) bool {
	return n&AlignmentMask == 0
}
