package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a tag word.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrMisaligned indicates a block offset or size off the 8-byte grid.
	ErrMisaligned = errors.New("format: misaligned block")
	// ErrTagMismatch indicates a block whose header and footer disagree.
	ErrTagMismatch = errors.New("format: header/footer mismatch")
	// ErrZeroSize indicates a non-epilogue block whose header encodes size 0.
	ErrZeroSize = errors.New("format: zero-length block")
)
