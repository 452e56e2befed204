// Package region provides the raw, growable memory region the allocator
// manages. A Provider only ever grows: Extend appends zeroed bytes at the top
// of the region and reports where they start. Nothing is ever handed back to
// the platform.
package region

import "errors"

var (
	// ErrExhausted indicates the region cannot grow by the requested amount.
	ErrExhausted = errors.New("region: exhausted")

	// ErrBadExtend indicates a non-positive or misaligned extension request.
	ErrBadExtend = errors.New("region: extend size must be a positive multiple of the word size")

	// ErrClosed indicates use of a region after Close.
	ErrClosed = errors.New("region: closed")
)

// DefaultLimit is the default ceiling on region size (20 MiB).
const DefaultLimit = 20 << 20

// wordSize mirrors format.WordSize; extensions are whole words.
const wordSize = 4

// Provider is the raw region primitive consumed by the allocator.
type Provider interface {
	// Extend grows the region by n bytes and returns the offset of the first
	// new byte (the old length). On failure the region is unchanged.
	Extend(n int) (int, error)

	// Bytes returns the current region contents. The slice is invalidated by
	// a later Extend on providers that remap.
	Bytes() []byte

	// Len returns the current region length in bytes.
	Len() int
}

// Options configures region providers.
type Options struct {
	// Limit caps the total region size in bytes. Zero means DefaultLimit.
	Limit int
}

func (o *Options) limit() int {
	if o == nil || o.Limit <= 0 {
		return DefaultLimit
	}
	return o.Limit
}

func checkExtend(cur, n, limit int) error {
	if n <= 0 || n%wordSize != 0 {
		return ErrBadExtend
	}
	if n > limit-cur {
		return ErrExhausted
	}
	return nil
}
