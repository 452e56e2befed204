package alloc

import "errors"

var (
	// ErrZeroSize indicates an allocation request for zero bytes.
	ErrZeroSize = errors.New("alloc: zero-size request")

	// ErrTooLarge indicates a request that cannot be addressed with 32-bit offsets.
	ErrTooLarge = errors.New("alloc: request too large")

	// ErrNoSpace indicates that no free block fit and the region could not grow.
	ErrNoSpace = errors.New("alloc: region exhausted")

	// ErrBadAddr indicates an address that does not name a block in the region.
	ErrBadAddr = errors.New("alloc: bad address")

	// ErrNotAllocated indicates an address whose block is not allocated (double free).
	ErrNotAllocated = errors.New("alloc: block not allocated")

	// ErrBadConfig indicates an unusable Config.
	ErrBadConfig = errors.New("alloc: bad config")

	// ErrRegionNotEmpty indicates New was handed a region that already holds data.
	ErrRegionNotEmpty = errors.New("alloc: region not empty")

	// ErrCorrupt indicates a region whose block structure is inconsistent.
	ErrCorrupt = errors.New("alloc: corrupt region")
)
