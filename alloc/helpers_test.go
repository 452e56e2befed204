package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/segalloc/internal/format"
	"github.com/joshuapare/segalloc/region"
)

// initialRegion is the region length right after New with DefaultConfig.
const initialRegion = format.BootstrapSize + ChunkSize

// newTestAllocator creates an allocator over a Memory region capped at limit
// bytes (0 means the default limit).
func newTestAllocator(t testing.TB, limit int) *Allocator {
	t.Helper()
	r := region.NewMemory(&region.Options{Limit: limit})
	a, err := New(r, nil)
	require.NoError(t, err)
	return a
}

// mustAlloc allocates size bytes and fails the test on error.
func mustAlloc(t testing.TB, a *Allocator, size uint32) (Addr, []byte) {
	t.Helper()
	addr, p, err := a.Alloc(size)
	require.NoError(t, err, "Alloc(%d)", size)
	require.GreaterOrEqual(t, len(p), int(size))
	return addr, p
}

// blockTag reads the header of the block at addr.
func blockTag(a *Allocator, addr Addr) format.Tag {
	return a.tag(a.r.Bytes(), addr)
}

// fill writes v to every byte of p.
func fill(p []byte, v byte) {
	for i := range p {
		p[i] = v
	}
}

// requireFilled asserts that the first n bytes of p all equal v.
func requireFilled(t testing.TB, p []byte, n int, v byte) {
	t.Helper()
	require.GreaterOrEqual(t, len(p), n)
	for i := range n {
		if p[i] != v {
			t.Fatalf("byte %d = %#x, want %#x", i, p[i], v)
		}
	}
}

// recordingTracker captures dirty ranges reported by the allocator.
type recordingTracker struct {
	ranges [][2]int
}

func (r *recordingTracker) Add(off, length int) {
	r.ranges = append(r.ranges, [2]int{off, length})
}

// newRegion returns a Memory region capped at limit bytes (0 means default).
func newRegion(limit int) *region.Memory {
	return region.NewMemory(&region.Options{Limit: limit})
}
