package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRealloc_NilAllocates(t *testing.T) {
	a := newTestAllocator(t, 0)
	addr, p, err := a.Realloc(Nil, 40)
	require.NoError(t, err)
	require.NotEqual(t, Nil, addr)
	require.GreaterOrEqual(t, len(p), 40)
	require.Equal(t, 1, a.Stats().AllocCalls)
}

func TestRealloc_ZeroFrees(t *testing.T) {
	a := newTestAllocator(t, 0)
	addr, _ := mustAlloc(t, a, 40)

	got, p, err := a.Realloc(addr, 0)
	require.NoError(t, err)
	require.Equal(t, Nil, got)
	require.Nil(t, p)
	require.Equal(t, 1, a.Stats().FreeCalls)
	require.Equal(t, 1, a.Stats().FreeBlocks)
	require.NoError(t, a.Verify())
}

func TestRealloc_PreservesContent(t *testing.T) {
	tests := []struct {
		name     string
		from, to uint32
	}{
		{"grow small", 10, 100},
		{"grow large", 300, 6000},
		{"shrink", 500, 50},
		{"same size", 64, 64},
		{"to minimum", 200, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAllocator(t, 0)
			addr, p := mustAlloc(t, a, tt.from)
			for i := range p[:tt.from] {
				p[i] = byte(i * 7)
			}
			mustAlloc(t, a, 8) // fence

			got, q, err := a.Realloc(addr, tt.to)
			require.NoError(t, err)
			require.NotEqual(t, addr, got, "the block always moves")
			require.GreaterOrEqual(t, len(q), int(tt.to))

			for i := range min(tt.from, tt.to) {
				require.Equal(t, byte(i*7), q[i], "byte %d", i)
			}

			_, err = a.Payload(addr)
			require.ErrorIs(t, err, ErrNotAllocated, "old block is freed")
			require.NoError(t, a.Verify())
		})
	}
}

func TestRealloc_CopiesOldPayloadOnly(t *testing.T) {
	a := newTestAllocator(t, 0)

	// A 10-byte request gets a 16-byte payload; growing copies all 16.
	addr, p := mustAlloc(t, a, 10)
	require.Len(t, p, 16)
	fill(p, 0xCC)

	_, q, err := a.Realloc(addr, 64)
	require.NoError(t, err)
	requireFilled(t, q, 16, 0xCC)
}

func TestRealloc_FailureKeepsOldBlock(t *testing.T) {
	a := newTestAllocator(t, initialRegion)
	addr, p := mustAlloc(t, a, 100)
	fill(p, 0x77)

	got, q, err := a.Realloc(addr, 8000)
	require.ErrorIs(t, err, ErrNoSpace)
	require.Equal(t, Nil, got)
	require.Nil(t, q)

	still, err := a.Payload(addr)
	require.NoError(t, err)
	requireFilled(t, still, 100, 0x77)
	require.NoError(t, a.Verify())
}

func TestRealloc_InvalidAddress(t *testing.T) {
	a := newTestAllocator(t, 0)
	addr, _ := mustAlloc(t, a, 32)
	require.NoError(t, a.Free(addr))

	_, _, err := a.Realloc(addr, 64)
	require.ErrorIs(t, err, ErrNotAllocated)

	_, _, err = a.Realloc(addr+4, 64)
	require.ErrorIs(t, err, ErrBadAddr)
	require.NoError(t, a.Verify())
}

func TestRealloc_RepeatedGrowth(t *testing.T) {
	a := newTestAllocator(t, 0)
	addr, p := mustAlloc(t, a, 8)
	copy(p, "segalloc")

	size := uint32(8)
	for range 12 {
		size *= 2
		var err error
		addr, p, err = a.Realloc(addr, size)
		require.NoError(t, err)
		require.Equal(t, "segalloc", string(p[:8]))
	}
	require.Equal(t, 1, a.Stats().LiveBlocks)
	require.NoError(t, a.Verify())
}
