package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/segalloc/internal/format"
	"github.com/joshuapare/segalloc/region"
)

func TestGrow_MergesWithFreeTail(t *testing.T) {
	a := newTestAllocator(t, 0)

	// 5000 bytes need 5008; the 4096-byte chunk is too small, so the region
	// grows by exactly 5008 and the new space merges with the old chunk.
	addr, _ := mustAlloc(t, a, 5000)
	require.Equal(t, Addr(16), addr)
	require.Equal(t, initialRegion+5008, a.Region().Len())

	s := a.Stats()
	require.Equal(t, 2, s.GrowCalls)
	require.Equal(t, int64(ChunkSize+5008), s.GrowBytes)
	require.Equal(t, 1, s.AllocSlowPath)
	require.Equal(t, 1, s.CoalescePrev)

	// The split remainder is the old chunk's worth of space.
	rest := addr + 5008
	require.Equal(t, format.Tag{Size: ChunkSize}, blockTag(a, rest))
	require.NoError(t, a.Verify())
}

func TestGrow_SingleStepOnMiss(t *testing.T) {
	a := newTestAllocator(t, 0)
	mustAlloc(t, a, 4080) // consumes the whole chunk

	var grown []uint32
	a.cfg.OnGrow = func(n uint32) { grown = append(grown, n) }

	mustAlloc(t, a, 100)
	require.Equal(t, []uint32{ChunkSize}, grown, "small misses grow by one chunk")

	mustAlloc(t, a, 10000)
	require.Equal(t, []uint32{ChunkSize, 10008}, grown, "large misses grow by the request")
	require.NoError(t, a.Verify())
}

func TestGrow_AllocatedTailDoesNotMerge(t *testing.T) {
	a := newTestAllocator(t, 0)
	full, _ := mustAlloc(t, a, 4080)

	next, _ := mustAlloc(t, a, 8)
	require.Equal(t, full+ChunkSize, next, "new space starts where the old epilogue was")
	require.Equal(t, 2, a.Stats().CoalesceNone, "initial chunk and the new one")
	require.NoError(t, a.Verify())
}

func TestGrow_EvenWords(t *testing.T) {
	cfg := DefaultConfig
	cfg.ChunkSize = 16
	a, err := New(region.NewMemory(nil), &cfg)
	require.NoError(t, err)

	// An odd word count is rounded up so blocks stay 8-byte aligned.
	_, err = a.grow(3)
	require.NoError(t, err)
	require.Zero(t, a.Region().Len()%format.DoubleWord)
	require.NoError(t, a.Verify())
}

func TestGrow_FailureWritesNothing(t *testing.T) {
	a := newTestAllocator(t, initialRegion)
	snapshot := append([]byte(nil), a.Region().Bytes()...)

	_, err := a.grow(ChunkSize / format.WordSize)
	require.ErrorIs(t, err, ErrNoSpace)
	require.Equal(t, snapshot, a.Region().Bytes())
	require.Equal(t, 1, a.Stats().GrowCalls)
}
