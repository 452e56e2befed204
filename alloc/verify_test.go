package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/segalloc/internal/format"
)

func TestVerify_DetectsCorruption(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(a *Allocator, x, y Addr)
	}{
		{
			name: "footer mismatch",
			corrupt: func(a *Allocator, x, _ Addr) {
				data := a.Region().Bytes()
				format.WriteTag(data, int(x)+24-format.DoubleWord, format.Tag{Size: 24})
			},
		},
		{
			name: "prologue",
			corrupt: func(a *Allocator, _, _ Addr) {
				format.WriteTag(a.Region().Bytes(), format.PrologueHeaderOffset, format.Tag{Size: 16, Allocated: true})
			},
		},
		{
			name: "free block off list",
			corrupt: func(a *Allocator, x, _ Addr) {
				format.WriteBoundary(a.Region().Bytes(), x, format.Tag{Size: 24})
			},
		},
		{
			name: "allocated block on list",
			corrupt: func(a *Allocator, _, y Addr) {
				format.WriteBoundary(a.Region().Bytes(), y, format.Tag{Size: 24, Allocated: true})
			},
		},
		{
			name: "stale link",
			corrupt: func(a *Allocator, x, _ Addr) {
				a.links[x] = link{}
			},
		},
		{
			name: "missing epilogue",
			corrupt: func(a *Allocator, _, _ Addr) {
				data := a.Region().Bytes()
				format.WriteTag(data, len(data)-format.WordSize, format.Tag{})
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAllocator(t, 0)
			x, _ := mustAlloc(t, a, 16)
			y, _ := mustAlloc(t, a, 16)
			mustAlloc(t, a, 16)
			require.NoError(t, a.Free(y))
			require.NoError(t, a.Verify())

			tt.corrupt(a, x, y)
			require.ErrorIs(t, a.Verify(), ErrCorrupt)
		})
	}
}

func TestVerify_AdjacentFreeBlocks(t *testing.T) {
	a := newTestAllocator(t, 0)
	x, _ := mustAlloc(t, a, 16)
	y, _ := mustAlloc(t, a, 16)
	mustAlloc(t, a, 16)
	require.NoError(t, a.Free(y))

	// Mark x free and list it without merging.
	format.WriteBoundary(a.Region().Bytes(), x, format.Tag{Size: 24})
	a.insertFree(a.Region().Bytes(), x)
	a.stats.freed(24)

	err := a.Verify()
	require.ErrorIs(t, err, ErrCorrupt)
	require.Contains(t, err.Error(), "follows a free block")
}

func TestWalk(t *testing.T) {
	a := newTestAllocator(t, 0)
	x, _ := mustAlloc(t, a, 16)
	y, _ := mustAlloc(t, a, 100)
	require.NoError(t, a.Free(x))
	mustAlloc(t, a, 3000)

	var got []Block
	require.NoError(t, a.Walk(func(b Block) bool {
		got = append(got, b)
		return true
	}))

	require.Equal(t, []Block{
		{Addr: x, Size: 24, Allocated: false},
		{Addr: y, Size: 112, Allocated: true},
		{Addr: y + 112, Size: 3008, Allocated: true},
		{Addr: y + 112 + 3008, Size: ChunkSize - 24 - 112 - 3008},
	}, got)

	var n int
	require.NoError(t, a.Walk(func(Block) bool {
		n++
		return n < 2
	}))
	require.Equal(t, 2, n)
}
