package region

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryExtend(t *testing.T) {
	m := NewMemory(&Options{Limit: 64})
	require.Equal(t, 0, m.Len())

	off, err := m.Extend(16)
	require.NoError(t, err)
	require.Equal(t, 0, off)

	before := m.Bytes()
	before[0] = 0xAA

	off, err = m.Extend(32)
	require.NoError(t, err)
	require.Equal(t, 16, off)
	require.Equal(t, 48, m.Len())

	// Growth never moves the data.
	require.Equal(t, byte(0xAA), m.Bytes()[0])
	before[1] = 0xBB
	require.Equal(t, byte(0xBB), m.Bytes()[1])
	for _, b := range m.Bytes()[16:] {
		require.Zero(t, b)
	}
}

func TestMemoryExhausted(t *testing.T) {
	m := NewMemory(&Options{Limit: 32})
	_, err := m.Extend(24)
	require.NoError(t, err)

	_, err = m.Extend(16)
	require.True(t, errors.Is(err, ErrExhausted), "got %v", err)
	require.Equal(t, 24, m.Len(), "failed extend must not change the region")

	off, err := m.Extend(8)
	require.NoError(t, err)
	require.Equal(t, 24, off)
}

func TestMemoryBadExtend(t *testing.T) {
	m := NewMemory(nil)
	require.Equal(t, DefaultLimit, m.Limit())

	for _, n := range []int{0, -8, 3, 6} {
		_, err := m.Extend(n)
		require.ErrorIs(t, err, ErrBadExtend, "n=%d", n)
	}
	require.Zero(t, m.Len())
}
