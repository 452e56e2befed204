package alloc

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRandomOps drives a long random mix of Alloc, Free and Realloc with a
// fixed seed, checking after every step that live payloads keep their
// contents and periodically that the region verifies.
func TestRandomOps(t *testing.T) {
	for _, cfg := range []Config{DefaultConfig, ConfigCoarse, ConfigFine} {
		t.Run(cfg.Name, func(t *testing.T) {
			runRandomOps(t, &cfg, 42)
		})
	}
}

type liveBlock struct {
	size uint32
	fill byte
}

func runRandomOps(t *testing.T, cfg *Config, seed uint64) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	a, err := New(newRegion(0), cfg)
	require.NoError(t, err)

	live := make(map[Addr]liveBlock)
	var addrs []Addr

	check := func(addr Addr) {
		p, err := a.Payload(addr)
		require.NoError(t, err)
		requireFilled(t, p, int(live[addr].size), live[addr].fill)
	}
	drop := func(i int) {
		addrs[i] = addrs[len(addrs)-1]
		addrs = addrs[:len(addrs)-1]
	}

	for step := range 4000 {
		fillByte := byte(step%251 + 1)

		switch op := rng.IntN(10); {
		case op < 5 || len(addrs) == 0:
			size := randomSize(rng)
			addr, p, err := a.Alloc(size)
			require.NoError(t, err)
			_, dup := live[addr]
			require.False(t, dup, "step %d: address %d handed out twice", step, addr)
			fill(p[:size], fillByte)
			live[addr] = liveBlock{size, fillByte}
			addrs = append(addrs, addr)

		case op < 8:
			i := rng.IntN(len(addrs))
			addr := addrs[i]
			check(addr)
			require.NoError(t, a.Free(addr))
			delete(live, addr)
			drop(i)

		default:
			i := rng.IntN(len(addrs))
			addr := addrs[i]
			old := live[addr]
			check(addr)

			size := randomSize(rng)
			next, p, err := a.Realloc(addr, size)
			require.NoError(t, err)
			requireFilled(t, p, int(min(old.size, size)), old.fill)

			fill(p[:size], fillByte)
			delete(live, addr)
			live[next] = liveBlock{size, fillByte}
			drop(i)
			addrs = append(addrs, next)
		}

		if step%200 == 0 {
			require.NoError(t, a.Verify(), "step %d", step)
			for addr := range live {
				check(addr)
			}
		}
	}

	require.NoError(t, a.Verify())
	require.Equal(t, len(live), a.Stats().LiveBlocks)

	for addr := range live {
		check(addr)
		require.NoError(t, a.Free(addr))
	}
	s := a.Stats()
	require.Zero(t, s.BytesInUse)
	require.Equal(t, 1, s.FreeBlocks, "everything coalesces back into one block")
	require.NoError(t, a.Verify())
}

// randomSize favours small requests with an occasional large one.
func randomSize(rng *rand.Rand) uint32 {
	switch rng.IntN(20) {
	case 0:
		return uint32(rng.IntN(20000)) + 1
	case 1, 2, 3:
		return uint32(rng.IntN(2000)) + 1
	default:
		return uint32(rng.IntN(128)) + 1
	}
}
