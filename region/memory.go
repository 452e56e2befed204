package region

import "fmt"

// Memory is a heap-backed region. Its full capacity is reserved up front, so
// growth never moves the data and slices handed out earlier stay valid.
type Memory struct {
	data  []byte
	limit int
}

// NewMemory reserves a region of up to opts.Limit bytes with zero length.
func NewMemory(opts *Options) *Memory {
	limit := opts.limit()
	return &Memory{
		data:  make([]byte, 0, limit),
		limit: limit,
	}
}

// Extend grows the region by n bytes, which must be a positive multiple of
// the word size.
func (m *Memory) Extend(n int) (int, error) {
	old := len(m.data)
	if err := checkExtend(old, n, m.limit); err != nil {
		return 0, fmt.Errorf("memory region: extend %d at %d: %w", n, old, err)
	}
	m.data = m.data[:old+n]
	// A reused backing array may hold old bytes; extensions start zeroed.
	clear(m.data[old:])
	return old, nil
}

// Bytes returns the region contents.
func (m *Memory) Bytes() []byte { return m.data }

// Len returns the current region length.
func (m *Memory) Len() int { return len(m.data) }

// Limit returns the maximum region length.
func (m *Memory) Limit() int { return m.limit }
