package alloc

// Realloc moves the allocation at addr into a block of at least size bytes.
//
//   - Realloc(Nil, n) behaves as Alloc(n).
//   - Realloc(addr, 0) frees addr and returns Nil.
//   - Otherwise a new block is allocated, the first min(size, old payload)
//     bytes are copied, and the old block is freed. The block is always
//     moved, even when its physical successor is free.
//
// When the new allocation fails the old block is left allocated and intact.
func (a *Allocator) Realloc(addr Addr, size uint32) (Addr, []byte, error) {
	if addr == Nil {
		return a.Alloc(size)
	}
	if size == 0 {
		a.stats.ReallocCalls++
		return Nil, nil, a.Free(addr)
	}

	t, err := a.lookup(a.r.Bytes(), addr)
	if err != nil {
		return Nil, nil, err
	}
	a.stats.ReallocCalls++

	newAddr, p, err := a.Alloc(size)
	if err != nil {
		return Nil, nil, err
	}

	// Alloc may have remapped the region.
	data := a.r.Bytes()
	n := min(size, t.Size-overhead)
	copy(p[:n], data[addr:addr+n])
	if err := a.release(data, addr, t.Size); err != nil {
		return Nil, nil, err
	}

	if a.trace {
		a.log.Debug("realloc", "from", addr, "to", newAddr, "size", size, "copied", n)
	}
	return newAddr, p, nil
}
