// Package alloc implements a segregated-free-list allocator over a growable
// byte region.
//
// # Overview
//
// The allocator hands out 8-byte aligned payloads carved from a single
// region supplied by a region.Provider. Every block carries a boundary tag
// (size plus allocated bit) at both ends, so the physically previous and next
// blocks can be found in O(1) and freed neighbours are merged immediately.
//
// # Region Layout
//
//	0x00  padding word
//	0x04  prologue header   8/alloc
//	0x08  prologue footer   8/alloc
//	0x0C  first block header ...
//	...
//	len-4 epilogue header   0/alloc
//
// The prologue and epilogue are permanently allocated sentinels; they remove
// the edge cases from coalescing. Growing the region overwrites the old
// epilogue with the header of the new free block and writes a fresh epilogue
// at the new top.
//
// # Size Classes
//
// Free blocks are kept in NumClasses doubly linked lists (DefaultConfig: 12).
// Class i holds blocks of size at most MinClassBound<<i; the last class is a
// catch-all:
//
//	Class 0:      16 bytes
//	Class 1:  17 -   32 bytes
//	Class 2:  33 -   64 bytes
//	...
//	Class 10: 8193 - 16384 bytes
//	Class 11: > 16384 bytes
//
// Insertion is LIFO and the search is first-fit in list order, starting at the
// request's own class and moving to larger classes.
//
// The list links are not stored inside free payloads; the allocator owns a
// node table keyed by block offset. Roots live on the Allocator, so there is
// no process-wide state and several allocators may coexist.
//
// # Usage Example
//
//	r := region.NewMemory(nil)
//	a, err := alloc.New(r, nil)
//	if err != nil {
//	    return err
//	}
//
//	addr, buf, err := a.Alloc(100)
//	if err != nil {
//	    return err
//	}
//	copy(buf, payload)
//
//	addr, buf, err = a.Realloc(addr, 400)
//	...
//	err = a.Free(addr)
//
// # Thread Safety
//
// An Allocator is NOT safe for concurrent use. Callers that share one must
// serialize every call.
package alloc
