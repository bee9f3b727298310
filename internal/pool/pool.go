// Package pool provides a fixed-slab slot allocator for file-handle records.
// Slots are recycled through a free list so steady-state open/close traffic
// performs no general-purpose allocation, and every reference carries a
// generation counter so a stale or double free is detected instead of
// corrupting an unrelated live record.
package pool

import (
	"sync"

	"pakfs/internal/common"
)

// DefaultBlockItems is the slot count of one slab block, matching the
// original handle pools.
const DefaultBlockItems = 32

// Ref identifies one allocated slot. The zero Ref is never valid.
type Ref struct {
	index uint32
	gen   uint32
}

// Valid reports whether r could have come from an Alloc call. It does not
// check liveness; Get does.
func (r Ref) Valid() bool { return r.gen != 0 }

type slot[T any] struct {
	gen  uint32 // bumped on free; 0 means never used
	live bool
	val  T
}

// Pool is a growable slab of fixed-size slots guarded by one mutex. The
// critical section covers slab bookkeeping only; callers must never hold a
// pool lock across I/O.
//
// Slots live inside per-block arrays that are never reallocated, so a record
// pointer obtained from Get stays stable until the slot is freed even if the
// pool grows concurrently.
type Pool[T any] struct {
	mu       sync.Mutex
	blocks   [][]slot[T]
	free     []uint32
	blockLen int
	maxItems int // 0 = unbounded
	total    int
	live     int
}

// New creates a pool that grows blockItems slots at a time. maxItems of 0
// means the pool may grow without bound; otherwise Alloc fails with
// ErrOutOfMemory once maxItems slots are live.
func New[T any](blockItems, maxItems int) *Pool[T] {
	if blockItems <= 0 {
		blockItems = DefaultBlockItems
	}
	return &Pool[T]{blockLen: blockItems, maxItems: maxItems}
}

// Alloc grabs a free slot, zeroes it, and returns its reference. O(1) except
// when a new slab block must be appended.
func (p *Pool[T]) Alloc() (Ref, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.free) == 0 {
		if p.maxItems > 0 && p.total >= p.maxItems {
			return Ref{}, common.ErrOutOfMemory
		}
		p.grow()
	}

	idx := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]

	s := p.slot(idx)
	var zero T
	s.val = zero
	s.gen++
	s.live = true
	p.live++

	return Ref{index: idx, gen: s.gen}, nil
}

// grow appends one slab block. Caller holds the lock.
func (p *Pool[T]) grow() {
	add := p.blockLen
	if p.maxItems > 0 && p.total+add > p.maxItems {
		add = p.maxItems - p.total
	}
	p.blocks = append(p.blocks, make([]slot[T], add))
	for i := p.total + add - 1; i >= p.total; i-- {
		p.free = append(p.free, uint32(i))
	}
	p.total += add
}

// slot maps a global index to its block-local slot. Caller holds the lock
// and guarantees idx < p.total. Block sizes vary only in the final capped
// block, so indices are walked block by block.
func (p *Pool[T]) slot(idx uint32) *slot[T] {
	i := int(idx)
	for b := range p.blocks {
		if i < len(p.blocks[b]) {
			return &p.blocks[b][i]
		}
		i -= len(p.blocks[b])
	}
	return nil
}

// Get returns the record for a live reference, or false for a stale, freed,
// or foreign one. The returned pointer remains stable until the slot is
// freed.
func (p *Pool[T]) Get(r Ref) (*T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if int(r.index) >= p.total {
		return nil, false
	}
	s := p.slot(r.index)
	if !s.live || s.gen != r.gen {
		return nil, false
	}
	return &s.val, true
}

// Free returns a slot to the free list. Freeing a stale or already-freed
// reference is an error, not corruption.
func (p *Pool[T]) Free(r Ref) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if int(r.index) >= p.total {
		return common.ErrInvalidHandle
	}
	s := p.slot(r.index)
	if !s.live || s.gen != r.gen {
		return common.ErrInvalidHandle
	}
	s.live = false
	var zero T
	s.val = zero
	p.free = append(p.free, r.index)
	p.live--
	return nil
}

// Live returns the number of allocated slots. Non-zero at teardown means
// leaked handles.
func (p *Pool[T]) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live
}

// Cap returns the current slot capacity across all slabs.
func (p *Pool[T]) Cap() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// Clear force-frees every live slot, invalidating all outstanding
// references. Returns the number of slots that were still live.
func (p *Pool[T]) Clear() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := p.live
	p.free = p.free[:0]
	var zero T
	for b := range p.blocks {
		for i := range p.blocks[b] {
			if p.blocks[b][i].live {
				p.blocks[b][i].live = false
				p.blocks[b][i].val = zero
			}
		}
	}
	for i := p.total - 1; i >= 0; i-- {
		p.free = append(p.free, uint32(i))
	}
	p.live = 0
	return n
}
