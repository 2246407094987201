// Package memory provides the arena-scoped allocator shared by the conf and
// http11 packages: a bump/chunk allocator whose contents are freed en masse
// when the arena is destroyed, backed by a slab pool so repeated
// parse/request/edit cycles do not churn the Go heap.
package memory

import "sync"

const defaultSlabSize = 64 * 1024

// Arena is a bump allocator over a chain of byte slabs. It is not safe for
// concurrent use: one arena belongs to one parse, one request, or one edit,
// exactly as the owning caller's lifetime dictates.
type Arena struct {
	pool     *Pool
	slabSize int

	slab   []byte
	offset int

	// retained slabs, kept only so Destroy can return them to the pool;
	// the bump allocator itself never revisits them.
	used []*[]byte

	children []*Arena
}

// Pool recycles the underlying slabs of destroyed arenas.
type Pool struct {
	slabSize int
	raw      sync.Pool
	arenas   sync.Pool
}

// NewPool creates an arena pool whose slabs are slabSize bytes (rounded up
// to defaultSlabSize when zero).
func NewPool(slabSize int) *Pool {
	if slabSize <= 0 {
		slabSize = defaultSlabSize
	}

	p := &Pool{slabSize: slabSize}
	p.raw.New = func() any {
		buf := make([]byte, slabSize)
		return &buf
	}
	p.arenas.New = func() any {
		return &Arena{pool: p, slabSize: p.slabSize}
	}
	return p
}

// Get acquires a fresh top-level arena from the pool.
func (p *Pool) Get() *Arena {
	a := p.arenas.Get().(*Arena)
	a.slab = nil
	a.offset = 0
	a.used = a.used[:0]
	a.children = a.children[:0]
	return a
}

// Put returns the arena object itself to the pool. It does not release the
// arena's slabs or its children (Get clears the children list). Callers
// should prefer Arena.Destroy, which releases those first and then calls this.
func (p *Pool) Put(a *Arena) {
	p.arenas.Put(a)
}

func (p *Pool) getSlab() *[]byte {
	return p.raw.Get().(*[]byte)
}

func (p *Pool) putSlab(s *[]byte) {
	p.raw.Put(s)
}

// Get returns size bytes of uninitialised arena-owned storage.
func (a *Arena) Get(size int) []byte {
	if size <= 0 {
		return nil
	}

	if size > a.slabSize/2 {
		// Large allocation: bypass the slab, own slice tracked for Destroy.
		buf := make([]byte, size)
		a.used = append(a.used, &buf)
		return buf
	}

	if a.slab == nil || a.offset+size > len(a.slab) {
		slabPtr := a.pool.getSlab()
		a.slab = *slabPtr
		a.offset = 0
		a.used = append(a.used, slabPtr)
	}

	b := a.slab[a.offset : a.offset+size : a.offset+size]
	a.offset += size
	return b
}

// ZGet returns size bytes of zeroed arena-owned storage.
func (a *Arena) ZGet(size int) []byte {
	b := a.Get(size)
	for i := range b {
		b[i] = 0
	}
	return b
}

// Align returns size bytes whose backing array starts at an address that is
// a multiple of alignment. alignment must be a power of two.
func (a *Arena) Align(size, alignment int) []byte {
	if alignment <= 1 {
		return a.Get(size)
	}

	if a.slab != nil {
		base := sliceAddr(a.slab)
		pad := (-int(base) - a.offset) & (alignment - 1)
		if a.offset+pad+size <= len(a.slab) {
			a.offset += pad
			return a.Get(size)
		}
	}

	// No room to align within the current slab: allocate a fresh one
	// (oversized by alignment-1 so an aligned window of size bytes exists),
	// slicing the front off as padding.
	raw := a.Get(size + alignment - 1)
	base := sliceAddr(raw)
	pad := (-int(base)) & (alignment - 1)
	return raw[pad : pad+size : pad+size]
}

// Create mints a nested temporary arena for data structures that do not
// outlive the current parse/edit (e.g. the CONF object-parser's duplicate-key
// hash). pageSize sizes the child's slabs; the three alignment arguments
// mirror the contract's allowance for distinct small/medium/large object
// alignments but are accepted for interface parity and currently applied
// uniformly by the caller via Align.
func (a *Arena) Create(pageSize, align1, align2, align3 int) *Arena {
	_ = align1
	_ = align2
	_ = align3

	if pageSize <= 0 {
		pageSize = a.slabSize
	}

	pool := a.pool
	if pool.slabSize != pageSize {
		pool = NewPool(pageSize)
	}

	child := pool.Get()
	a.children = append(a.children, child)
	return child
}

// Free is a hint that p is no longer needed. This implementation uses a pure
// bump allocator, so Free never reclaims space mid-lifetime; it exists so
// callers that build a small-object freeing allocator on top (e.g. a
// freelist-backed hash bucket) have a place to route the hint without
// special-casing the arena they happen to run over.
func (a *Arena) Free(p []byte) {
	_ = p
}

// Destroy releases the arena and all of its nested children, returning their
// slabs to the pool.
func (a *Arena) Destroy() {
	for _, c := range a.children {
		c.Destroy()
	}
	a.children = a.children[:0]

	for _, s := range a.used {
		if len(*s) == a.slabSize {
			a.pool.putSlab(s)
		}
	}
	a.used = a.used[:0]
	a.slab = nil
	a.offset = 0

	a.pool.Put(a)
}
