package conf

import "github.com/genhoi/unit/pkg/shockcore/memory"

// djbHash is the classic Bernstein hash nginx unit uses for its level-hash
// tables (nxt_djb_hash): h = h*33 + c, seeded at 5381.
func djbHash(key []byte) uint32 {
	h := uint32(5381)
	for _, c := range key {
		h = h*33 + uint32(c)
	}
	return h
}

// dupKeyTable is the temporary-arena-scoped duplicate-key detector used
// while parsing an object: O(1) average insert/lookup keyed by the DJB hash
// of the member name, bucket chains broken by full byte comparison.
type dupKeyTable struct {
	arena   *memory.Arena
	buckets []*dupKeyEntry
}

type dupKeyEntry struct {
	hash uint32
	key  []byte
	next *dupKeyEntry
}

func newDupKeyTable(arena *memory.Arena, expected int) *dupKeyTable {
	n := 8
	for n < expected*2 {
		n <<= 1
	}
	return &dupKeyTable{
		arena:   arena,
		buckets: make([]*dupKeyEntry, n),
	}
}

// insert reports whether key was already present. On first insertion it
// copies key into the table's arena (the temporary arena, not the output
// tree's arena) and returns false.
func (t *dupKeyTable) insert(key []byte) (duplicate bool) {
	h := djbHash(key)
	idx := h & uint32(len(t.buckets)-1)

	for e := t.buckets[idx]; e != nil; e = e.next {
		if e.hash == h && string(e.key) == string(key) {
			return true
		}
	}

	stored := t.arena.Get(len(key))
	copy(stored, key)

	t.buckets[idx] = &dupKeyEntry{hash: h, key: stored, next: t.buckets[idx]}
	return false
}
