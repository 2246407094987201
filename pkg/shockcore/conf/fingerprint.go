package conf

import (
	"hash"
	"sort"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a stable content hash of v: a canonical encoding of
// v's structure, with object members sorted by key before hashing, rather
// than Print's natural (insertion) order. Two structurally-equal trees
// therefore fingerprint identically regardless of the member order used to
// build them — useful for a configuration-reload subsystem deciding whether
// a freshly parsed tree actually changed anything before applying it.
func Fingerprint(v Value) [32]byte {
	h, _ := blake2b.New256(nil)
	hashValue(h, v)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

type hashSink struct{ h hash.Hash }

func (s hashSink) writeByte(b byte)     { s.h.Write([]byte{b}) }
func (s hashSink) writeString(v string) { s.h.Write([]byte(v)) }

// hashValue walks v the way printValue does, but sorts object members by
// key first so the hash is independent of the order members happened to be
// built in.
func hashValue(h hash.Hash, v Value) {
	w := hashSink{h}
	switch v.Kind() {
	case KindObject:
		members := append([]Member(nil), v.Members()...)
		sort.Slice(members, func(i, j int) bool {
			return members[i].Name.String() < members[j].Name.String()
		})
		w.writeByte('{')
		for i, m := range members {
			if i > 0 {
				w.writeByte(',')
			}
			printString(w, m.Name.StringBytes())
			w.writeByte(':')
			hashValue(h, m.Value)
		}
		w.writeByte('}')
	case KindArray:
		w.writeByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				w.writeByte(',')
			}
			hashValue(h, v.Index(i))
		}
		w.writeByte(']')
	default:
		printValue(w, v, Compact, 0)
	}
}
