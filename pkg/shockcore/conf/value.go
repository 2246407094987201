// Package conf implements the configuration value tree: a parser from a
// JSON-like textual format into an arena-owned tree of typed values, a
// two-phase size/emit printer, and a path-addressed edit-overlay engine that
// clones a tree while applying a compiled chain of structural edits.
//
// Every Value is a closed, tagged union rather than an interface hierarchy:
// the variant set is fixed (Kind below) and every consumer switches on it.
package conf

import "github.com/genhoi/unit/pkg/shockcore/memory"

// Kind discriminates the Value union. The zero Kind is Null so a zero Value
// is a valid null.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	// KindNumber is reserved for a future floating-point variant; the parser
	// never produces it today and rejects any input that would require it
	// (see parse.go's handling of '.', 'e', 'E').
	KindNumber
	KindShortStr
	KindStr
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindNumber:
		return "number"
	case KindShortStr, KindStr:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// shortStrMax is the inline capacity of the ShortStr variant: a length byte
// plus 14 bytes fits in the same 16 bytes a long-string (pointer+length)
// payload would occupy on a 64-bit build.
const shortStrMax = 14

// Value is the CONF tree's sealed variant type.
type Value struct {
	kind Kind

	b bool
	i int64

	shortLen byte
	short    [shortStrMax]byte

	str []byte

	arr []Value
	obj []Member
}

// Member is one (name, value) pair of an Object. Name is always a string
// Value (Short or Str).
type Member struct {
	Name  Value
	Value Value
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns a signed 64-bit integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// String returns a string value, using the inline ShortStr encoding when s
// is short enough and the heap-backed Str encoding (copied into a) otherwise.
func String(a *memory.Arena, s string) Value {
	if len(s) <= shortStrMax {
		v := Value{kind: KindShortStr, shortLen: byte(len(s))}
		copy(v.short[:], s)
		return v
	}
	return Value{kind: KindStr, str: memory.MakeString(a, s)}
}

// Array returns an array value wrapping items. items should be allocated
// from a via memory.MakeSlice by the caller (parser/editor); Array itself
// performs no copy.
func Array(items []Value) Value {
	return Value{kind: KindArray, arr: items}
}

// Object returns an object value wrapping members, in first-occurrence
// (insertion) order. members should be arena-allocated by the caller.
func Object(members []Member) Value {
	return Value{kind: KindObject, obj: members}
}

// Kind returns the value's variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns v's boolean payload. Only meaningful when Kind() == KindBool.
func (v Value) Bool() bool { return v.b }

// Int returns v's integer payload. Only meaningful when Kind() == KindInt.
func (v Value) Int() int64 { return v.i }

// IsString reports whether v is either string variant.
func (v Value) IsString() bool { return v.kind == KindShortStr || v.kind == KindStr }

// StringBytes returns v's decoded string bytes, for either string variant.
// The printer and the edit engine's key comparisons use this so the two
// encodings are indistinguishable to callers.
func (v Value) StringBytes() []byte {
	switch v.kind {
	case KindShortStr:
		return v.short[:v.shortLen]
	case KindStr:
		return v.str
	default:
		return nil
	}
}

// String returns v's decoded string payload as a Go string (one copy).
func (v Value) String() string { return string(v.StringBytes()) }

// Len returns the number of elements (Array) or members (Object) in v.
// Undefined for other kinds.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	default:
		return 0
	}
}

// Index returns the i'th element of an Array value.
func (v Value) Index(i int) Value { return v.arr[i] }

// Elements returns the backing slice of an Array value.
func (v Value) Elements() []Value { return v.arr }

// Members returns the backing slice of an Object value, in insertion order.
func (v Value) Members() []Member { return v.obj }

// Get performs the linear member-by-name lookup the data model calls for:
// objects are expected to be small, so O(n) lookup by name is the deliberate
// tradeoff against O(1) indexed access and insertion-order printing.
func (v Value) Get(name string) (Value, bool) {
	for _, m := range v.obj {
		if m.Name.String() == name {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Equal reports whether v and other are structurally equal: same kind and
// payload, arrays element-wise equal, objects equal as sets of (name,value)
// pairs (member order is not part of structural equality — see §9's Object
// member order resolution).
func Equal(v, other Value) bool {
	if v.kind != other.kind {
		// Short/Str are required to be print-equivalent but are also
		// required to compare equal to each other structurally.
		if v.IsString() && other.IsString() {
			return v.String() == other.String()
		}
		return false
	}

	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i == other.i
	case KindShortStr, KindStr:
		return v.String() == other.String()
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !Equal(v.arr[i], other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for _, m := range v.obj {
			ov, ok := other.Get(m.Name.String())
			if !ok || !Equal(m.Value, ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
