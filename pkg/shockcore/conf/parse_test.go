package conf

import (
	"strings"
	"testing"

	"github.com/genhoi/unit/pkg/shockcore/memory"
)

func newTestArena(t *testing.T) *memory.Arena {
	t.Helper()
	pool := memory.NewPool(4096)
	a := pool.Get()
	t.Cleanup(a.Destroy)
	return a
}

func TestParseScalars(t *testing.T) {
	a := newTestArena(t)

	cases := []struct {
		in   string
		want Value
	}{
		{"null", Null()},
		{"true", Bool(true)},
		{"false", Bool(false)},
		{"0", Int(0)},
		{"-0", Int(0)},
		{"42", Int(42)},
		{"-42", Int(-42)},
		{`"hi"`, String(a, "hi")},
	}

	for _, c := range cases {
		v, err := Parse(a, []byte(c.in))
		if err != nil {
			t.Fatalf("Parse(%q): unexpected error: %v", c.in, err)
		}
		if !Equal(v, c.want) {
			t.Errorf("Parse(%q) = %v, want %v", c.in, v, c.want)
		}
	}
}

func TestParseObjectInsertionOrder(t *testing.T) {
	a := newTestArena(t)

	v, err := Parse(a, []byte(`{"a":1,"b":[1,2,3]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	members := v.Members()
	if len(members) != 2 {
		t.Fatalf("len(members) = %d, want 2", len(members))
	}
	if members[0].Name.String() != "a" || members[1].Name.String() != "b" {
		t.Fatalf("members out of insertion order: %v", members)
	}
}

func TestParseDuplicateKeyRejected(t *testing.T) {
	a := newTestArena(t)

	_, err := Parse(a, []byte(`{"a":1,"a":2}`))
	if err == nil {
		t.Fatal("expected duplicate-key error, got nil")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("err is %T, want *ParseError", err)
	}
	if pe.Reason() != "duplicate-key" {
		t.Fatalf("Reason() = %q, want duplicate-key", pe.Reason())
	}
}

func TestParseLeadingZeroRejected(t *testing.T) {
	a := newTestArena(t)

	_, err := Parse(a, []byte(`{"a":01}`))
	if err == nil {
		t.Fatal("expected leading-zero error, got nil")
	}
}

func TestParseIntegerOverflowRejected(t *testing.T) {
	a := newTestArena(t)

	_, err := Parse(a, []byte("99999999999999999999"))
	if err == nil {
		t.Fatal("expected integer-overflow error, got nil")
	}
	pe, ok := err.(*ParseError)
	if !ok || pe.Reason() != "integer-overflow" {
		t.Fatalf("err = %v, want integer-overflow ParseError", err)
	}
}

func TestParseMaxInt64Boundary(t *testing.T) {
	a := newTestArena(t)

	v, err := Parse(a, []byte("9223372036854775807"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Int() != 9223372036854775807 {
		t.Fatalf("Int() = %d, want max int64", v.Int())
	}

	if _, err := Parse(a, []byte("9223372036854775808")); err == nil {
		t.Fatal("expected overflow just past max int64")
	}

	v, err = Parse(a, []byte("-9223372036854775808"))
	if err != nil {
		t.Fatalf("unexpected error for min int64: %v", err)
	}
	if v.Int() != -9223372036854775808 {
		t.Fatalf("Int() = %d, want min int64", v.Int())
	}
}

func TestParseFloatRejected(t *testing.T) {
	a := newTestArena(t)

	for _, in := range []string{"1.5", "1e5", "1E5"} {
		if _, err := Parse(a, []byte(in)); err == nil {
			t.Errorf("Parse(%q): expected error, got nil", in)
		}
	}
}

func TestParseSurrogatePair(t *testing.T) {
	a := newTestArena(t)

	// U+1D11E MUSICAL SYMBOL G CLEF, encoded as a UTF-16 surrogate pair.
	v, err := Parse(a, []byte("\"\\uD834\\uDD1E\""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "\U0001D11E"
	if v.String() != want {
		t.Fatalf("String() = %q, want %q", v.String(), want)
	}
}

func TestParseUnpairedSurrogateRejected(t *testing.T) {
	a := newTestArena(t)

	if _, err := Parse(a, []byte(`"\uD834"`)); err == nil {
		t.Fatal("expected unpaired-surrogate error, got nil")
	}
}

func TestParseShortLongStringParity(t *testing.T) {
	a := newTestArena(t)

	short := `"short"`
	long := `"` + strings.Repeat("x", 64) + `"`

	sv, err := Parse(a, []byte(short))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lv, err := Parse(a, []byte(long))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sv.Kind() != KindShortStr {
		t.Fatalf("short string parsed as Kind %v, want KindShortStr", sv.Kind())
	}
	if lv.Kind() != KindStr {
		t.Fatalf("long string parsed as Kind %v, want KindStr", lv.Kind())
	}
	if sv.String() != "short" {
		t.Fatalf("String() = %q", sv.String())
	}
	if lv.String() != strings.Repeat("x", 64) {
		t.Fatalf("String() mismatch for long string")
	}
}

func TestParseTrailingDataRejected(t *testing.T) {
	a := newTestArena(t)

	if _, err := Parse(a, []byte(`1 2`)); err == nil {
		t.Fatal("expected trailing-data error, got nil")
	}
}

func TestParseUnterminatedRejected(t *testing.T) {
	a := newTestArena(t)

	cases := []string{`{"a":1`, `[1,2`, `"abc`}
	for _, in := range cases {
		if _, err := Parse(a, []byte(in)); err == nil {
			t.Errorf("Parse(%q): expected error, got nil", in)
		}
	}
}

func TestParseControlByteInStringRejected(t *testing.T) {
	a := newTestArena(t)

	if _, err := Parse(a, []byte("\"a\x01b\"")); err == nil {
		t.Fatal("expected control-byte-in-string error, got nil")
	}
}

func TestParseEmptyArrayAndObject(t *testing.T) {
	a := newTestArena(t)

	v, err := Parse(a, []byte(`[]`))
	if err != nil || v.Kind() != KindArray || v.Len() != 0 {
		t.Fatalf("Parse([]) = %v, %v", v, err)
	}

	v, err = Parse(a, []byte(`{}`))
	if err != nil || v.Kind() != KindObject || v.Len() != 0 {
		t.Fatalf("Parse({}) = %v, %v", v, err)
	}
}
