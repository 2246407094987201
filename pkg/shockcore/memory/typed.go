package memory

import "unsafe"

// MakeSlice returns an arena-backed, contiguous slice of n zero-valued T,
// laid out exactly like a regular Go slice so the CONF value tree's arrays
// and objects can be indexed in O(1) without per-element arena bookkeeping.
func MakeSlice[T any](a *Arena, n int) []T {
	if n <= 0 {
		return nil
	}

	var zero T
	size := int(unsafe.Sizeof(zero)) * n
	align := int(unsafe.Alignof(zero))

	buf := a.Align(size, align)
	for i := range buf {
		buf[i] = 0
	}
	ptr := (*T)(unsafe.Pointer(&buf[0]))
	return unsafe.Slice(ptr, n)
}

// MakeString copies s into arena-owned storage, for the Value tree's
// long-string variant.
func MakeString(a *Arena, s string) []byte {
	if len(s) == 0 {
		return nil
	}
	b := a.Get(len(s))
	copy(b, s)
	return b
}
