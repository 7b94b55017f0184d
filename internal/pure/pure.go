// Package pure provides copy-on-write helpers for ordered slices. None of
// the functions modify their input.
package pure

// Insert returns a copy of seq with el placed at idx. An in-bounds idx
// replaces the element at that position; a negative or out-of-range idx
// appends el to the end.
func Insert[T any](seq []T, el T, idx int) []T {
	if idx < 0 || idx >= len(seq) {
		out := make([]T, len(seq), len(seq)+1)
		copy(out, seq)
		return append(out, el)
	}
	out := make([]T, len(seq))
	copy(out, seq)
	out[idx] = el
	return out
}

// Append is Insert with no position.
func Append[T any](seq []T, el T) []T {
	return Insert(seq, el, -1)
}

// Delete returns a copy of seq without the element at idx. A negative or
// out-of-range idx returns an unchanged copy.
func Delete[T any](seq []T, idx int) []T {
	if idx < 0 || idx >= len(seq) {
		out := make([]T, len(seq))
		copy(out, seq)
		return out
	}
	out := make([]T, 0, len(seq)-1)
	out = append(out, seq[:idx]...)
	return append(out, seq[idx+1:]...)
}
