package lanes

// Mask is a per-lane boolean guard aligned 1:1 with a block's offsets.
// A set lane means the offset addresses a real element; cleared lanes must
// never be read from or written to backing memory.
type Mask []bool

// MaskFor computes the validity mask for the given offsets against the true
// element count: lane i is set iff offsets[i] < nElements.
func MaskFor(offsets []int, nElements int) Mask {
	m := make(Mask, len(offsets))
	for i, off := range offsets {
		m[i] = off < nElements
	}
	return m
}

// All reports whether every lane is set.
func (m Mask) All() bool {
	for _, ok := range m {
		if !ok {
			return false
		}
	}
	return true
}

// Count returns the number of set lanes.
func (m Mask) Count() int {
	n := 0
	for _, ok := range m {
		if ok {
			n++
		}
	}
	return n
}

// Element constrains the numeric element types a Buffer can hold.
type Element interface {
	~float32 | ~float64 | ~int32
}

// MaskedLoad gathers src at the given offsets. Masked-off lanes are never
// read from src and yield the element type's zero value. The bounds safety
// comes from the mask alone; src may be exactly nElements long.
func MaskedLoad[T Element](src []T, offsets []int, mask Mask) []T {
	vals := make([]T, len(offsets))
	for i, off := range offsets {
		if mask[i] {
			vals[i] = src[off]
		}
	}
	return vals
}

// MaskedStore scatters vals to dst at the given offsets, writing only where
// the mask is set. Masked-off lanes cause no write at all: no partial or
// out-of-bounds stores occur.
func MaskedStore[T Element](dst []T, offsets []int, vals []T, mask Mask) {
	for i, off := range offsets {
		if mask[i] {
			dst[off] = vals[i]
		}
	}
}
