// Package compare defines a strict, total, locale-independent ordering over
// SARIF records.
//
// Every comparator is a Func: it returns a negative number when a orders
// before b, zero when they are equal, and a positive number otherwise.
// Comparators are pure package-level values. They hold no state, never fail
// and never block, so a single instance may be shared by any number of
// goroutines comparing disjoint or overlapping record pairs.
//
// Composite comparators are built from a small set of combinators:
//
//	Ptr     orders absent (nil) before present, then defers to the element
//	By      projects a field out of a record and compares it
//	Chain   runs comparators in a fixed order, stopping at the first difference
//	Slice   orders sequences by length, then element-wise
//	Map     orders unordered string-keyed maps canonically
//
// The field order of each composite comparator is part of its contract:
// changing it changes the total order, and therefore every sorted or
// deduplicated output built on it.
package compare

import (
	"cmp"
	"maps"
	"slices"
	"strings"
)

// Func is a three-way comparison function.
type Func[T any] func(a, b T) int

// Guard resolves the ordering of two possibly-absent references before
// either is dereferenced. decided is false only when both are present.
func Guard[T any](a, b *T) (result int, decided bool) {
	switch {
	case a == nil && b == nil:
		return 0, true
	case a == nil:
		return -1, true
	case b == nil:
		return 1, true
	default:
		return 0, false
	}
}

// Ptr lifts c to pointers: nil orders before non-nil, two nils are equal.
func Ptr[T any](c Func[T]) Func[*T] {
	return func(a, b *T) int {
		if r, ok := Guard(a, b); ok {
			return r
		}
		return c(*a, *b)
	}
}

// By compares records by the field that get extracts.
func By[T, F any](get func(T) F, c Func[F]) Func[T] {
	return func(a, b T) int {
		return c(get(a), get(b))
	}
}

// Chain compares with each comparator in turn and returns the first
// non-zero result.
func Chain[T any](cs ...Func[T]) Func[T] {
	return func(a, b T) int {
		for _, c := range cs {
			if r := c(a, b); r != 0 {
				return r
			}
		}
		return 0
	}
}

// Slice orders sequences by length first, then element by element.
// A nil slice is equal to an empty one.
func Slice[T any](c Func[T]) Func[[]T] {
	return func(a, b []T) int {
		if r := cmp.Compare(len(a), len(b)); r != 0 {
			return r
		}
		for i := range a {
			if r := c(a[i], b[i]); r != 0 {
				return r
			}
		}
		return 0
	}
}

// Map orders string-keyed maps independently of their iteration order.
//
// Smaller maps order first. Maps of equal size are compared by walking both
// key sets in ordinal order, comparing keys and then values, and returning
// at the first difference. Keys are re-sorted on every call; nothing about
// the inputs is assumed to be canonical already. A nil map is equal to an
// empty one.
func Map[V any](c Func[V]) Func[map[string]V] {
	return func(a, b map[string]V) int {
		if r := cmp.Compare(len(a), len(b)); r != 0 {
			return r
		}
		if len(a) == 0 {
			return 0
		}
		ak := slices.Sorted(maps.Keys(a))
		bk := slices.Sorted(maps.Keys(b))
		for i := range ak {
			if r := Ordinal(ak[i], bk[i]); r != 0 {
				return r
			}
			if r := c(a[ak[i]], b[bk[i]]); r != 0 {
				return r
			}
		}
		return 0
	}
}

// Ordinal compares strings by their raw bytes. For valid UTF-8 this is
// code point order; no case folding or collation is applied.
func Ordinal(a, b string) int {
	return strings.Compare(a, b)
}

// Number compares ordered values naturally. For floats, NaN orders before
// every other value and equals itself.
func Number[N cmp.Ordered](a, b N) int {
	return cmp.Compare(a, b)
}

// Bool orders false before true.
func Bool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// OptionalString orders absent strings before present ones, then ordinally.
var OptionalString = Ptr[string](Ordinal)

// URI compares URI references by their string form after the absence guard.
// No scheme-aware normalization is applied: "File:///a" and "file:///a" are
// different URIs here.
func URI(a, b *string) int {
	return OptionalString(a, b)
}

// Strings orders string sequences by length, then ordinally element-wise.
var Strings = Slice[string](Ordinal)

// StringMap orders map[string]string values such as fingerprints.
var StringMap = Map[string](Ordinal)

// Equal turns a comparator into an equality test.
func Equal[T any](c Func[T]) func(a, b T) bool {
	return func(a, b T) bool {
		return c(a, b) == 0
	}
}

// Reverse inverts the ordering of c.
func Reverse[T any](c Func[T]) Func[T] {
	return func(a, b T) int {
		return c(b, a)
	}
}
