package util

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// GetKeys returns the keys of m in ascending order.
func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

// Distinct returns the distinct values of xs in ascending order.
func Distinct[A constraints.Ordered](xs []A) []A {
	out := slices.Clone(xs)
	slices.Sort(out)
	return slices.Compact(out)
}

// Contains reports whether xs holds x.
func Contains[A comparable](xs []A, x A) bool {
	return slices.Contains(xs, x)
}

func Min[A constraints.Ordered](a, b A) A {
	if a > b {
		return b
	}
	return a
}

func Max[A constraints.Ordered](a, b A) A {
	if a < b {
		return b
	}
	return a
}
