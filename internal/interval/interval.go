// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package interval provides half-open byte range arithmetic.
package interval

// Interval is the half-open byte range [Begin, End).
// Bounds are 64-bit so that offset+size never wraps for 32-bit inputs.
type Interval struct {
	Begin, End uint64
}

// Of returns the interval [offset, offset+size).
func Of(offset uint32, size int) Interval {
	return Interval{uint64(offset), uint64(offset) + uint64(size)}
}

func (i Interval) Len() uint64 {
	if i.End < i.Begin {
		return 0
	}
	return i.End - i.Begin
}

func (i Interval) Empty() bool {
	return i.End <= i.Begin
}

// Intersect returns the overlap of a and b; it is Empty when they do not overlap.
func Intersect(a, b Interval) Interval {
	return Interval{max(a.Begin, b.Begin), min(a.End, b.End)}
}

// Overlaps reports whether a and b share at least one byte.
func Overlaps(a, b Interval) bool {
	return !Intersect(a, b).Empty()
}

// Contains reports whether outer covers every byte of inner.
// An empty inner interval is contained when it starts inside outer.
func Contains(outer, inner Interval) bool {
	return outer.Begin <= inner.Begin && inner.End <= outer.End
}

// AbsoluteDifference returns |a - b|.
func AbsoluteDifference(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}
