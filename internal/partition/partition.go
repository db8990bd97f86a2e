// Package partition splits the candidate interval [0, total) into contiguous
// ranges, one per worker, and computes the interval's upper bound from the
// requested number of primes.
package partition

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNoParts is returned when asked to split into zero parts.
	ErrNoParts = errors.New("partition: number of parts must be positive")
	// ErrTooManyParts is returned when a non-empty interval would produce
	// empty partitions.
	ErrTooManyParts = errors.New("partition: more parts than integers")
)

// Range is the half-open interval [Offset, Offset+Size) of candidate integers.
type Range struct {
	Offset uint64
	Size   uint64
}

// End returns the exclusive upper end of the range.
func (r Range) End() uint64 { return r.Offset + r.Size }

// Contains reports whether n lies inside the range.
func (r Range) Contains(n uint64) bool { return n >= r.Offset && n < r.End() }

func (r Range) String() string { return fmt.Sprintf("[%d, %d)", r.Offset, r.End()) }

// Split divides [0, total) into parts contiguous ranges. The remainder
// total%parts goes entirely to the first range; every other range has
// total/parts integers.
func Split(total uint64, parts int) ([]Range, error) {
	if parts <= 0 {
		return nil, ErrNoParts
	}
	n := uint64(parts)
	if total > 0 && n > total {
		return nil, fmt.Errorf("%w: %d parts for %d integers", ErrTooManyParts, parts, total)
	}

	quot, rem := total/n, total%n
	ranges := make([]Range, parts)
	var offset uint64
	for i := range ranges {
		size := quot
		if i == 0 {
			size += rem
		}
		ranges[i] = Range{Offset: offset, Size: size}
		offset += size
	}
	return ranges, nil
}

// UpperBound returns an upper bound on the k-th prime using Rosser's theorem:
// 12 for k < 6, otherwise floor(k * (ln k + ln ln k)).
//
// The logarithms are evaluated in float64, so the bound can come out slightly
// too small for very large k, and the conversion overflows for k near the
// top of the uint64 range. Neither case is guarded.
func UpperBound(k uint64) uint64 {
	if k < 6 {
		return 12
	}
	fk := float64(k)
	return uint64(fk * (math.Log(fk) + math.Log(math.Log(fk))))
}
