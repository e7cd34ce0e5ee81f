// Package hwcaps detects the CPU capability tier of the host. A tier is
// one element of a closed, totally ordered enumeration from i386 up to
// x86-64-v4; detection returns the highest tier whose full cumulative
// flag set the hardware demonstrably supports, and never fails: an
// unreadable or foreign CPU degrades to the lowest tier.
package hwcaps

import (
	"iter"

	"github.com/jrelvas-ipc/hwcaps-loader/pkg/errors"
)

// Tier is one CPU capability class. The zero value is the lowest tier.
type Tier int

// Tiers in ascending capability order. The ordering is total and fixed;
// candidate directories on disk are named after Tier.String().
const (
	TierI386 Tier = iota
	TierI486
	TierI586
	TierI686
	TierX8664v1
	TierX8664v2
	TierX8664v3
	TierX8664v4

	tierCount
)

var tierNames = [...]string{
	TierI386:    "i386",
	TierI486:    "i486",
	TierI586:    "i586",
	TierI686:    "i686",
	TierX8664v1: "x86-64-v1",
	TierX8664v2: "x86-64-v2",
	TierX8664v3: "x86-64-v3",
	TierX8664v4: "x86-64-v4",
}

// Lowest returns the floor of the tier order.
func Lowest() Tier { return TierI386 }

// Highest returns the ceiling of the tier order.
func Highest() Tier { return tierCount - 1 }

// Valid reports whether t is a defined tier.
func (t Tier) Valid() bool {
	return t >= TierI386 && t < tierCount
}

// String returns the on-disk directory identifier for the tier.
func (t Tier) String() string {
	if !t.Valid() {
		return "unknown"
	}
	return tierNames[t]
}

// ParseTier maps a directory identifier back to its tier.
func ParseTier(name string) (Tier, error) {
	for t, n := range tierNames {
		if n == name {
			return Tier(t), nil
		}
	}
	return Lowest(), errors.Newf(errors.ErrPanic, "unknown capability tier %q", name)
}

// TiersFrom yields tiers from t down to the lowest, inclusive. The
// sequence is finite, restartable and lazy; ranging over it twice
// produces the same descending order. Dispatch never walks upward: a
// host detected at v2 must not attempt a v3 binary.
func TiersFrom(t Tier) iter.Seq[Tier] {
	if !t.Valid() {
		t = Lowest()
	}
	return func(yield func(Tier) bool) {
		for cur := t; cur >= Lowest(); cur-- {
			if !yield(cur) {
				return
			}
		}
	}
}
