package paths

import (
	"iter"
	"path/filepath"

	"github.com/jrelvas-ipc/hwcaps-loader/pkg/errors"
	"github.com/jrelvas-ipc/hwcaps-loader/pkg/hwcaps"
)

// Candidate pairs one capability tier with the fully qualified path of
// the variant binary that tier would execute.
type Candidate struct {
	Tier hwcaps.Tier
	Path string
}

// Candidates returns the ordered fallback sequence for a target on a
// host detected at the given tier: one candidate per tier, most
// optimized first, descending to the lowest defined tier. The sequence
// is finite, lazy and restartable; ranging over it twice yields the
// identical order.
//
// Every formatted path is length-checked up front, before the caller
// can attempt any execution: a path that does not fit the bounded
// buffer fails the whole dispatch with TARGET_PATH_TOO_LARGE rather
// than silently skipping a tier.
func (l Layout) Candidates(tier hwcaps.Tier, target Target) (iter.Seq[Candidate], error) {
	for t := range hwcaps.TiersFrom(tier) {
		if len(l.CandidatePath(t, target))+1 > MaxPathLen {
			return nil, errors.Newf(errors.ErrTargetPathTooLarge,
				"candidate path for tier %s exceeds %d bytes", t, MaxPathLen).
				WithPath(target.Rel())
		}
	}

	return func(yield func(Candidate) bool) {
		for t := range hwcaps.TiersFrom(tier) {
			c := Candidate{Tier: t, Path: l.CandidatePath(t, target)}
			if !yield(c) {
				return
			}
		}
	}, nil
}

// CandidatePath formats the variant path for one tier:
// {prefix}/hwcaps-loader/{tier}/{target}.
func (l Layout) CandidatePath(tier hwcaps.Tier, target Target) string {
	return filepath.Join(l.VariantsRoot(), tier.String(), target.Rel())
}
