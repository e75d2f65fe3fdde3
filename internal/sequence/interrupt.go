package sequence

import (
	"math/rand/v2"
	"sort"

	"github.com/roach88/studyseq/internal/ir"
)

// evenGaps places m firings among the n+1 gaps around n entries at
// floor((i+1)*n/(m+1)). Gap g sits just before entry g; gap n is after the
// last entry. For 1 <= m <= n the gaps are distinct and strictly increasing.
func evenGaps(n, m int) []int {
	gaps := make([]int, m)
	for i := 0; i < m; i++ {
		gaps[i] = (i + 1) * n / (m + 1)
	}
	return gaps
}

// randomGaps picks m distinct gaps uniformly from 0..n, ascending.
func randomGaps(n, m int, rng *rand.Rand) []int {
	gaps := rng.Perm(n + 1)[:m]
	sort.Ints(gaps)
	return gaps
}

// applyInterruptions splices every interruption into entries. Gaps are
// computed against the base entries for each descriptor, and firings that
// share a gap keep declaration order. It returns the new entries and the
// number of firings inserted.
func applyInterruptions(entries []ir.SequenceEntry, interruptions []ir.Interruption, rng *rand.Rand) ([]ir.SequenceEntry, int) {
	if len(interruptions) == 0 {
		return entries, 0
	}

	n := len(entries)
	inserts := make([][]string, n+1)
	extra := 0
	fired := 0
	for _, in := range interruptions {
		var gaps []int
		if in.Spacing == ir.SpacingRandom {
			gaps = randomGaps(n, in.NumInterruptions, rng)
		} else {
			gaps = evenGaps(n, in.NumInterruptions)
		}
		for _, g := range gaps {
			inserts[g] = append(inserts[g], in.Components...)
			extra += len(in.Components)
			fired++
		}
	}

	out := make([]ir.SequenceEntry, 0, n+extra)
	for g := 0; g <= n; g++ {
		for _, step := range inserts[g] {
			out = append(out, ir.LeafEntry(step))
		}
		if g < n {
			out = append(out, entries[g])
		}
	}
	return out, fired
}
