package sequence

import (
	"fmt"
	"sort"

	"github.com/roach88/studyseq/internal/ir"
)

// FlatMap returns the leaf steps of t in depth-first, left-to-right order.
//
// It is a pure structural walk: it works on resolved sequences and on
// templates alike and performs no resolution. Flattening an already-flat
// sequence returns its components unchanged.
func FlatMap(t ir.Tree) []string {
	out := make([]string, 0, t.Len())
	return appendFlat(out, t)
}

func appendFlat(out []string, t ir.Tree) []string {
	for i := 0; i < t.Len(); i++ {
		leaf, sub := t.At(i)
		if sub != nil {
			out = appendFlat(out, sub)
			continue
		}
		out = append(out, leaf)
	}
	return out
}

// StepID returns the canonical per-participant identifier of a step:
// "<leaf>_<flatIndex>". Answers are recorded under this identifier.
func StepID(leaf string, flatIndex int) string {
	return fmt.Sprintf("%s_%d", leaf, flatIndex)
}

// StepIDs returns the StepID of every step of seq, in order.
func StepIDs(seq *ir.Sequence) []string {
	flat := FlatMap(seq)
	ids := make([]string, len(flat))
	for i, leaf := range flat {
		ids[i] = StepID(leaf, i)
	}
	return ids
}

// countLeaves returns the number of flattened steps under t.
func countLeaves(t ir.Tree) int {
	n := 0
	for i := 0; i < t.Len(); i++ {
		if _, sub := t.At(i); sub != nil {
			n += countLeaves(sub)
		} else {
			n++
		}
	}
	return n
}

// MaxSteps returns the largest flattened step count any participant can get
// from root, including the trailing end step. Sampled blocks contribute their
// k largest entries.
func MaxSteps(root *ir.OrderObject) int {
	return maxBlockSteps(root) + 1
}

func maxBlockSteps(block *ir.OrderObject) int {
	sizes := make([]int, len(block.Components))
	for i, c := range block.Components {
		if c.Block != nil {
			sizes[i] = maxBlockSteps(c.Block)
		} else {
			sizes[i] = 1
		}
	}

	k := emittedCount(block)
	if block.Order != ir.OrderFixed {
		sort.Sort(sort.Reverse(sort.IntSlice(sizes)))
	}

	total := 0
	for i := 0; i < k && i < len(sizes); i++ {
		total += sizes[i]
	}
	for _, in := range block.Interruptions {
		total += in.NumInterruptions * len(in.Components)
	}
	return total
}

// emittedCount returns how many of block's entries each participant receives.
func emittedCount(block *ir.OrderObject) int {
	if block.NumSamples != nil && *block.NumSamples < len(block.Components) {
		return *block.NumSamples
	}
	return len(block.Components)
}
