package sequence

import (
	"fmt"

	"github.com/roach88/studyseq/internal/ir"
)

func leaves(names ...string) []ir.Component {
	out := make([]ir.Component, len(names))
	for i, n := range names {
		out[i] = ir.Leaf(n)
	}
	return out
}

func names(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return out
}

func intPtr(n int) *int {
	return &n
}

func study(count int, root ir.OrderObject) *ir.StudyConfig {
	return &ir.StudyConfig{
		UIConfig: ir.UIConfig{NumSequences: intPtr(count)},
		Sequence: root,
	}
}

// tally counts every flattened step across seqs, end included.
func tally(seqs []*ir.Sequence) map[string]int {
	counts := make(map[string]int)
	for _, s := range seqs {
		for _, step := range FlatMap(s) {
			counts[step]++
		}
	}
	return counts
}

func spread(counts map[string]int, keys []string) int {
	lo, hi := -1, -1
	for _, k := range keys {
		c := counts[k]
		if lo < 0 || c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}
	return hi - lo
}
