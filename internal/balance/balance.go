// Package balance summarizes how evenly a generated population distributes
// steps across participants and positions.
package balance

import (
	"sort"

	"github.com/roach88/studyseq/internal/ir"
	"github.com/roach88/studyseq/internal/sequence"
)

// Report is the aggregate view of a population.
type Report struct {
	Sequences int `json:"sequences"`

	// Totals counts every occurrence of every step, end excluded.
	Totals map[string]int `json:"totals"`

	// Positions[step][i] counts occurrences of step at flattened index i.
	Positions map[string][]int `json:"positions"`

	MinLength int `json:"minLength"`
	MaxLength int `json:"maxLength"`

	// Blocks counts, per OrderPath, the sequences that contain that block.
	Blocks map[string]int `json:"blocks"`

	// BlockSteps counts direct leaf entries per OrderPath, interruption
	// steps included.
	BlockSteps map[string]map[string]int `json:"blockSteps"`
}

// Analyze builds a Report for seqs.
func Analyze(seqs []*ir.Sequence) *Report {
	r := &Report{
		Sequences:  len(seqs),
		Totals:     make(map[string]int),
		Positions:  make(map[string][]int),
		Blocks:     make(map[string]int),
		BlockSteps: make(map[string]map[string]int),
	}

	for i, seq := range seqs {
		flat := sequence.FlatMap(seq)
		if i == 0 || len(flat) < r.MinLength {
			r.MinLength = len(flat)
		}
		if len(flat) > r.MaxLength {
			r.MaxLength = len(flat)
		}

		for pos, step := range flat {
			if step == ir.EndStep {
				continue
			}
			r.Totals[step]++
			counts := r.Positions[step]
			for len(counts) <= pos {
				counts = append(counts, 0)
			}
			counts[pos]++
			r.Positions[step] = counts
		}

		seen := make(map[string]bool)
		r.walk(seq, seen)
		for path := range seen {
			r.Blocks[path]++
		}
	}
	return r
}

func (r *Report) walk(seq *ir.Sequence, seen map[string]bool) {
	seen[seq.OrderPath] = true
	for _, e := range seq.Components {
		if e.Block != nil {
			r.walk(e.Block, seen)
			continue
		}
		if e.Leaf == ir.EndStep {
			continue
		}
		steps := r.BlockSteps[seq.OrderPath]
		if steps == nil {
			steps = make(map[string]int)
			r.BlockSteps[seq.OrderPath] = steps
		}
		steps[e.Leaf]++
	}
}

// Steps returns every counted step, sorted.
func (r *Report) Steps() []string {
	steps := make([]string, 0, len(r.Totals))
	for s := range r.Totals {
		steps = append(steps, s)
	}
	sort.Strings(steps)
	return steps
}

// Spread returns max minus min of Totals over steps. Steps that never
// occurred count as zero. With no arguments every counted step is used.
func (r *Report) Spread(steps ...string) int {
	if len(steps) == 0 {
		steps = r.Steps()
	}
	if len(steps) == 0 {
		return 0
	}
	lo, hi := r.Totals[steps[0]], r.Totals[steps[0]]
	for _, s := range steps[1:] {
		c := r.Totals[s]
		if c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}
	return hi - lo
}

// BlockSpread is Spread restricted to the direct leaves recorded for one
// block. It returns 0 for an unknown path.
func (r *Report) BlockSpread(path string) int {
	steps := r.BlockSteps[path]
	if len(steps) == 0 {
		return 0
	}
	lo, hi := -1, 0
	for _, c := range steps {
		if lo < 0 || c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}
	return hi - lo
}

// Paths returns every block path seen, sorted.
func (r *Report) Paths() []string {
	paths := make([]string, 0, len(r.Blocks))
	for p := range r.Blocks {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
