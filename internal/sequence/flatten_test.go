package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/studyseq/internal/ir"
)

func nestedSequence() *ir.Sequence {
	return &ir.Sequence{
		Order:     ir.OrderFixed,
		OrderPath: ir.RootPath,
		Components: []ir.SequenceEntry{
			ir.LeafEntry("intro"),
			ir.BlockEntry(&ir.Sequence{
				Order:     ir.OrderRandom,
				OrderPath: "root-1",
				Components: []ir.SequenceEntry{
					ir.LeafEntry("b"),
					ir.BlockEntry(&ir.Sequence{
						Order:      ir.OrderFixed,
						OrderPath:  "root-1-0",
						Components: []ir.SequenceEntry{ir.LeafEntry("x"), ir.LeafEntry("y")},
					}),
					ir.LeafEntry("a"),
				},
			}),
			ir.LeafEntry("outro"),
			ir.LeafEntry(ir.EndStep),
		},
	}
}

func TestFlatMapDepthFirst(t *testing.T) {
	assert.Equal(t,
		[]string{"intro", "b", "x", "y", "a", "outro", "end"},
		FlatMap(nestedSequence()))
}

func TestFlatMapIdempotentOnFlatSequence(t *testing.T) {
	flat := FlatMap(nestedSequence())

	entries := make([]ir.SequenceEntry, len(flat))
	for i, s := range flat {
		entries[i] = ir.LeafEntry(s)
	}
	flatSeq := &ir.Sequence{Order: ir.OrderFixed, OrderPath: ir.RootPath, Components: entries}

	assert.Equal(t, flat, FlatMap(flatSeq))
	assert.Equal(t, FlatMap(flatSeq), FlatMap(flatSeq))
}

func TestFlatMapDoesNotMutate(t *testing.T) {
	seq := nestedSequence()
	before := seq.Clone()
	_ = FlatMap(seq)
	assert.Equal(t, before, seq)
}

func TestFlatMapTemplate(t *testing.T) {
	tmpl := &ir.OrderObject{
		Order: ir.OrderFixed,
		Components: []ir.Component{
			ir.Leaf("intro"),
			ir.Nested(&ir.OrderObject{Order: ir.OrderRandom, Components: leaves("a", "b", "c")}),
		},
	}
	assert.Equal(t, []string{"intro", "a", "b", "c"}, FlatMap(tmpl))
}

func TestFlatMapEmpty(t *testing.T) {
	assert.Empty(t, FlatMap(&ir.Sequence{}))
}

func TestStepIDs(t *testing.T) {
	assert.Equal(t,
		[]string{"intro_0", "b_1", "x_2", "y_3", "a_4", "outro_5", "end_6"},
		StepIDs(nestedSequence()))
}

func TestMaxSteps(t *testing.T) {
	tmpl := &ir.OrderObject{
		Order: ir.OrderFixed,
		Components: []ir.Component{
			ir.Leaf("intro"),
			ir.Nested(&ir.OrderObject{
				Order:      ir.OrderRandom,
				NumSamples: intPtr(1),
				Components: []ir.Component{
					ir.Leaf("short"),
					ir.Nested(&ir.OrderObject{Order: ir.OrderFixed, Components: leaves("l1", "l2", "l3")}),
				},
			}),
		},
		Interruptions: []ir.Interruption{{Spacing: ir.SpacingEven, NumInterruptions: 2, Components: []string{"break"}}},
	}

	// intro + largest sampled entry (3) + 2 breaks + end
	assert.Equal(t, 7, MaxSteps(tmpl))
}

func TestMaxStepsFixedTruncation(t *testing.T) {
	tmpl := &ir.OrderObject{Order: ir.OrderFixed, Components: leaves("a", "b", "c"), NumSamples: intPtr(2)}
	assert.Equal(t, 3, MaxSteps(tmpl))
}
