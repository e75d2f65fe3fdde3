package compiler

import (
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/studyseq/internal/ir"
)

func TestCompileStudyBasic(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		uiConfig: {
			studyId: "pilot"
			numSequences: 200
		}
		sequence: {
			order: "fixed"
			components: [
				"introduction",
				{
					order: "random"
					numSamples: 2
					components: ["trial1", "trial2", "trial3"]
					interruptions: [{
						spacing: "even"
						numInterruptions: 1
						components: ["attention"]
					}]
				},
				"debrief",
			]
		}
		components: {
			introduction: { type: "markdown" }
			trial1: {}
			trial2: {}
			trial3: {}
			attention: { type: "questionnaire", description: "check" }
			debrief: {}
		}
	`)
	require.NoError(t, v.Err())

	cfg, err := CompileStudy(v)
	require.NoError(t, err)

	assert.Equal(t, "pilot", cfg.UIConfig.StudyID)
	assert.Equal(t, 200, cfg.UIConfig.SequenceCount())
	assert.Equal(t, ir.OrderFixed, cfg.Sequence.Order)
	require.Len(t, cfg.Sequence.Components, 3)
	assert.Equal(t, "introduction", cfg.Sequence.Components[0].Leaf)
	assert.Equal(t, "debrief", cfg.Sequence.Components[2].Leaf)

	nested := cfg.Sequence.Components[1].Block
	require.NotNil(t, nested)
	assert.Equal(t, ir.OrderRandom, nested.Order)
	require.NotNil(t, nested.NumSamples)
	assert.Equal(t, 2, *nested.NumSamples)
	assert.Equal(t, []ir.Interruption{{Spacing: ir.SpacingEven, NumInterruptions: 1, Components: []string{"attention"}}}, nested.Interruptions)

	assert.Len(t, cfg.Components, 6)
	assert.Equal(t, "questionnaire", cfg.Components["attention"].Type)
	assert.Equal(t, "check", cfg.Components["attention"].Description)
}

func TestCompileStudyDefaultsNumSequences(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`sequence: { order: "random", components: ["a", "b"] }`)

	cfg, err := CompileStudy(v)
	require.NoError(t, err)
	assert.Nil(t, cfg.UIConfig.NumSequences)
	assert.Equal(t, ir.DefaultNumSequences, cfg.UIConfig.SequenceCount())
	assert.Nil(t, cfg.Components)
}

func TestCompileStudyErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
		msg   string
	}{
		{
			name:  "missing sequence",
			src:   `uiConfig: { numSequences: 10 }`,
			field: "sequence",
			msg:   "required",
		},
		{
			name:  "missing order",
			src:   `sequence: { components: ["a"] }`,
			field: "sequence.order",
			msg:   "required",
		},
		{
			name:  "missing components",
			src:   `sequence: { order: "fixed" }`,
			field: "sequence.components",
			msg:   "required",
		},
		{
			name:  "numeric component",
			src:   `sequence: { order: "fixed", components: ["a", 3] }`,
			field: "sequence.components[1]",
			msg:   "string or an order object",
		},
		{
			name:  "float numSamples",
			src:   `sequence: { order: "random", components: ["a", "b"], numSamples: 1.5 }`,
			field: "sequence.numSamples",
			msg:   "integer",
		},
		{
			name: "interruption without count",
			src: `sequence: {
				order: "fixed"
				components: ["a", "b"]
				interruptions: [{ spacing: "even", components: ["x"] }]
			}`,
			field: "sequence.interruptions[0].numInterruptions",
			msg:   "required",
		},
		{
			name: "nested block error keeps location",
			src: `sequence: {
				order: "fixed"
				components: ["a", { components: ["b"] }]
			}`,
			field: "sequence.components[1].order",
			msg:   "required",
		},
		{
			name: "unknown leaf",
			src: `
				sequence: { order: "fixed", components: ["intro", "typo"] }
				components: { intro: {} }
			`,
			field: "sequence.components[1]",
			msg:   `unknown component "typo"`,
		},
		{
			name: "unknown interruption step",
			src: `
				sequence: {
					order: "fixed"
					components: ["intro"]
					interruptions: [{ spacing: "even", numInterruptions: 1, components: ["pause"] }]
				}
				components: { intro: {} }
			`,
			field: "sequence.interruptions[0].components",
			msg:   `unknown component "pause"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := cuecontext.New()
			v := ctx.CompileString(tt.src)
			require.NoError(t, v.Err())

			_, err := CompileStudy(v)
			require.Error(t, err)

			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
			assert.Contains(t, ce.Message, tt.msg)
		})
	}
}

func TestCompileStudyUndeclaredLeavesAllowedWithoutComponents(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`sequence: { order: "fixed", components: ["anything", "goes"] }`)

	cfg, err := CompileStudy(v)
	require.NoError(t, err)
	assert.Len(t, cfg.Sequence.Components, 2)
}

func TestCompileStudyPropagatesCUEErrors(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		sequence: { order: "fixed", components: ["a"] }
		sequence: { order: "random" }
	`)

	_, err := CompileStudy(v)
	require.Error(t, err)
}

func TestCompileErrorFormatting(t *testing.T) {
	err := &CompileError{Field: "sequence.order", Message: "order is required"}
	assert.Equal(t, "sequence.order: order is required", err.Error())
}
