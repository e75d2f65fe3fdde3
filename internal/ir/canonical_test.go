package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"negative int", -100, "-100"},
		{"int64", int64(9223372036854775807), "9223372036854775807"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"empty array", []any{}, "[]"},
		{"string slice", []string{"a", "b"}, `["a","b"]`},
		{"empty object", map[string]any{}, "{}"},
		{"simple object", map[string]any{"a": 1}, `{"a":1}`},
		{"order kind", OrderRandom, `"random"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := map[string]any{
		"zebra": 1,
		"alpha": 2,
		"beta":  map[string]any{"y": 1, "x": 2},
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":{"x":2,"y":1},"zebra":1}`, string(result))
}

func TestMarshalCanonicalUTF16Ordering(t *testing.T) {
	// U+FF61 sorts before U+1F600 in UTF-8 byte order but after it in UTF-16
	// code units (the emoji encodes as a 0xD83D surrogate).
	obj := map[string]any{
		"\U0001F600": 1,
		"\uFF61":     2,
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":1,\"\uFF61\":2}", string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical("<b>trial & error</b>")
	require.NoError(t, err)
	assert.Equal(t, `"<b>trial & error</b>"`, string(result))
	assert.NotContains(t, string(result), "\\u003c")
	assert.NotContains(t, string(result), "\\u0026")
}

func TestMarshalCanonicalRejectsFloatsAndNull(t *testing.T) {
	_, err := MarshalCanonical(1.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are forbidden")

	_, err = MarshalCanonical(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null is forbidden")

	_, err = MarshalCanonical(map[string]any{"x": []any{1, 2.5}})
	require.Error(t, err)
}

func TestMarshalCanonicalNFCNormalization(t *testing.T) {
	composed := "caf\u00E9"
	decomposed := "cafe\u0301"

	result1, err := MarshalCanonical(composed)
	require.NoError(t, err)
	result2, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	assert.Equal(t, result1, result2, "NFC normalization should make these equal")

	obj1, err := MarshalCanonical(map[string]any{composed: 1})
	require.NoError(t, err)
	obj2, err := MarshalCanonical(map[string]any{decomposed: 1})
	require.NoError(t, err)
	assert.Equal(t, obj1, obj2, "NFC normalization should apply to keys")
}

func TestMarshalCanonicalU2028U2029NotEscaped(t *testing.T) {
	result, err := MarshalCanonical("a\u2028b\u2029c")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(result))
}

func TestMarshalCanonicalLiteralBackslashU2028(t *testing.T) {
	// A literal backslash followed by the text "u2028" must stay escaped.
	result, err := MarshalCanonical(`x\u2028`)
	require.NoError(t, err)
	assert.Equal(t, `"x\\u2028"`, string(result))
}

func TestMarshalCanonicalSequence(t *testing.T) {
	seq := &Sequence{
		Order:     OrderFixed,
		OrderPath: RootPath,
		Components: []SequenceEntry{
			LeafEntry("intro"),
			BlockEntry(&Sequence{
				Order:      OrderRandom,
				OrderPath:  "root-1",
				Components: []SequenceEntry{LeafEntry("b"), LeafEntry("a")},
			}),
			LeafEntry(EndStep),
		},
	}

	result, err := MarshalCanonical(seq)
	require.NoError(t, err)
	assert.Equal(t,
		`{"components":["intro",{"components":["b","a"],"order":"random","orderPath":"root-1"},"end"],"order":"fixed","orderPath":"root"}`,
		string(result))
}

func TestMarshalCanonicalOrderObject(t *testing.T) {
	k := 2
	obj := &OrderObject{
		Order:      OrderRandom,
		Components: []Component{Leaf("a"), Leaf("b"), Leaf("c")},
		NumSamples: &k,
		Interruptions: []Interruption{{
			Spacing:          SpacingEven,
			NumInterruptions: 1,
			Components:       []string{"break"},
		}},
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t,
		`{"components":["a","b","c"],"interruptions":[{"components":["break"],"numInterruptions":1,"spacing":"even"}],"numSamples":2,"order":"random"}`,
		string(result))
}

func TestMarshalCanonicalIdempotency(t *testing.T) {
	seq := &Sequence{Order: OrderFixed, OrderPath: RootPath, Components: []SequenceEntry{LeafEntry("x")}}
	first, err := MarshalCanonical(seq)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := MarshalCanonical(seq)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
