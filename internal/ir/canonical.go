package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON for hashing.
// This is the only serialization used for content-addressed identity.
//
// Differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Strings are NFC normalized
//  4. No floats, no null
func MarshalCanonical(v any) ([]byte, error) {
	return marshalCanonical(v)
}

func marshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		return marshalCanonicalString(val)
	case OrderKind:
		return marshalCanonicalString(string(val))
	case Spacing:
		return marshalCanonicalString(string(val))
	case int:
		return []byte(fmt.Sprintf("%d", val)), nil
	case int64:
		return []byte(fmt.Sprintf("%d", val)), nil
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case []string:
		arr := make([]any, len(val))
		for i, s := range val {
			arr[i] = s
		}
		return marshalCanonicalArray(arr)
	case []any:
		return marshalCanonicalArray(val)
	case map[string]any:
		return marshalCanonicalObject(val)
	case *Sequence:
		return marshalCanonicalObject(val.canonicalValue())
	case *OrderObject:
		return marshalCanonicalObject(val.canonicalValue())
	case *StudyConfig:
		return marshalCanonicalObject(val.canonicalValue())
	case float64, float32:
		return nil, fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

func (s *Sequence) canonicalValue() map[string]any {
	components := make([]any, len(s.Components))
	for i, e := range s.Components {
		if e.Block != nil {
			components[i] = e.Block.canonicalValue()
		} else {
			components[i] = e.Leaf
		}
	}
	return map[string]any{
		"order":      string(s.Order),
		"orderPath":  s.OrderPath,
		"components": components,
	}
}

func (o *OrderObject) canonicalValue() map[string]any {
	components := make([]any, len(o.Components))
	for i, c := range o.Components {
		if c.Block != nil {
			components[i] = c.Block.canonicalValue()
		} else {
			components[i] = c.Leaf
		}
	}
	out := map[string]any{
		"order":      string(o.Order),
		"components": components,
	}
	if o.NumSamples != nil {
		out["numSamples"] = *o.NumSamples
	}
	if len(o.Interruptions) > 0 {
		interruptions := make([]any, len(o.Interruptions))
		for i, in := range o.Interruptions {
			interruptions[i] = map[string]any{
				"spacing":          string(in.Spacing),
				"numInterruptions": in.NumInterruptions,
				"components":       append([]string(nil), in.Components...),
			}
		}
		out["interruptions"] = interruptions
	}
	return out
}

func (c *StudyConfig) canonicalValue() map[string]any {
	ui := map[string]any{}
	if c.UIConfig.StudyID != "" {
		ui["studyId"] = c.UIConfig.StudyID
	}
	if c.UIConfig.NumSequences != nil {
		ui["numSequences"] = *c.UIConfig.NumSequences
	}
	components := make(map[string]any, len(c.Components))
	for name, def := range c.Components {
		entry := map[string]any{}
		if def.Type != "" {
			entry["type"] = def.Type
		}
		if def.Description != "" {
			entry["description"] = def.Description
		}
		components[name] = entry
	}
	return map[string]any{
		"uiConfig":   ui,
		"sequence":   c.Sequence.canonicalValue(),
		"components": components,
	}
}

// marshalCanonicalString produces a canonical JSON string with NFC normalization.
// RFC 8785: no HTML escaping, U+2028/U+2029 stay literal, only control
// characters, backslash and quote are escaped.
func marshalCanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	result := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
	return unescapeLineSeparators(result), nil
}

// unescapeLineSeparators turns the encoder's \u2028 and \u2029 escapes back into
// literal characters, leaving an escaped backslash followed by "u2028" intact.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' {
			out = append(out, data[i])
			continue
		}
		if i+5 < len(data) && string(data[i+1:i+5]) == "u202" && (data[i+5] == '8' || data[i+5] == '9') {
			if data[i+5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		// Copy the escape pair verbatim so "\\" never starts a new escape.
		out = append(out, data[i])
		if i+1 < len(data) {
			out = append(out, data[i+1])
			i++
		}
	}
	return out
}

func marshalCanonicalArray(arr []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := marshalCanonical(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}

	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalCanonicalObject(obj map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, k := range sortedKeysUTF16(obj) {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyBytes, err := marshalCanonicalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := marshalCanonical(obj[k])
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// sortedKeysUTF16 orders keys by UTF-16 code units as RFC 8785 requires.
func sortedKeysUTF16(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return compareUTF16(keys[i], keys[j]) < 0
	})
	return keys
}

func compareUTF16(a, b string) int {
	ua := utf16.Encode([]rune(norm.NFC.String(a)))
	ub := utf16.Encode([]rune(norm.NFC.String(b)))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			if ua[i] < ub[i] {
				return -1
			}
			return 1
		}
	}
	return len(ua) - len(ub)
}
