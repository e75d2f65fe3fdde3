package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes a leaf as a JSON string and a block as a JSON object.
func (c Component) MarshalJSON() ([]byte, error) {
	if c.Block != nil {
		return json.Marshal(c.Block)
	}
	return json.Marshal(c.Leaf)
}

// UnmarshalJSON accepts a JSON string (leaf) or a JSON object (block).
func (c *Component) UnmarshalJSON(data []byte) error {
	switch firstByte(data) {
	case '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*c = Leaf(name)
		return nil
	case '{':
		var block OrderObject
		if err := json.Unmarshal(data, &block); err != nil {
			return err
		}
		*c = Nested(&block)
		return nil
	default:
		return fmt.Errorf("component must be a string or an order object, got %s", truncate(data))
	}
}

// MarshalJSON encodes a leaf as a JSON string and a block as a JSON object.
func (e SequenceEntry) MarshalJSON() ([]byte, error) {
	if e.Block != nil {
		return json.Marshal(e.Block)
	}
	return json.Marshal(e.Leaf)
}

// UnmarshalJSON accepts a JSON string (leaf) or a JSON object (block).
func (e *SequenceEntry) UnmarshalJSON(data []byte) error {
	switch firstByte(data) {
	case '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*e = LeafEntry(name)
		return nil
	case '{':
		var block Sequence
		if err := json.Unmarshal(data, &block); err != nil {
			return err
		}
		*e = BlockEntry(&block)
		return nil
	default:
		return fmt.Errorf("sequence entry must be a string or a sequence, got %s", truncate(data))
	}
}

func firstByte(data []byte) byte {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func truncate(data []byte) string {
	const max = 32
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}
