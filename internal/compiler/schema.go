package compiler

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// studySchema is the structural shape of a JSON or YAML study file. Value
// constraints (order kinds, numSamples ranges) are left to Validate, which
// reports them with E-codes.
const studySchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["sequence"],
  "properties": {
    "uiConfig": {
      "type": "object",
      "properties": {
        "studyId": {"type": "string"},
        "numSequences": {"type": "integer"}
      }
    },
    "sequence": {"$ref": "#/$defs/orderObject"},
    "components": {
      "type": "object",
      "additionalProperties": {"type": "object"}
    }
  },
  "$defs": {
    "orderObject": {
      "type": "object",
      "required": ["order", "components"],
      "properties": {
        "order": {"type": "string"},
        "components": {
          "type": "array",
          "items": {
            "oneOf": [
              {"type": "string"},
              {"$ref": "#/$defs/orderObject"}
            ]
          }
        },
        "numSamples": {"type": "integer"},
        "interruptions": {
          "type": "array",
          "items": {"$ref": "#/$defs/interruption"}
        }
      }
    },
    "interruption": {
      "type": "object",
      "required": ["spacing", "numInterruptions", "components"],
      "properties": {
        "spacing": {"type": "string"},
        "numInterruptions": {"type": "integer"},
        "components": {"type": "array", "items": {"type": "string"}}
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = jsonschema.CompileString("study.schema.json", studySchema)
	})
	return compiledSchema, schemaErr
}

// CheckSchema validates a decoded JSON or YAML document against the study
// schema. The document is normalized through encoding/json first, so values
// decoded by yaml.v3 are accepted.
//
// A violation is returned as a *CompileError whose Field is the JSON pointer
// of the offending value.
func CheckSchema(doc any) error {
	schema, err := loadSchema()
	if err != nil {
		return fmt.Errorf("compile study schema: %w", err)
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode study document: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode study document: %w", err)
	}

	if err := schema.Validate(decoded); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			leaf := deepestCause(ve)
			field := leaf.InstanceLocation
			if field == "" {
				field = "/"
			}
			return &CompileError{Field: field, Message: leaf.Message}
		}
		return fmt.Errorf("study schema: %w", err)
	}
	return nil
}

// deepestCause follows the first cause chain to the most specific failure.
func deepestCause(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}
