package compiler

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"

	"github.com/roach88/studyseq/internal/ir"
)

// Format identifies the encoding of a study source.
type Format string

const (
	FormatCUE  Format = "cue"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf derives the format from a file extension.
func FormatOf(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".cue":
		return FormatCUE, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported study file extension %q (want .cue, .json, .yaml or .yml)", filepath.Ext(filename))
	}
}

// CompileSource compiles a study file of any supported format.
//
// JSON and YAML documents are checked against the study schema before
// compilation; all three formats then go through CompileStudy, so error
// positions point into the original file.
func CompileSource(filename string, data []byte) (*ir.StudyConfig, error) {
	format, err := FormatOf(filename)
	if err != nil {
		return nil, err
	}

	ctx := cuecontext.New()
	var v cue.Value

	switch format {
	case FormatJSON:
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, &CompileError{Field: "json", Message: err.Error()}
		}
		if err := CheckSchema(doc); err != nil {
			return nil, err
		}
		v = ctx.CompileBytes(data, cue.Filename(filename))

	case FormatYAML:
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, &CompileError{Field: "yaml", Message: err.Error()}
		}
		if err := CheckSchema(doc); err != nil {
			return nil, err
		}
		f, err := cueyaml.Extract(filename, data)
		if err != nil {
			return nil, formatCUEError(err)
		}
		v = ctx.BuildFile(f)

	default:
		v = ctx.CompileBytes(data, cue.Filename(filename))
	}

	return CompileStudy(v)
}
