package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/studyseq/internal/compiler"
	"github.com/roach88/studyseq/internal/ir"
	"github.com/roach88/studyseq/internal/store"
)

// LoadError represents an error that occurred during study loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadStudy compiles a study from a CUE, JSON or YAML file, or from a
// directory holding one CUE package.
func LoadStudy(path string) (*ir.StudyConfig, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("study not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing study: %v", err)}
	}
	if info.IsDir() {
		return loadStudyDir(path)
	}

	if _, err := compiler.FormatOf(path); err != nil {
		return nil, &LoadError{Code: ErrCodeUnsupported, Message: err.Error()}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading study: %v", err)}
	}
	cfg, err := compiler.CompileSource(path, data)
	if err != nil {
		return nil, convertCompileError(err, path)
	}
	return cfg, nil
}

// loadStudyDir loads every CUE file of a directory as one instance.
func loadStudyDir(dir string) (*ir.StudyConfig, error) {
	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	cfg, err := compiler.CompileStudy(value)
	if err != nil {
		return nil, convertCompileError(err, dir)
	}
	return cfg, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field, compileErr.Message),
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// openPopulation opens the database and resolves a population ID. An empty
// id selects the most recently generated population.
func openPopulation(ctx context.Context, dbPath, id string) (*store.Store, store.Population, error) {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, store.Population{}, NewExitError(ExitCommandError, fmt.Sprintf("%s: database not found: %s", ErrCodeNotFound, dbPath))
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, store.Population{}, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	var pop store.Population
	if id == "" {
		pop, err = st.LatestPopulation(ctx, "")
	} else {
		pop, err = st.ReadPopulation(ctx, id)
	}
	if err != nil {
		st.Close()
		return nil, store.Population{}, WrapExitError(ExitCommandError, fmt.Sprintf("%s: population not found", ErrCodeNotFound), err)
	}
	return st, pop, nil
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path, population or sequence not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeUnsupported = "E008" // Unsupported study file extension
	ErrCodeParseFailed = "E009" // JSON or YAML syntax error
	ErrCodeSchema      = "E010" // Study does not match the study schema

	// Generation and lookup errors
	ErrCodeGeneration = "E301" // Generator rejected the configuration
	ErrCodeBadPath    = "E302" // Malformed or out-of-range block path
	ErrCodeNoStep     = "E303" // Step not found in the requested block
	ErrCodeBadIndex   = "E304" // Sequence index out of range
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field, message string) string {
	if strings.HasPrefix(message, "unknown component") {
		return compiler.ErrUnknownComponent
	}
	switch {
	case field == "json" || field == "yaml":
		return ErrCodeParseFailed
	case field == "cue":
		return ErrCodeBuildFailed
	case strings.HasPrefix(field, "/"):
		return ErrCodeSchema
	case strings.HasSuffix(field, ".order"):
		return compiler.ErrInvalidOrder
	case strings.HasSuffix(field, ".numSamples"):
		return compiler.ErrInvalidNumSamples
	case strings.HasSuffix(field, ".numInterruptions"):
		return compiler.ErrInvalidNumInterruptions
	case strings.HasSuffix(field, ".spacing"):
		return compiler.ErrInvalidSpacing
	case field == "uiConfig.numSequences":
		return compiler.ErrInvalidNumSequences
	default:
		return ErrCodeGeneric
	}
}
