package compiler

import (
	"fmt"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/studyseq/internal/ir"
)

// CompileStudy parses a CUE value into a StudyConfig.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The value is the study configuration itself:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`sequence: { order: "fixed", components: ["intro"] }`)
//	cfg, err := CompileStudy(v)
//
// JSON and YAML sources reach this function too, see CompileSource.
func CompileStudy(v cue.Value) (*ir.StudyConfig, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	cfg := &ir.StudyConfig{}

	uiVal := v.LookupPath(cue.ParsePath("uiConfig"))
	if uiVal.Exists() {
		ui, err := parseUIConfig(uiVal)
		if err != nil {
			return nil, err
		}
		cfg.UIConfig = ui
	}

	seqVal := v.LookupPath(cue.ParsePath("sequence"))
	if !seqVal.Exists() {
		return nil, &CompileError{
			Field:   "sequence",
			Message: "sequence is required",
			Pos:     v.Pos(),
		}
	}
	root, err := parseOrderObject(seqVal, "sequence")
	if err != nil {
		return nil, err
	}
	cfg.Sequence = *root

	compVal := v.LookupPath(cue.ParsePath("components"))
	if compVal.Exists() {
		comps, err := parseComponentDefs(compVal)
		if err != nil {
			return nil, err
		}
		cfg.Components = comps
	}

	if len(cfg.Components) > 0 {
		if err := checkLeaves(seqVal, cfg.Components, "sequence"); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func parseUIConfig(v cue.Value) (ir.UIConfig, error) {
	var ui ir.UIConfig

	if idVal := v.LookupPath(cue.ParsePath("studyId")); idVal.Exists() {
		id, err := idVal.String()
		if err != nil {
			return ui, formatCUEError(err)
		}
		ui.StudyID = id
	}

	if nVal := v.LookupPath(cue.ParsePath("numSequences")); nVal.Exists() {
		n, err := extractInt(nVal, "uiConfig.numSequences")
		if err != nil {
			return ui, err
		}
		ui.NumSequences = &n
	}

	return ui, nil
}

// parseOrderObject extracts one block and its nested blocks. field is the
// dotted location used in error messages ("sequence.components[2]").
func parseOrderObject(v cue.Value, field string) (*ir.OrderObject, error) {
	if v.IncompleteKind() != cue.StructKind {
		return nil, &CompileError{
			Field:   field,
			Message: "must be an order object",
			Pos:     v.Pos(),
		}
	}

	obj := &ir.OrderObject{}

	orderVal := v.LookupPath(cue.ParsePath("order"))
	if !orderVal.Exists() {
		return nil, &CompileError{
			Field:   field + ".order",
			Message: "order is required",
			Pos:     v.Pos(),
		}
	}
	order, err := orderVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	obj.Order = ir.OrderKind(order)

	compsVal := v.LookupPath(cue.ParsePath("components"))
	if !compsVal.Exists() {
		return nil, &CompileError{
			Field:   field + ".components",
			Message: "components are required",
			Pos:     v.Pos(),
		}
	}
	iter, err := compsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	obj.Components = []ir.Component{}
	for i := 0; iter.Next(); i++ {
		elem := iter.Value()
		elemField := fmt.Sprintf("%s.components[%d]", field, i)

		switch elem.IncompleteKind() {
		case cue.StringKind:
			name, err := elem.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			obj.Components = append(obj.Components, ir.Leaf(name))
		case cue.StructKind:
			nested, err := parseOrderObject(elem, elemField)
			if err != nil {
				return nil, err
			}
			obj.Components = append(obj.Components, ir.Nested(nested))
		default:
			return nil, &CompileError{
				Field:   elemField,
				Message: fmt.Sprintf("component must be a string or an order object, got %v", elem.IncompleteKind()),
				Pos:     elem.Pos(),
			}
		}
	}

	if nVal := v.LookupPath(cue.ParsePath("numSamples")); nVal.Exists() {
		n, err := extractInt(nVal, field+".numSamples")
		if err != nil {
			return nil, err
		}
		obj.NumSamples = &n
	}

	if intVal := v.LookupPath(cue.ParsePath("interruptions")); intVal.Exists() {
		interruptions, err := parseInterruptions(intVal, field+".interruptions")
		if err != nil {
			return nil, err
		}
		obj.Interruptions = interruptions
	}

	return obj, nil
}

func parseInterruptions(v cue.Value, field string) ([]ir.Interruption, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []ir.Interruption
	for i := 0; iter.Next(); i++ {
		elem := iter.Value()
		elemField := fmt.Sprintf("%s[%d]", field, i)
		var in ir.Interruption

		spacing, err := elem.LookupPath(cue.ParsePath("spacing")).String()
		if err != nil {
			return nil, &CompileError{
				Field:   elemField + ".spacing",
				Message: "spacing is required and must be a string",
				Pos:     elem.Pos(),
			}
		}
		in.Spacing = ir.Spacing(spacing)

		nVal := elem.LookupPath(cue.ParsePath("numInterruptions"))
		if !nVal.Exists() {
			return nil, &CompileError{
				Field:   elemField + ".numInterruptions",
				Message: "numInterruptions is required",
				Pos:     elem.Pos(),
			}
		}
		n, err := extractInt(nVal, elemField+".numInterruptions")
		if err != nil {
			return nil, err
		}
		in.NumInterruptions = n

		compsVal := elem.LookupPath(cue.ParsePath("components"))
		if compsVal.Exists() {
			compIter, err := compsVal.List()
			if err != nil {
				return nil, formatCUEError(err)
			}
			for compIter.Next() {
				name, err := compIter.Value().String()
				if err != nil {
					return nil, &CompileError{
						Field:   elemField + ".components",
						Message: "interruption components must be strings",
						Pos:     compIter.Value().Pos(),
					}
				}
				in.Components = append(in.Components, name)
			}
		}

		out = append(out, in)
	}
	return out, nil
}

func parseComponentDefs(v cue.Value) (map[string]ir.ComponentDef, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	defs := make(map[string]ir.ComponentDef)
	for iter.Next() {
		var def ir.ComponentDef
		val := iter.Value()
		if t := val.LookupPath(cue.ParsePath("type")); t.Exists() {
			s, err := t.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			def.Type = s
		}
		if d := val.LookupPath(cue.ParsePath("description")); d.Exists() {
			s, err := d.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			def.Description = s
		}
		defs[iter.Label()] = def
	}
	return defs, nil
}

// checkLeaves fails on the first leaf or interruption step that does not
// name a declared component.
func checkLeaves(v cue.Value, known map[string]ir.ComponentDef, field string) error {
	compsVal := v.LookupPath(cue.ParsePath("components"))
	iter, err := compsVal.List()
	if err != nil {
		return formatCUEError(err)
	}
	for i := 0; iter.Next(); i++ {
		elem := iter.Value()
		elemField := fmt.Sprintf("%s.components[%d]", field, i)
		if elem.IncompleteKind() == cue.StructKind {
			if err := checkLeaves(elem, known, elemField); err != nil {
				return err
			}
			continue
		}
		name, _ := elem.String()
		if _, ok := known[name]; !ok {
			return unknownComponent(elemField, name, known, elem.Pos())
		}
	}

	intVal := v.LookupPath(cue.ParsePath("interruptions"))
	if !intVal.Exists() {
		return nil
	}
	intIter, err := intVal.List()
	if err != nil {
		return formatCUEError(err)
	}
	for i := 0; intIter.Next(); i++ {
		compIter, err := intIter.Value().LookupPath(cue.ParsePath("components")).List()
		if err != nil {
			continue
		}
		for compIter.Next() {
			name, _ := compIter.Value().String()
			if _, ok := known[name]; !ok {
				return unknownComponent(fmt.Sprintf("%s.interruptions[%d].components", field, i), name, known, compIter.Value().Pos())
			}
		}
	}
	return nil
}

func unknownComponent(field, name string, known map[string]ir.ComponentDef, pos token.Pos) error {
	names := make([]string, 0, len(known))
	for k := range known {
		names = append(names, k)
	}
	sort.Strings(names)
	return &CompileError{
		Field:   field,
		Message: fmt.Sprintf("unknown component %q (declared: %v)", name, names),
		Pos:     pos,
	}
}

// extractInt reads an integer field. Floats are rejected.
func extractInt(v cue.Value, field string) (int, error) {
	switch v.IncompleteKind() {
	case cue.IntKind:
	case cue.FloatKind, cue.NumberKind:
		return 0, &CompileError{
			Field:   field,
			Message: "must be an integer, got a float",
			Pos:     v.Pos(),
		}
	default:
		return 0, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("must be an integer, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
	n, err := v.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return int(n), nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
