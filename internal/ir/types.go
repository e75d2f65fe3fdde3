package ir

// OrderKind selects how a block's components are emitted for a participant.
type OrderKind string

const (
	OrderFixed       OrderKind = "fixed"
	OrderRandom      OrderKind = "random"
	OrderLatinSquare OrderKind = "latinSquare"
)

// ValidOrderKinds defines allowed block orders.
var ValidOrderKinds = map[OrderKind]bool{
	OrderFixed:       true,
	OrderRandom:      true,
	OrderLatinSquare: true,
}

// Spacing selects how interruption firings are placed inside a block.
type Spacing string

const (
	SpacingEven   Spacing = "even"
	SpacingRandom Spacing = "random"
)

// ValidSpacings defines allowed interruption spacings.
var ValidSpacings = map[Spacing]bool{
	SpacingEven:   true,
	SpacingRandom: true,
}

const (
	// EndStep is appended exactly once, as the last step of every sequence.
	EndStep = "end"

	// RootPath is the structural path of the top-level block.
	RootPath = "root"

	// PathSeparator joins path segments ("root-0-2").
	PathSeparator = "-"

	// DefaultNumSequences is the population size used when uiConfig omits numSequences.
	DefaultNumSequences = 1000
)

// StudyConfig is the part of a study configuration the generator consumes.
type StudyConfig struct {
	UIConfig   UIConfig                `json:"uiConfig"`
	Sequence   OrderObject             `json:"sequence"`
	Components map[string]ComponentDef `json:"components,omitempty"`
}

// UIConfig carries study-wide runtime settings.
type UIConfig struct {
	StudyID      string `json:"studyId,omitempty"`
	NumSequences *int   `json:"numSequences,omitempty"`
}

// SequenceCount returns numSequences, or DefaultNumSequences when unset.
func (u UIConfig) SequenceCount() int {
	if u.NumSequences == nil {
		return DefaultNumSequences
	}
	return *u.NumSequences
}

// ComponentDef describes a leaf component. Only its presence matters here;
// rendering fields belong to the runtime.
type ComponentDef struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// OrderObject describes one ordering block of the study template.
type OrderObject struct {
	Order         OrderKind      `json:"order"`
	Components    []Component    `json:"components"`
	NumSamples    *int           `json:"numSamples,omitempty"`
	Interruptions []Interruption `json:"interruptions,omitempty"`
}

// Component is either a leaf step name or a nested block. Exactly one field is set.
type Component struct {
	Leaf  string
	Block *OrderObject
}

// Leaf returns a leaf component.
func Leaf(name string) Component {
	return Component{Leaf: name}
}

// Nested returns a block component.
func Nested(block *OrderObject) Component {
	return Component{Block: block}
}

// IsLeaf reports whether c names a step rather than a nested block.
func (c Component) IsLeaf() bool {
	return c.Block == nil
}

// Interruption is a repeatable insertion (breaks, attention checks) attached to a block.
type Interruption struct {
	Spacing          Spacing  `json:"spacing"`
	NumInterruptions int      `json:"numInterruptions"`
	Components       []string `json:"components"`
}

// Sequence is one participant's resolved ordering. It mirrors the template's
// nesting; OrderPath is the block's structural path in the template and is
// the same for every participant.
type Sequence struct {
	Order      OrderKind       `json:"order"`
	OrderPath  string          `json:"orderPath"`
	Components []SequenceEntry `json:"components"`
}

// SequenceEntry is either a resolved leaf step or a resolved nested block.
type SequenceEntry struct {
	Leaf  string
	Block *Sequence
}

// LeafEntry returns a leaf sequence entry.
func LeafEntry(name string) SequenceEntry {
	return SequenceEntry{Leaf: name}
}

// BlockEntry returns a nested sequence entry.
func BlockEntry(block *Sequence) SequenceEntry {
	return SequenceEntry{Block: block}
}

// IsLeaf reports whether e is a step rather than a nested block.
func (e SequenceEntry) IsLeaf() bool {
	return e.Block == nil
}
