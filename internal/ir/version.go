package ir

// Version constants for the persisted data model and the generator.
const (
	// IRVersion is the persisted sequence schema version.
	IRVersion = "1"

	// GeneratorVersion is the studyseq generator version.
	GeneratorVersion = "0.1.0"
)
