package ir

// Version constants for exported rule sets.
const (
	// SchemaVersion is the version tag written into JSON export envelopes.
	SchemaVersion = "1.0"

	// Generator identifies this tool in export metadata.
	Generator = "kazt"

	// EngineVersion is the kazt engine version.
	EngineVersion = "0.1.0"
)
