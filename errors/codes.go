package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Pipeline document errors
const (
	// ErrCodeDocumentSyntax indicates a malformed pipeline document.
	ErrCodeDocumentSyntax ErrorCode = "DOCUMENT_SYNTAX"
	// ErrCodeDriverResolution indicates no driver could be resolved for a stage.
	ErrCodeDriverResolution ErrorCode = "DRIVER_RESOLUTION"
	// ErrCodeTag indicates a duplicate tag or a reference to an undefined tag.
	ErrCodeTag ErrorCode = "TAG"
	// ErrCodeCardinality indicates a wrong number of types or inputs for a stage.
	ErrCodeCardinality ErrorCode = "CARDINALITY"
)

// Graph errors
const (
	// ErrCodeStructural indicates a graph that violates role or acyclicity rules.
	ErrCodeStructural ErrorCode = "STRUCTURAL"
	// ErrCodeInvalidOption indicates a stage option that cannot be used.
	ErrCodeInvalidOption ErrorCode = "INVALID_OPTION"
	// ErrCodePluginLoad indicates a driver plugin could not be loaded.
	ErrCodePluginLoad ErrorCode = "PLUGIN_LOAD"
)

// Execution errors
const (
	// ErrCodeStageFailed indicates a stage failed while running.
	ErrCodeStageFailed ErrorCode = "STAGE_FAILED"
	// ErrCodeStorage indicates a reader or writer failed to access storage.
	ErrCodeStorage ErrorCode = "STORAGE"
)

var parseCodes = map[ErrorCode]bool{
	ErrCodeDocumentSyntax:   true,
	ErrCodeDriverResolution: true,
	ErrCodeTag:              true,
	ErrCodeCardinality:      true,
	ErrCodeStructural:       true,
	ErrCodeInvalidOption:    true,
	ErrCodePluginLoad:       true,
}

// IsParseCode returns true if the code is raised before any stage executes.
func IsParseCode(code ErrorCode) bool {
	return parseCodes[code]
}
