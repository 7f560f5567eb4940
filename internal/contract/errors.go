package contract

import "errors"

// Sentinel errors returned by the pipeline. Callers match them with errors.Is.
var (
	// ErrNotFound means the input export does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPrecondition means an operation ran before its inputs were available.
	ErrPrecondition = errors.New("precondition failed")

	// ErrUnsupportedFormat means an export selector is not recognized.
	ErrUnsupportedFormat = errors.New("unsupported format")
)
