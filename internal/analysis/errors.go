package analysis

import "errors"

// ErrEmptyInput is returned when there is no text to analyze
var ErrEmptyInput = errors.New("Input text is empty")

// StructuringError is returned when the model output cannot be turned into
// structured resume data.
type StructuringError struct {
	// Validation is set when the output parsed but did not match the schema
	Validation bool
	Cause      error
}

func (e *StructuringError) Error() string {
	if e.Validation {
		return "AI failed to structure data correctly: Validation Error"
	}
	return "AI failed to structure data correctly"
}

func (e *StructuringError) Unwrap() error {
	return e.Cause
}
