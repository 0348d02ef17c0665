// Package server provides the HTTP REST API for the resume builder.
package server

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrResumeNotFound indicates the resume does not exist
type ErrResumeNotFound struct {
	ID string
}

func (e *ErrResumeNotFound) Error() string {
	return fmt.Sprintf("Resume with ID %s not found", e.ID)
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	Subject string
}

func (e *ErrUserNotFound) Error() string {
	return "User not found"
}

// ErrForbidden indicates the caller does not own the resume
type ErrForbidden struct{}

func (e *ErrForbidden) Error() string {
	return "You do not have permission to access this resume"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrEmptyResume indicates an operation needs content the resume does not have
type ErrEmptyResume struct {
	Message string
}

func (e *ErrEmptyResume) Error() string {
	return e.Message
}

// ErrAnalysisFailed indicates the model output could not be structured
type ErrAnalysisFailed struct {
	Cause error
}

func (e *ErrAnalysisFailed) Error() string {
	if e.Cause == nil {
		return "AI failed to structure data correctly"
	}
	return e.Cause.Error()
}

func (e *ErrAnalysisFailed) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		resumeNotFound *ErrResumeNotFound
		userNotFound   *ErrUserNotFound
		forbidden      *ErrForbidden
		validation     *ErrValidation
		emptyResume    *ErrEmptyResume
		analysisFailed *ErrAnalysisFailed
	)
	switch {
	case errors.As(err, &resumeNotFound), errors.As(err, &userNotFound):
		return http.StatusNotFound
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &validation), errors.As(err, &emptyResume), errors.As(err, &analysisFailed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage returns the text safe to show for err. Internal failures are
// not echoed back.
func clientMessage(err error) string {
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}
