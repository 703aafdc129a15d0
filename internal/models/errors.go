package models

import (
	"fmt"
	"strings"
)

// ValidationError reports required fields that are still blank on a step.
type ValidationError struct {
	Step    StepID
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %s: missing %s", e.Step, strings.Join(e.Missing, ", "))
}

// FieldError reports an input value the form cannot accept.
type FieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Reason)
}

type SubmissionError struct {
	Sink string
	Err  error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission to %s failed: %v", e.Sink, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

type AuthenticationError struct {
	Email string
	Err   error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed for %q: %v", e.Email, e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}
