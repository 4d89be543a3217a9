package gemini

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a model call produced no image.
type FailureKind string

const (
	// FailureTransport: the call itself could not complete.
	FailureTransport FailureKind = "transport"
	// FailureRefusal: the model answered with explanatory text instead of
	// image data, e.g. a policy refusal. Detail carries the model's text.
	FailureRefusal FailureKind = "refusal"
	// FailureMalformed: the call completed with neither image nor text in
	// the expected shape.
	FailureMalformed FailureKind = "malformed"
)

// Failure is the structured error for any non-success model outcome.
type Failure struct {
	Kind   FailureKind
	Detail string
	Err    error
}

func (f *Failure) Error() string {
	switch {
	case f.Detail != "" && f.Err != nil:
		return fmt.Sprintf("gemini %s failure: %s: %v", f.Kind, f.Detail, f.Err)
	case f.Detail != "":
		return fmt.Sprintf("gemini %s failure: %s", f.Kind, f.Detail)
	case f.Err != nil:
		return fmt.Sprintf("gemini %s failure: %v", f.Kind, f.Err)
	}
	return fmt.Sprintf("gemini %s failure", f.Kind)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// KindOf returns the failure kind of err, or "" when err is not a Failure.
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}
