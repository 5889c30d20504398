package nrfu

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a verification failure.
type Kind string

const (
	KindMissing    Kind = "missing"
	KindUnexpected Kind = "unexpected"
	KindMismatch   Kind = "mismatch"
)

// Sentinel errors for failures outside the taxonomy. They are never the
// result of comparing a device's state against an expectation.
var (
	ErrInvalidTestCase        = errors.New("invalid test case")
	ErrBadSnapshot            = errors.New("bad snapshot")
	ErrUnsupportedExpectation = errors.New("unsupported expectation")
)

// MissingError reports that the object selected by a test case's params
// does not exist in the snapshot.
type MissingError struct {
	Message string
	Extra   string
	Missing any
}

func (e *MissingError) Error() string {
	return joinLines(e.Message, fmt.Sprintf("MISSING data: %v", e.Missing), e.Extra)
}

// UnexpectedError reports objects present in the snapshot that the test
// case does not allow.
type UnexpectedError struct {
	Message    string
	Extra      string
	Unexpected any
}

func (e *UnexpectedError) Error() string {
	return joinLines(e.Message, fmt.Sprintf("UNEXPECTED data: %v", e.Unexpected), e.Extra)
}

// MismatchError reports that the selected object exists but its observed
// condition differs from the expected one.
type MismatchError struct {
	Message  string
	Extra    string
	Expected any
	Actual   any
}

func (e *MismatchError) Error() string {
	return joinLines(e.Message,
		fmt.Sprintf("MISMATCH:EXPECTED data: %s", orNone(e.Expected)),
		fmt.Sprintf("MISMATCH:ACTUAL data: %s", orNone(e.Actual)),
		e.Extra)
}

// KindOf reports the taxonomy kind of err. The second result is false for
// nil and for errors outside the taxonomy.
func KindOf(err error) (Kind, bool) {
	var (
		missing    *MissingError
		unexpected *UnexpectedError
		mismatch   *MismatchError
	)
	switch {
	case err == nil:
		return "", false
	case errors.As(err, &missing):
		return KindMissing, true
	case errors.As(err, &unexpected):
		return KindUnexpected, true
	case errors.As(err, &mismatch):
		return KindMismatch, true
	}
	return "", false
}

// Fields returns the structured context of a taxonomy error, keyed the way
// reports name them. It returns nil for other errors.
func Fields(err error) map[string]any {
	var (
		missing    *MissingError
		unexpected *UnexpectedError
		mismatch   *MismatchError
	)
	switch {
	case errors.As(err, &missing):
		return withExtra(map[string]any{"missing": missing.Missing}, missing.Extra)
	case errors.As(err, &unexpected):
		return withExtra(map[string]any{"unexpected": unexpected.Unexpected}, unexpected.Extra)
	case errors.As(err, &mismatch):
		return withExtra(map[string]any{
			"expected": mismatch.Expected,
			"actual":   mismatch.Actual,
		}, mismatch.Extra)
	}
	return nil
}

// Message returns the free-text message of a taxonomy error, or err.Error()
// for anything else.
func Message(err error) string {
	var (
		missing    *MissingError
		unexpected *UnexpectedError
		mismatch   *MismatchError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &missing):
		return missing.Message
	case errors.As(err, &unexpected):
		return unexpected.Message
	case errors.As(err, &mismatch):
		return mismatch.Message
	}
	return err.Error()
}

func withExtra(m map[string]any, extra string) map[string]any {
	if extra != "" {
		m["extra"] = extra
	}
	return m
}

func orNone(v any) string {
	if v == nil {
		return "None"
	}
	s := fmt.Sprintf("%v", v)
	if s == "" || s == "[]" {
		return "None"
	}
	return s
}

// joinLines mirrors the report layout: message, context line(s), extra.
// Empty leading message and trailing extra are dropped.
func joinLines(lines ...string) string {
	out := make([]string, 0, len(lines))
	for i, l := range lines {
		if l == "" && (i == 0 || i == len(lines)-1) {
			continue
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}
