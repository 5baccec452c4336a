package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// Kind tags a pipeline failure so the transport can map it without
// inspecting messages.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindExtraction    Kind = "extraction"
	KindConfiguration Kind = "configuration"
)

// Error is the single error type returned by every modality.
type Error struct {
	Kind    Kind
	Field   string   // offending request field, validation only
	Allowed []string // permitted values, when the field is an enum
	Msg     string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Msg)
	if len(e.Allowed) > 0 {
		fmt.Fprintf(&b, ". Allowed: [%s]", strings.Join(e.Allowed, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports a malformed or out-of-range request field.
func Validation(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// InvalidChoice reports a value outside an enumerated set and lists the set.
func InvalidChoice(field, value string, allowed []string) *Error {
	return &Error{
		Kind:    KindValidation,
		Field:   field,
		Allowed: append([]string(nil), allowed...),
		Msg:     fmt.Sprintf("Invalid %s: %s", field, value),
	}
}

// NotFound reports a reference to an asset the datasets do not contain.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Extraction wraps a decode or scoring failure, keeping the cause visible.
func Extraction(stage string, err error) *Error {
	return &Error{Kind: KindExtraction, Msg: stage, Err: err}
}

// Configuration wraps a load-time failure. These are fatal.
func Configuration(what string, err error) *Error {
	return &Error{Kind: KindConfiguration, Msg: what, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or
// KindExtraction for untagged errors.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindExtraction
}
