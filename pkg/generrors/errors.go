// Package generrors provides the error taxonomy of the IR pipeline.
//
// Callers distinguish categories with errors.Is against the sentinels or
// errors.As against the concrete types:
//
//	ir, err := generator.BuildIR(doc)
//	var refErr *generrors.ResolutionError
//	if errors.As(err, &refErr) {
//	    log.Printf("dangling reference %s at %s", refErr.Ref, refErr.Pointer)
//	}
//
// ResolutionError, OperationModelError and IdentifierCollisionError are fatal:
// the pipeline returns no IR when it sees one. UnsupportedFeatureError is
// recoverable and is collected in the IR's warning list instead.
package generrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrResolution indicates a schema reference that points to nothing.
	ErrResolution = errors.New("resolution error")

	// ErrOperationModel indicates a malformed path template or parameter declaration.
	ErrOperationModel = errors.New("operation model error")

	// ErrUnsupportedFeature indicates a schema construct with no IR representation.
	ErrUnsupportedFeature = errors.New("unsupported feature")

	// ErrIdentifierCollision indicates two identifiers of one kind rendering the same value.
	ErrIdentifierCollision = errors.New("identifier collision")
)

// ResolutionError reports a schema reference that could not be resolved.
type ResolutionError struct {
	// Ref is the reference string as written in the document
	Ref string
	// Pointer is the JSON pointer of the schema holding the reference
	Pointer string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ResolutionError) Error() string {
	msg := "resolution error"
	if e.Ref != "" {
		msg += ": unresolvable reference " + e.Ref
	}
	if e.Pointer != "" {
		msg += " at " + e.Pointer
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrResolution
}

// OperationModelError reports an operation whose path template and parameter
// declarations disagree.
type OperationModelError struct {
	Method  string
	Path    string
	Message string
}

// Error returns a human-readable error message.
func (e *OperationModelError) Error() string {
	msg := "operation model error"
	if e.Method != "" || e.Path != "" {
		msg += fmt.Sprintf(" in %s %s", e.Method, e.Path)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *OperationModelError) Is(target error) bool {
	return target == ErrOperationModel
}

// UnsupportedFeatureError records a schema construct that was degraded to an
// unknown node. It is never returned as a fatal error.
type UnsupportedFeatureError struct {
	// Pointer is the JSON pointer of the offending schema
	Pointer string
	// Feature names the construct, e.g. "not" or "type:file"
	Feature string
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *UnsupportedFeatureError) Error() string {
	msg := "unsupported feature"
	if e.Feature != "" {
		msg += " " + e.Feature
	}
	if e.Pointer != "" {
		msg += " at " + e.Pointer
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *UnsupportedFeatureError) Is(target error) bool {
	return target == ErrUnsupportedFeature
}

// IdentifierCollisionError reports an identifier the tie-break could not make
// unique. Seeing one is a defect in the naming rules.
type IdentifierCollisionError struct {
	Kind    string
	Value   string
	Sources []string
}

// Error returns a human-readable error message.
func (e *IdentifierCollisionError) Error() string {
	msg := fmt.Sprintf("identifier collision: %s %q", e.Kind, e.Value)
	if len(e.Sources) > 0 {
		msg += " claimed by " + strings.Join(e.Sources, ", ")
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *IdentifierCollisionError) Is(target error) bool {
	return target == ErrIdentifierCollision
}

// IsFatal reports whether err aborts IR construction.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrUnsupportedFeature)
}
