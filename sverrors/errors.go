// Package sverrors provides structured error types for svtools.
//
// These error types enable programmatic error handling via errors.Is() and
// errors.As(), allowing callers to distinguish between different categories
// of errors and implement appropriate recovery strategies.
//
// # Error Categories
//
//   - ParseError: YAML/JSON/HCL parsing failures and structural issues
//   - ReferenceError: $ref resolution failures and circular references
//   - CollisionError: key collisions while merging OpenAPI documents
//   - ExtractError: missing or malformed blocks in the Terraform files
//
// # Usage with errors.Is
//
//	doc, err := parser.Parse(parser.WithFilePath("api.yaml"), parser.WithResolveRefs(true))
//	if err != nil {
//	    var refErr *sverrors.ReferenceError
//	    if errors.As(err, &refErr) && refErr.IsCircular {
//	        // Handle circular reference specifically
//	    }
//	}
package sverrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
// These allow quick checks without type assertions.
var (
	// ErrParse indicates a parsing failure occurred.
	ErrParse = errors.New("parse error")

	// ErrReference indicates a reference resolution failure.
	ErrReference = errors.New("reference error")

	// ErrCircularReference indicates a circular $ref was detected.
	ErrCircularReference = errors.New("circular reference")

	// ErrCollision indicates a key collision between merged documents.
	ErrCollision = errors.New("key collision")

	// ErrMissingBlock indicates a required Terraform block was absent.
	ErrMissingBlock = errors.New("missing block")

	// ErrMalformedBlock indicates a Terraform block lacked a required attribute.
	ErrMalformedBlock = errors.New("malformed block")
)

// ParseError represents a failure to parse an input document.
// This covers YAML/JSON deserialization errors as well as HCL diagnostics.
type ParseError struct {
	// Path is the file path or source identifier
	Path string
	// Line is the line number where the error occurred (0 if unknown)
	Line int
	// Column is the column number where the error occurred (0 if unknown)
	Column int
	// Message describes the parsing failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
		if e.Column > 0 {
			msg += fmt.Sprintf(", column %d", e.Column)
		}
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ReferenceError represents a failure to resolve a $ref.
// This includes missing targets and circular reference chains.
type ReferenceError struct {
	// Ref is the reference string that failed to resolve
	Ref string
	// RefType indicates the reference type: "local" or "file"
	RefType string
	// IsCircular is true if this error is due to a circular reference
	IsCircular bool
	// Cycle is the ordered chain of references forming the cycle,
	// ending with the reference that closed it. Empty for non-circular errors.
	Cycle []string
	// Message provides additional context about the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ReferenceError) Error() string {
	msg := "reference error"
	if e.IsCircular {
		msg = "circular reference"
	}
	if e.Ref != "" {
		msg += ": " + e.Ref
	}
	if len(e.Cycle) > 0 {
		msg += " (cycle: " + strings.Join(e.Cycle, " -> ") + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ReferenceError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
// Matches ErrReference, and also ErrCircularReference when IsCircular is set.
func (e *ReferenceError) Is(target error) bool {
	if target == ErrReference {
		return true
	}
	return target == ErrCircularReference && e.IsCircular
}

// CollisionError represents a key collision while merging documents.
// Path collisions are always fatal; schema collisions are fatal only when
// the colliding bodies are structurally different.
type CollisionError struct {
	// Section is the document section where the collision occurred
	// (e.g. "paths", "components.schemas")
	Section string
	// Key is the colliding key
	Key string
	// FirstFile is the source of the first definition
	FirstFile string
	// SecondFile is the source of the colliding definition
	SecondFile string
}

// Error returns a human-readable error message.
func (e *CollisionError) Error() string {
	return fmt.Sprintf("key collision in %s: %q defined in both %s and %s",
		e.Section, e.Key, e.FirstFile, e.SecondFile)
}

// Is reports whether target matches this error type.
func (e *CollisionError) Is(target error) bool {
	return target == ErrCollision
}

// ExtractKind classifies extraction failures.
type ExtractKind int

const (
	// MissingBlock indicates a required file or block was absent.
	MissingBlock ExtractKind = iota
	// MalformedBlock indicates a block was present but lacked a required attribute.
	MalformedBlock
)

// String returns the string representation of the extract kind.
func (k ExtractKind) String() string {
	switch k {
	case MissingBlock:
		return "missing block"
	case MalformedBlock:
		return "malformed block"
	default:
		return "unknown"
	}
}

// ExtractError represents a failure to extract the Terraform model.
type ExtractError struct {
	// Kind classifies the failure
	Kind ExtractKind
	// File is the Terraform file involved
	File string
	// Block identifies the block or attribute at fault
	// (e.g. "locals.lambdas", "lambdas_permissions.lambda-1.source_arn")
	Block string
	// Message describes the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ExtractError) Error() string {
	msg := e.Kind.String()
	if e.File != "" {
		msg += " in " + e.File
	}
	if e.Block != "" {
		msg += ": " + e.Block
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ExtractError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type based on Kind.
func (e *ExtractError) Is(target error) bool {
	switch target {
	case ErrMissingBlock:
		return e.Kind == MissingBlock
	case ErrMalformedBlock:
		return e.Kind == MalformedBlock
	default:
		return false
	}
}
