// Package findings provides the finding and report types shared by all
// validation stages.
package findings

import (
	"fmt"
	"strings"

	"github.com/zimbopro/svtools/internal/severity"
)

// Kind identifies the category of a finding.
type Kind string

// Finding kinds produced by the validation stages.
const (
	// KindSchemaViolation is a structural OpenAPI compliance failure,
	// surfaced verbatim from the schema validator delegate.
	KindSchemaViolation Kind = "schema-violation"
	// KindCyclicRef is a reference cycle tolerated during resolution.
	KindCyclicRef Kind = "cyclic-ref"
	// KindDuplicateTag is the same tag declared by more than one document.
	KindDuplicateTag Kind = "duplicate-tag"
	// KindOrphanLambda is a lambda with no permission statement.
	KindOrphanLambda Kind = "orphan-lambda"
	// KindOrphanPermission is a permission entry naming an unknown lambda.
	KindOrphanPermission Kind = "orphan-permission"
	// KindPermissionPathMismatch is a permission source_arn whose path
	// fragment matches no path+method in the merged document.
	KindPermissionPathMismatch Kind = "permission-path-mismatch"
	// KindAmbiguousSourceARN is a source_arn with more than one plausible
	// HTTP-method marker.
	KindAmbiguousSourceARN Kind = "ambiguous-source-arn"
	// KindUnboundTemplateVariable is a template binding referencing a lambda
	// that Terraform does not define.
	KindUnboundTemplateVariable Kind = "unbound-template-variable"
	// KindUnboundIntegrationVariable is an integration uri placeholder with
	// no corresponding template binding.
	KindUnboundIntegrationVariable Kind = "unbound-integration-variable"
	// KindUnusedTemplateBinding is a template binding no integration uri
	// references.
	KindUnusedTemplateBinding Kind = "unused-template-binding"
	// KindUncoveredPath is a path+method in the merged document with no
	// covering permission statement.
	KindUncoveredPath Kind = "uncovered-path"
	// KindDuplicateHandler is two lambdas sharing one handler.
	KindDuplicateHandler Kind = "duplicate-handler"
	// KindMissingIntegration is an operation without the
	// x-amazon-apigateway-integration extension.
	KindMissingIntegration Kind = "missing-integration"
	// KindMissingIntegrationURI is an integration extension without a uri.
	KindMissingIntegrationURI Kind = "missing-integration-uri"
)

// Finding represents a single problem found during validation.
type Finding struct {
	// Kind categorizes the finding
	Kind Kind
	// Severity indicates the severity level of the finding
	Severity severity.Severity
	// Message is a human-readable description of the finding
	Message string
	// Path is the API path or JSON path the finding relates to (optional)
	Path string
	// File is the source file the finding relates to (optional)
	File string
	// Name is the logical name or variable name involved (optional)
	Name string
}

// String returns a formatted string representation of the finding.
// Uses different symbols based on severity level:
// - "✗" for Error or Critical severity
// - "⚠" for Warning severity
// - "ℹ" for Info severity
func (f Finding) String() string {
	var symbol string
	switch f.Severity {
	case severity.SeverityError, severity.SeverityCritical:
		symbol = "✗"
	case severity.SeverityWarning:
		symbol = "⚠"
	case severity.SeverityInfo:
		symbol = "ℹ"
	default:
		symbol = "?"
	}

	var loc []string
	if f.File != "" {
		loc = append(loc, f.File)
	}
	if f.Path != "" {
		loc = append(loc, f.Path)
	}
	if f.Name != "" {
		loc = append(loc, f.Name)
	}

	if len(loc) == 0 {
		return fmt.Sprintf("%s [%s] %s", symbol, f.Kind, f.Message)
	}
	return fmt.Sprintf("%s [%s] %s: %s", symbol, f.Kind, strings.Join(loc, " "), f.Message)
}

// Fatal reports whether this finding should cause a non-zero exit status.
func (f Finding) Fatal() bool {
	return f.Severity.Fatal()
}
