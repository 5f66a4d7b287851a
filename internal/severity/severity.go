// Package severity provides severity level constants and utilities
// for findings reported by the parser, merger, validator, and crossref packages.
//
// The severity levels are ordered from least to most severe:
// Info < Warning < Error < Critical
package severity

// Severity indicates the severity level of a finding.
type Severity int

const (
	// SeverityError indicates an inconsistency that makes the deployment invalid.
	SeverityError Severity = iota

	// SeverityWarning indicates a suspicious but survivable condition, such as
	// a tolerated reference cycle or an unused template binding.
	SeverityWarning

	// SeverityInfo indicates informational messages about processing choices.
	// These are non-actionable notices that may be useful for debugging.
	SeverityInfo

	// SeverityCritical indicates conditions that prevented a stage from running.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Fatal reports whether the severity should cause a non-zero exit status.
func (s Severity) Fatal() bool {
	return s == SeverityError || s == SeverityCritical
}
