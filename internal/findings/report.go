package findings

import "strings"

// Report is an ordered sequence of findings accumulated by a validation run.
// A Report is built incrementally and must be treated as immutable once
// returned to a caller; re-running a stage on identical inputs produces a
// byte-identical rendering.
type Report struct {
	findings []Finding
}

// Add appends findings to the report.
func (r *Report) Add(fs ...Finding) {
	r.findings = append(r.findings, fs...)
}

// Merge appends all findings from another report, preserving order.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.findings = append(r.findings, other.findings...)
}

// All returns the findings in insertion order.
func (r *Report) All() []Finding {
	return r.findings
}

// Fatal returns only the findings with fatal severity.
func (r *Report) Fatal() []Finding {
	var out []Finding
	for _, f := range r.findings {
		if f.Fatal() {
			out = append(out, f)
		}
	}
	return out
}

// HasFatal reports whether any finding has fatal severity.
func (r *Report) HasFatal() bool {
	for _, f := range r.findings {
		if f.Fatal() {
			return true
		}
	}
	return false
}

// Len returns the number of findings.
func (r *Report) Len() int {
	return len(r.findings)
}

// Render formats the report as human-readable text, one finding per line.
// Returns the empty string for an empty report.
func (r *Report) Render() string {
	if len(r.findings) == 0 {
		return ""
	}
	var b strings.Builder
	for _, f := range r.findings {
		b.WriteString(f.String())
		b.WriteByte('\n')
	}
	return b.String()
}
