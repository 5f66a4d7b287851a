// Package validator provides schema-level compliance checking for merged
// OpenAPI documents.
//
// The cross-reference pipeline consumes validation through the
// [SchemaValidator] interface and treats it as opaque; violations are
// surfaced verbatim in the final report. The [Structural] implementation
// covers the structural subset the pipeline depends on, and can be replaced
// by a full OpenAPI validator without touching the pipeline.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zimbopro/svtools/internal/findings"
	"github.com/zimbopro/svtools/internal/severity"
	"github.com/zimbopro/svtools/parser"
)

// SchemaValidator checks a document for schema compliance.
type SchemaValidator interface {
	// Validate returns one finding per violation. An empty result means the
	// document passed.
	Validate(doc *parser.Document) []findings.Finding
}

// Structural validates the structural requirements of an OpenAPI document:
// version declaration, info metadata, path shapes, and operation responses.
type Structural struct{}

// New creates a Structural validator.
func New() *Structural {
	return &Structural{}
}

// Validate implements SchemaValidator.
func (v *Structural) Validate(doc *parser.Document) []findings.Finding {
	var out []findings.Finding
	violation := func(path, msg string) {
		out = append(out, findings.Finding{
			Kind:     findings.KindSchemaViolation,
			Severity: severity.SeverityError,
			File:     doc.SourcePath,
			Path:     path,
			Message:  msg,
		})
	}

	if _, ok := doc.Raw["openapi"].(string); !ok {
		if _, swagger := doc.Raw["swagger"].(string); !swagger {
			violation("openapi", "missing openapi version declaration")
		}
	}

	info := doc.Info()
	switch {
	case info == nil:
		violation("info", "missing info object")
	default:
		if title, _ := info["title"].(string); title == "" {
			violation("info.title", "missing info.title")
		}
		if version, _ := info["version"].(string); version == "" {
			violation("info.version", "missing info.version")
		}
	}

	paths := doc.Paths()
	if paths == nil {
		violation("paths", "missing paths object")
		return out
	}

	for _, p := range sortedKeys(paths) {
		jsonPath := "paths." + p
		if !strings.HasPrefix(p, "/") {
			violation(jsonPath, "path must begin with '/'")
		}
		item, ok := paths[p].(map[string]any)
		if !ok {
			violation(jsonPath, fmt.Sprintf("path item must be an object (got %T)", paths[p]))
			continue
		}
		for _, method := range sortedKeys(item) {
			if !parser.IsHTTPMethod(method) {
				continue
			}
			op, ok := item[method].(map[string]any)
			if !ok {
				violation(jsonPath+"."+method, fmt.Sprintf("operation must be an object (got %T)", item[method]))
				continue
			}
			if _, ok := op["responses"].(map[string]any); !ok {
				violation(jsonPath+"."+method, "operation has no responses")
			}
		}
	}
	return out
}

// sortedKeys returns map keys in sorted order so repeated runs render
// byte-identical reports.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
