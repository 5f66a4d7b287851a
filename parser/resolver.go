package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/zimbopro/svtools/internal/findings"
	"github.com/zimbopro/svtools/internal/severity"
	"github.com/zimbopro/svtools/sverrors"
)

const (
	// MaxRefDepth is the maximum depth allowed for nested $ref resolution
	// This prevents stack overflow from deeply nested (but non-circular) references
	MaxRefDepth = 100

	// MaxCachedDocuments is the maximum number of external documents to cache
	// This prevents memory exhaustion from documents with many external references
	MaxCachedDocuments = 100

	// CyclicRefMarker is the key left in place of a reference whose expansion
	// was abandoned because of a tolerated cycle. The value is the original
	// $ref string. Downstream consumers can walk the tree without tripping
	// over a live $ref node.
	CyclicRefMarker = "x-sv-cyclic-ref"
)

// RefResolver resolves $ref pointers in an OpenAPI document tree in place.
//
// Concurrency: a RefResolver owns its resolution path exclusively and is not
// safe for concurrent use. Resolve each document with its own resolver;
// separate documents may be resolved in parallel.
type RefResolver struct {
	// TolerateCycles downgrades detected cycles from fatal errors to warning
	// findings, leaving a CyclicRefMarker in place of the cyclic node.
	TolerateCycles bool
	// Logger receives resolution diagnostics. Defaults to a no-op logger.
	Logger Logger

	// baseDir is the base directory for resolving relative file paths
	baseDir string
	// path is the ordered sequence of refs currently being expanded;
	// it provides the full cycle chain for diagnostics
	path []string
	// resolving tracks refs on the path for O(1) cycle checks
	resolving map[string]bool
	// resolved memoizes fully-resolved targets so diamond references
	// (one target referenced by two siblings) are walked once
	resolved map[string]any
	// documents caches loaded external documents
	documents map[string]map[string]any
	// warnings accumulates tolerated-cycle findings
	warnings []findings.Finding
}

// NewRefResolver creates a new reference resolver for local and file-based
// refs. External file references are resolved relative to baseDir.
func NewRefResolver(baseDir string) *RefResolver {
	return &RefResolver{
		Logger:    nopLogger{},
		baseDir:   baseDir,
		resolving: make(map[string]bool),
		resolved:  make(map[string]any),
		documents: make(map[string]map[string]any),
	}
}

// Warnings returns the findings recorded for tolerated cycles, in the order
// they were detected.
func (r *RefResolver) Warnings() []findings.Finding {
	return r.warnings
}

// ResolveAll walks the entire document and substitutes every $ref node with
// its resolved value. Returns a *sverrors.ReferenceError on a cycle (unless
// TolerateCycles is set) or an unresolvable reference.
func (r *RefResolver) ResolveAll(doc map[string]any) error {
	return r.resolveRecursive(doc, doc, 0)
}

// resolveRecursive depth-first walks the tree rooted at current.
func (r *RefResolver) resolveRecursive(root map[string]any, current any, depth int) error {
	if depth > MaxRefDepth {
		return &sverrors.ReferenceError{
			Message: fmt.Sprintf("structure exceeds maximum nesting depth %d", MaxRefDepth),
		}
	}
	switch v := current.(type) {
	case map[string]any:
		if ref, ok := v["$ref"].(string); ok {
			return r.substituteRef(root, v, ref, depth)
		}
		for _, val := range v {
			if err := r.resolveRecursive(root, val, depth+1); err != nil {
				return err
			}
		}
	case []any:
		for _, item := range v {
			if err := r.resolveRecursive(root, item, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// substituteRef expands one $ref node in place.
func (r *RefResolver) substituteRef(root, node map[string]any, ref string, depth int) error {
	// A ref to the document root, or to anything already on the resolution
	// path, closes a cycle.
	if ref == "#" || ref == "#/" || r.resolving[ref] {
		cycle := r.cycleChain(ref)
		if r.TolerateCycles {
			r.markCycle(node, ref, cycle)
			return nil
		}
		return &sverrors.ReferenceError{
			Ref:        ref,
			RefType:    refType(ref),
			IsCircular: true,
			Cycle:      cycle,
		}
	}

	if cached, ok := r.resolved[ref]; ok {
		replaceNode(node, deepCopyValue(cached).(map[string]any))
		return nil
	}

	r.resolving[ref] = true
	r.path = append(r.path, ref)
	defer func() {
		delete(r.resolving, ref)
		r.path = r.path[:len(r.path)-1]
	}()

	target, err := r.lookup(root, ref)
	if err != nil {
		return err
	}
	targetMap, ok := target.(map[string]any)
	if !ok {
		return &sverrors.ReferenceError{
			Ref:     ref,
			RefType: refType(ref),
			Message: fmt.Sprintf("resolved target is not an object (got %T)", target),
		}
	}

	// Substitute a deep copy, then keep resolving inside the substituted
	// content while this ref stays on the resolution path so that
	// self-references are detected.
	replaceNode(node, deepCopyValue(targetMap).(map[string]any))
	if err := r.resolveRecursive(root, node, depth+1); err != nil {
		return err
	}

	r.resolved[ref] = deepCopyValue(node)
	r.Logger.Debug("resolved reference", "ref", ref, "depth", depth)
	return nil
}

// cycleChain returns the full resolution path plus the reference that
// closed the cycle, so diagnostics name every participant.
func (r *RefResolver) cycleChain(ref string) []string {
	chain := make([]string, 0, len(r.path)+1)
	chain = append(chain, r.path...)
	return append(chain, ref)
}

// markCycle replaces node with an opaque marker and records a warning finding.
func (r *RefResolver) markCycle(node map[string]any, ref string, cycle []string) {
	for k := range node {
		delete(node, k)
	}
	node[CyclicRefMarker] = ref
	f := findings.Finding{
		Kind:     findings.KindCyclicRef,
		Severity: severity.SeverityWarning,
		Name:     ref,
		Message:  "reference cycle tolerated: " + strings.Join(cycle, " -> "),
	}
	r.warnings = append(r.warnings, f)
	r.Logger.Warn("tolerating reference cycle", "ref", ref, "cycle", strings.Join(cycle, " -> "))
}

// lookup loads the target of a ref: same-document lookup for local refs,
// external-file load for cross-file refs.
func (r *RefResolver) lookup(root map[string]any, ref string) (any, error) {
	if strings.HasPrefix(ref, "#") {
		return r.resolveLocal(root, ref)
	}
	return r.resolveExternal(ref)
}

// resolveLocal resolves a JSON-pointer-like reference within doc.
// Local refs are in the format: #/path/to/component
func (r *RefResolver) resolveLocal(doc map[string]any, ref string) (any, error) {
	pointer := strings.TrimPrefix(strings.TrimPrefix(ref, "#"), "/")
	if pointer == "" {
		return doc, nil
	}
	parts := strings.Split(pointer, "/")

	current := any(doc)
	for i, part := range parts {
		part = unescapeJSONPointer(part)
		switch v := current.(type) {
		case map[string]any:
			next, ok := v[part]
			if !ok {
				return nil, &sverrors.ReferenceError{
					Ref:     ref,
					RefType: "local",
					Message: fmt.Sprintf("reference not found: #/%s (missing key: %s)", strings.Join(parts[:i+1], "/"), part),
				}
			}
			current = next
		case []any:
			// Array indexing per RFC 6901 (JSON Pointer)
			index, err := strconv.Atoi(part)
			if err != nil || index < 0 || index >= len(v) {
				return nil, &sverrors.ReferenceError{
					Ref:     ref,
					RefType: "local",
					Message: fmt.Sprintf("invalid array index %q at #/%s", part, strings.Join(parts[:i+1], "/")),
				}
			}
			current = v[index]
		default:
			return nil, &sverrors.ReferenceError{
				Ref:     ref,
				RefType: "local",
				Message: fmt.Sprintf("cannot traverse into type %T at #/%s", v, strings.Join(parts[:i], "/")),
			}
		}
	}
	return current, nil
}

// resolveExternal resolves an external file reference.
// External refs are in the format: ./file.yaml#/path/to/component
func (r *RefResolver) resolveExternal(ref string) (any, error) {
	parts := strings.SplitN(ref, "#", 2)
	filePath := parts[0]
	internalPath := ""
	if len(parts) > 1 {
		internalPath = parts[1]
	}

	if !filepath.IsAbs(filePath) {
		filePath = filepath.Clean(filepath.Join(r.baseDir, filePath))
	}

	// Reject references that escape the base directory.
	absBase, err := filepath.Abs(r.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file path: %w", err)
	}
	relPath, err := filepath.Rel(absBase, absPath)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return nil, &sverrors.ReferenceError{
			Ref:     ref,
			RefType: "file",
			Message: "reference escapes base directory",
		}
	}

	doc, ok := r.documents[filePath]
	if !ok {
		if len(r.documents) >= MaxCachedDocuments {
			return nil, &sverrors.ReferenceError{
				Ref:     ref,
				RefType: "file",
				Message: fmt.Sprintf("too many external references (limit %d)", MaxCachedDocuments),
			}
		}
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, &sverrors.ReferenceError{
				Ref:     ref,
				RefType: "file",
				Message: "failed to read external file",
				Cause:   err,
			}
		}
		if int64(len(data)) > MaxFileSize {
			return nil, &sverrors.ReferenceError{
				Ref:     ref,
				RefType: "file",
				Message: fmt.Sprintf("external file exceeds maximum size limit (%d bytes): file is %d bytes", MaxFileSize, len(data)),
			}
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, &sverrors.ReferenceError{
				Ref:     ref,
				RefType: "file",
				Message: "failed to parse external file",
				Cause:   err,
			}
		}
		r.documents[filePath] = doc
		r.Logger.Debug("loaded external document", "file", filePath)
	}

	if internalPath == "" {
		return doc, nil
	}
	return r.resolveLocal(doc, "#"+internalPath)
}

// refType classifies a reference string for diagnostics.
func refType(ref string) string {
	if strings.HasPrefix(ref, "#") {
		return "local"
	}
	return "file"
}

// replaceNode replaces the contents of node with content, dropping the $ref key.
func replaceNode(node, content map[string]any) {
	for k := range node {
		delete(node, k)
	}
	for k, v := range content {
		node[k] = v
	}
}

// unescapeJSONPointer unescapes JSON Pointer tokens.
// Per RFC 6901, ~1 represents / and ~0 represents ~
func unescapeJSONPointer(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	token = strings.ReplaceAll(token, "~0", "~")
	return token
}

// deepCopyValue deep-copies a decoded YAML/JSON value. Substituting copies
// rather than shared subtrees keeps sibling references independent and
// prevents circular Go pointer chains.
func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = deepCopyValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}
