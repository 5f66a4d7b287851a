// Package merger combines multiple resolved OpenAPI documents into a single
// self-contained document.
//
// Merge rules:
//   - paths: a path string appearing in more than one input document is a
//     fatal collision (deployments assume exactly one definition per path)
//   - components: same-name collisions are tolerated when the two bodies are
//     structurally identical (common when documents shared a $ref source);
//     structurally different bodies under one name are a fatal collision
//   - info: taken from the first document, later documents' info is ignored
//   - tags: concatenated; a tag with the same name and description declared
//     twice produces a duplicate-tag finding
package merger

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/zimbopro/svtools/internal/findings"
	"github.com/zimbopro/svtools/internal/severity"
	"github.com/zimbopro/svtools/parser"
	"github.com/zimbopro/svtools/sverrors"
)

// Result contains the merged document and the findings accumulated while
// merging.
type Result struct {
	// Document is the merged, self-contained document
	Document *parser.Document
	// Findings holds non-collision problems found while merging
	// (duplicate tags) plus warnings carried over from the inputs
	Findings []findings.Finding
}

// Merge combines the given resolved documents in order. Key collisions
// return a *sverrors.CollisionError; inputs must already have their
// references resolved.
func Merge(docs []*parser.Document) (*Result, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("merger: at least 1 document is required, got 0")
	}

	result := &Result{}
	for _, doc := range docs {
		result.Findings = append(result.Findings, doc.Warnings...)
	}

	merged := &parser.Document{
		Raw:        make(map[string]any, len(docs[0].Raw)),
		SourcePath: docs[0].SourcePath,
	}
	for k, v := range docs[0].Raw {
		merged.Raw[k] = v
	}

	// pathOrigin and componentOrigin track which input defined each key,
	// for actionable collision errors.
	pathOrigin := make(map[string]string)
	for p := range docs[0].Paths() {
		pathOrigin[p] = docs[0].SourcePath
	}
	componentOrigin := make(map[string]string)
	for section, entries := range componentSections(docs[0].Raw) {
		for name := range entries {
			componentOrigin[section+"."+name] = docs[0].SourcePath
		}
	}

	for _, doc := range docs[1:] {
		if err := mergePaths(merged, doc, pathOrigin); err != nil {
			return nil, err
		}
		if err := mergeComponents(merged, doc, componentOrigin); err != nil {
			return nil, err
		}
		mergeTags(merged, doc)
	}

	result.Findings = append(result.Findings, duplicateTagFindings(docs)...)
	result.Document = merged
	return result, nil
}

// mergePaths merges doc's paths into merged, failing on any collision.
func mergePaths(merged, doc *parser.Document, origin map[string]string) error {
	source := doc.Paths()
	if len(source) == 0 {
		return nil
	}
	target, ok := merged.Raw["paths"].(map[string]any)
	if !ok {
		target = make(map[string]any, len(source))
		merged.Raw["paths"] = target
	}
	// Sorted iteration keeps the reported collision deterministic when a
	// document collides on several paths at once.
	for _, p := range sortedKeys(source) {
		if first, exists := origin[p]; exists {
			return &sverrors.CollisionError{
				Section:    "paths",
				Key:        p,
				FirstFile:  first,
				SecondFile: doc.SourcePath,
			}
		}
		target[p] = source[p]
		origin[p] = doc.SourcePath
	}
	return nil
}

// mergeComponents merges doc's components sections into merged. Structurally
// identical bodies under one name are tolerated; different bodies collide.
func mergeComponents(merged, doc *parser.Document, origin map[string]string) error {
	source := componentSections(doc.Raw)
	if len(source) == 0 {
		return nil
	}
	targetComponents, ok := merged.Raw["components"].(map[string]any)
	if !ok {
		targetComponents = make(map[string]any)
		merged.Raw["components"] = targetComponents
	}

	sections := make([]string, 0, len(source))
	for s := range source {
		sections = append(sections, s)
	}
	sort.Strings(sections)

	for _, section := range sections {
		entries := source[section]
		target, ok := targetComponents[section].(map[string]any)
		if !ok {
			target = make(map[string]any, len(entries))
			targetComponents[section] = target
		}
		for _, name := range sortedKeys(entries) {
			key := section + "." + name
			existing, exists := target[name]
			if !exists {
				target[name] = entries[name]
				origin[key] = doc.SourcePath
				continue
			}
			if reflect.DeepEqual(existing, entries[name]) {
				continue
			}
			return &sverrors.CollisionError{
				Section:    "components." + section,
				Key:        name,
				FirstFile:  origin[key],
				SecondFile: doc.SourcePath,
			}
		}
	}
	return nil
}

// mergeTags appends doc's tags to merged, skipping exact duplicates.
func mergeTags(merged, doc *parser.Document) {
	source, _ := doc.Raw["tags"].([]any)
	if len(source) == 0 {
		return
	}
	target, _ := merged.Raw["tags"].([]any)
	for _, tag := range source {
		duplicate := false
		for _, existing := range target {
			if reflect.DeepEqual(existing, tag) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			target = append(target, tag)
		}
	}
	merged.Raw["tags"] = target
}

// duplicateTagFindings reports tags sharing name and description across the
// inputs, in input order.
func duplicateTagFindings(docs []*parser.Document) []findings.Finding {
	type taggedSource struct {
		name        string
		description string
		source      string
	}
	var seen []taggedSource
	var out []findings.Finding
	for _, doc := range docs {
		for _, tag := range doc.Tags() {
			name, _ := tag["name"].(string)
			description, _ := tag["description"].(string)
			if name == "" {
				continue
			}
			for _, prev := range seen {
				if prev.name == name && prev.description == description {
					out = append(out, findings.Finding{
						Kind:     findings.KindDuplicateTag,
						Severity: severity.SeverityError,
						Name:     name,
						File:     doc.SourcePath,
						Message:  fmt.Sprintf("tag %q already declared in %s", name, prev.source),
					})
					break
				}
			}
			seen = append(seen, taggedSource{name: name, description: description, source: doc.SourcePath})
		}
	}
	return out
}

// componentSections returns components.<section> maps by section name.
func componentSections(raw map[string]any) map[string]map[string]any {
	components, _ := raw["components"].(map[string]any)
	if components == nil {
		return nil
	}
	out := make(map[string]map[string]any, len(components))
	for section, v := range components {
		if entries, ok := v.(map[string]any); ok {
			out[section] = entries
		}
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
