// Package parser loads OpenAPI documents (YAML or JSON) into a generic tree
// and resolves their $ref pointers in place.
//
// Resolution is depth-first with an ordered resolution path for cycle
// diagnostics: a reference whose target is already being expanded fails with
// a circular [sverrors.ReferenceError] carrying the full cycle chain, unless
// cycle tolerance is enabled, in which case the node is replaced with an
// opaque marker (see [CyclicRefMarker]) and a warning finding is recorded.
// Fully-resolved targets are memoized so diamond references are resolved
// once.
package parser

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v4"

	"github.com/zimbopro/svtools/sverrors"
)

// MaxFileSize is the maximum size (in bytes) allowed for document files.
// This prevents resource exhaustion from loading arbitrarily large files.
const MaxFileSize = 10 * 1024 * 1024 // 10MB

// Parse loads a single OpenAPI document using functional options.
//
// Example:
//
//	doc, err := parser.Parse(
//	    parser.WithFilePath("api.yaml"),
//	    parser.WithResolveRefs(true),
//	)
func Parse(opts ...Option) (*Document, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("parser: invalid options: %w", err)
	}

	var (
		data       []byte
		sourcePath string
		baseDir    string
	)
	switch {
	case cfg.filePath != nil:
		sourcePath = *cfg.filePath
		baseDir = filepath.Dir(sourcePath)
		data, err = os.ReadFile(sourcePath)
		if err != nil {
			return nil, &sverrors.ParseError{Path: sourcePath, Message: "failed to read file", Cause: err}
		}
		if int64(len(data)) > MaxFileSize {
			return nil, &sverrors.ParseError{
				Path:    sourcePath,
				Message: fmt.Sprintf("file exceeds maximum size limit (%d bytes): file is %d bytes", MaxFileSize, len(data)),
			}
		}
	default:
		data = cfg.bytes
		sourcePath = "bytes"
		baseDir = "."
	}
	if cfg.sourceName != nil {
		sourcePath = *cfg.sourceName
	}

	// The YAML parser handles both YAML and JSON input.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &sverrors.ParseError{Path: sourcePath, Message: "failed to parse document", Cause: err}
	}
	if raw == nil {
		return nil, &sverrors.ParseError{Path: sourcePath, Message: "document is empty"}
	}

	doc := &Document{Raw: raw, SourcePath: sourcePath}

	if cfg.resolveRefs {
		resolver := NewRefResolver(baseDir)
		resolver.TolerateCycles = cfg.tolerateCycles
		resolver.Logger = cfg.logger
		if err := resolver.ResolveAll(raw); err != nil {
			return nil, fmt.Errorf("parser: failed to resolve references in %s: %w", sourcePath, err)
		}
		doc.Warnings = append(doc.Warnings, resolver.Warnings()...)
	}

	cfg.logger.Debug("parsed document", "source", sourcePath, "paths", len(doc.Paths()))
	return doc, nil
}
