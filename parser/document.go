package parser

import (
	"sort"

	"github.com/zimbopro/svtools/internal/findings"
)

// IntegrationExtension is the vendor extension carrying the API-Gateway
// integration configuration on an operation.
const IntegrationExtension = "x-amazon-apigateway-integration"

// httpMethods are the HTTP method keys recognized inside a path item.
var httpMethods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// IsHTTPMethod reports whether key is a recognized HTTP method key.
func IsHTTPMethod(key string) bool {
	for _, m := range httpMethods {
		if key == m {
			return true
		}
	}
	return false
}

// Document is a loaded OpenAPI document. After resolution with cycle
// tolerance disabled, the Raw tree contains no $ref nodes.
type Document struct {
	// Raw is the decoded document tree
	Raw map[string]any
	// SourcePath is the file the document was loaded from
	SourcePath string
	// Warnings holds non-fatal findings recorded while loading and
	// resolving (tolerated reference cycles)
	Warnings []findings.Finding
}

// Info returns the info object, or nil if absent.
func (d *Document) Info() map[string]any {
	m, _ := d.Raw["info"].(map[string]any)
	return m
}

// Paths returns the paths object, or nil if absent.
func (d *Document) Paths() map[string]any {
	m, _ := d.Raw["paths"].(map[string]any)
	return m
}

// Schemas returns components.schemas, or nil if absent.
func (d *Document) Schemas() map[string]any {
	components, _ := d.Raw["components"].(map[string]any)
	if components == nil {
		return nil
	}
	m, _ := components["schemas"].(map[string]any)
	return m
}

// Tags returns the document's tag objects in declaration order.
func (d *Document) Tags() []map[string]any {
	raw, _ := d.Raw["tags"].([]any)
	var tags []map[string]any
	for _, t := range raw {
		if m, ok := t.(map[string]any); ok {
			tags = append(tags, m)
		}
	}
	return tags
}

// HasOperation reports whether the document defines the given path and
// HTTP method (method is matched case-insensitively via lower-casing by
// the caller; path items store methods lower-cased).
func (d *Document) HasOperation(path, method string) bool {
	item, _ := d.Paths()[path].(map[string]any)
	if item == nil {
		return false
	}
	_, ok := item[method].(map[string]any)
	return ok
}

// Operation is one path+method entry of a document.
type Operation struct {
	// Path is the API path string (e.g. "/v1/lambda/endpoint1")
	Path string
	// Method is the lower-cased HTTP method key
	Method string
	// Raw is the operation object
	Raw map[string]any
}

// Integration returns the x-amazon-apigateway-integration extension object.
func (o Operation) Integration() (map[string]any, bool) {
	m, ok := o.Raw[IntegrationExtension].(map[string]any)
	return m, ok
}

// IntegrationURI returns the integration extension's uri value.
func (o Operation) IntegrationURI() (string, bool) {
	ext, ok := o.Integration()
	if !ok {
		return "", false
	}
	uri, ok := ext["uri"].(string)
	return uri, ok
}

// Operations returns every path+method operation in the document, ordered
// by path then method for reproducible iteration.
func (d *Document) Operations() []Operation {
	paths := d.Paths()
	pathKeys := make([]string, 0, len(paths))
	for p := range paths {
		pathKeys = append(pathKeys, p)
	}
	sort.Strings(pathKeys)

	var ops []Operation
	for _, p := range pathKeys {
		item, ok := paths[p].(map[string]any)
		if !ok {
			continue
		}
		for _, method := range httpMethods {
			if op, ok := item[method].(map[string]any); ok {
				ops = append(ops, Operation{Path: p, Method: method, Raw: op})
			}
		}
	}
	return ops
}
