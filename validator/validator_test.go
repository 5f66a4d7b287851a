package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zimbopro/svtools/internal/findings"
	"github.com/zimbopro/svtools/parser"
)

func parseDoc(t *testing.T, src string) *parser.Document {
	t.Helper()
	doc, err := parser.Parse(parser.WithBytes([]byte(src)), parser.WithSourceName("api.yaml"))
	require.NoError(t, err)
	return doc
}

func violationPaths(fs []findings.Finding) []string {
	var out []string
	for _, f := range fs {
		out = append(out, f.Path)
	}
	return out
}

func TestValidate_CompliantDocument(t *testing.T) {
	doc := parseDoc(t, `
openapi: 3.0.3
info:
  title: test
  version: "1.0"
paths:
  /v1/lambda/endpoint1:
    post:
      responses:
        "200":
          description: ok
`)
	assert.Empty(t, New().Validate(doc))
}

func TestValidate_MissingTopLevelObjects(t *testing.T) {
	doc := parseDoc(t, `{foo: bar}`)
	out := New().Validate(doc)
	paths := violationPaths(out)
	assert.Contains(t, paths, "openapi")
	assert.Contains(t, paths, "info")
	assert.Contains(t, paths, "paths")
	for _, f := range out {
		assert.Equal(t, findings.KindSchemaViolation, f.Kind)
		assert.True(t, f.Fatal())
		assert.Equal(t, "api.yaml", f.File)
	}
}

func TestValidate_SwaggerVersionAccepted(t *testing.T) {
	doc := parseDoc(t, `
swagger: "2.0"
info:
  title: test
  version: "1.0"
paths: {}
`)
	assert.NotContains(t, violationPaths(New().Validate(doc)), "openapi")
}

func TestValidate_InfoFields(t *testing.T) {
	doc := parseDoc(t, `
openapi: 3.0.3
info:
  title: ""
paths: {}
`)
	paths := violationPaths(New().Validate(doc))
	assert.Contains(t, paths, "info.title")
	assert.Contains(t, paths, "info.version")
}

func TestValidate_PathShapes(t *testing.T) {
	doc := parseDoc(t, `
openapi: 3.0.3
info:
  title: test
  version: "1.0"
paths:
  no-leading-slash:
    get:
      responses:
        "200":
          description: ok
  /missing-responses:
    get:
      summary: no responses here
  /not-an-object: 42
`)
	paths := violationPaths(New().Validate(doc))
	assert.Contains(t, paths, "paths.no-leading-slash")
	assert.Contains(t, paths, "paths./missing-responses.get")
	assert.Contains(t, paths, "paths./not-an-object")
}

func TestValidate_Deterministic(t *testing.T) {
	doc := parseDoc(t, `
openapi: 3.0.3
info:
  title: test
  version: "1.0"
paths:
  zebra:
    get: {}
  alpha:
    get: {}
`)
	first := New().Validate(doc)
	second := New().Validate(doc)
	assert.Equal(t, first, second)
	// Sorted path iteration: alpha is reported before zebra.
	paths := violationPaths(first)
	require.NotEmpty(t, paths)
	assert.Less(t, indexOf(paths, "paths.alpha"), indexOf(paths, "paths.zebra"))
}

func indexOf(s []string, v string) int {
	for i, item := range s {
		if item == v {
			return i
		}
	}
	return -1
}
