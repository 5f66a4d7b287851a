package merger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zimbopro/svtools/internal/findings"
	"github.com/zimbopro/svtools/parser"
	"github.com/zimbopro/svtools/sverrors"
)

func parseDoc(t *testing.T, name, src string) *parser.Document {
	t.Helper()
	doc, err := parser.Parse(parser.WithBytes([]byte(src)), parser.WithSourceName(name))
	require.NoError(t, err)
	return doc
}

func TestMerge_RequiresInput(t *testing.T) {
	_, err := Merge(nil)
	require.Error(t, err)
}

func TestMerge_DisjointPaths(t *testing.T) {
	a := parseDoc(t, "a.yaml", `
openapi: 3.0.3
info:
  title: first
  version: "1.0"
paths:
  /v1/lambda/endpoint1:
    post:
      responses:
        "200":
          description: ok
`)
	b := parseDoc(t, "b.yaml", `
openapi: 3.0.3
info:
  title: second
  version: "2.0"
paths:
  /v1/lambda/endpoint2:
    get:
      responses:
        "200":
          description: ok
`)

	result, err := Merge([]*parser.Document{a, b})
	require.NoError(t, err)

	merged := result.Document
	assert.Len(t, merged.Paths(), 2)
	assert.True(t, merged.HasOperation("/v1/lambda/endpoint1", "post"))
	assert.True(t, merged.HasOperation("/v1/lambda/endpoint2", "get"))
	// info comes from the first document.
	assert.Equal(t, "first", merged.Info()["title"])
	assert.Empty(t, result.Findings)
}

func TestMerge_PathCollision(t *testing.T) {
	a := parseDoc(t, "a.yaml", `
paths:
  /v1/lambda/endpoint1:
    post: {responses: {"200": {description: ok}}}
`)
	b := parseDoc(t, "b.yaml", `
paths:
  /v1/lambda/endpoint1:
    get: {responses: {"200": {description: ok}}}
`)

	_, err := Merge([]*parser.Document{a, b})
	require.Error(t, err)
	assert.True(t, errors.Is(err, sverrors.ErrCollision))

	var collision *sverrors.CollisionError
	require.True(t, errors.As(err, &collision))
	assert.Equal(t, "paths", collision.Section)
	assert.Equal(t, "/v1/lambda/endpoint1", collision.Key)
	assert.Equal(t, "a.yaml", collision.FirstFile)
	assert.Equal(t, "b.yaml", collision.SecondFile)
}

func TestMerge_IdenticalSchemaTolerated(t *testing.T) {
	shared := `
components:
  schemas:
    Pet:
      type: object
      properties:
        name:
          type: string
`
	a := parseDoc(t, "a.yaml", shared)
	b := parseDoc(t, "b.yaml", shared)

	result, err := Merge([]*parser.Document{a, b})
	require.NoError(t, err)
	assert.Len(t, result.Document.Schemas(), 1)
}

func TestMerge_DifferentSchemaCollides(t *testing.T) {
	a := parseDoc(t, "a.yaml", `
components:
  schemas:
    Pet:
      type: object
`)
	b := parseDoc(t, "b.yaml", `
components:
  schemas:
    Pet:
      type: string
`)

	_, err := Merge([]*parser.Document{a, b})
	require.Error(t, err)

	var collision *sverrors.CollisionError
	require.True(t, errors.As(err, &collision))
	assert.Equal(t, "components.schemas", collision.Section)
	assert.Equal(t, "Pet", collision.Key)
}

func TestMerge_DuplicateTags(t *testing.T) {
	a := parseDoc(t, "a.yaml", `
tags:
  - name: pets
    description: Pet operations
`)
	b := parseDoc(t, "b.yaml", `
tags:
  - name: pets
    description: Pet operations
  - name: owners
    description: Owner operations
`)

	result, err := Merge([]*parser.Document{a, b})
	require.NoError(t, err)

	// Exact duplicates collapse in the merged tag list.
	assert.Len(t, result.Document.Tags(), 2)

	require.Len(t, result.Findings, 1)
	f := result.Findings[0]
	assert.Equal(t, findings.KindDuplicateTag, f.Kind)
	assert.Equal(t, "pets", f.Name)
	assert.Equal(t, "b.yaml", f.File)
	assert.True(t, f.Fatal())
}

func TestMerge_CarriesInputWarnings(t *testing.T) {
	a := parseDoc(t, "a.yaml", `{paths: {}}`)
	a.Warnings = []findings.Finding{{Kind: findings.KindCyclicRef, Name: "#/components/schemas/A"}}
	b := parseDoc(t, "b.yaml", `{}`)

	result, err := Merge([]*parser.Document{a, b})
	require.NoError(t, err)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, findings.KindCyclicRef, result.Findings[0].Kind)
}
