package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_OptionValidation(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{name: "no input source", opts: nil},
		{name: "two input sources", opts: []Option{WithFilePath("a.yaml"), WithBytes([]byte("{}"))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.opts...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "input source")
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse(WithBytes([]byte(":\n  - not: [valid")))
	require.Error(t, err)
}

func TestParse_JSONInput(t *testing.T) {
	doc, err := Parse(
		WithBytes([]byte(`{"openapi": "3.0.3", "info": {"title": "t", "version": "1"}, "paths": {}}`)),
		WithSourceName("inline.json"),
	)
	require.NoError(t, err)
	assert.Equal(t, "inline.json", doc.SourcePath)
	assert.Equal(t, "t", doc.Info()["title"])
}

const operationsDoc = `
openapi: 3.0.3
info:
  title: test
  version: "1.0"
paths:
  /v1/lambda/endpoint2:
    get:
      x-amazon-apigateway-integration:
        type: aws_proxy
        uri: "arn:aws:apigateway:eu-west-1:lambda:path/2015-03-31/functions/${lambda_2_arn}/invocations"
      responses:
        "200":
          description: ok
  /v1/lambda/endpoint1:
    post:
      responses:
        "200":
          description: ok
`

func TestDocument_Operations(t *testing.T) {
	doc, err := Parse(WithBytes([]byte(operationsDoc)))
	require.NoError(t, err)

	ops := doc.Operations()
	require.Len(t, ops, 2)
	// Ordered by path for reproducible reports.
	assert.Equal(t, "/v1/lambda/endpoint1", ops[0].Path)
	assert.Equal(t, "post", ops[0].Method)
	assert.Equal(t, "/v1/lambda/endpoint2", ops[1].Path)
	assert.Equal(t, "get", ops[1].Method)

	_, ok := ops[0].Integration()
	assert.False(t, ok)

	uri, ok := ops[1].IntegrationURI()
	require.True(t, ok)
	assert.Contains(t, uri, "${lambda_2_arn}")

	assert.True(t, doc.HasOperation("/v1/lambda/endpoint1", "post"))
	assert.False(t, doc.HasOperation("/v1/lambda/endpoint1", "get"))
}
