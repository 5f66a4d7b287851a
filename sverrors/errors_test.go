package sverrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseError(t *testing.T) {
	cause := errors.New("unexpected token")
	err := &ParseError{Path: "lambda.tf", Line: 4, Column: 7, Message: "invalid block", Cause: cause}

	assert.True(t, errors.Is(err, ErrParse))
	assert.False(t, errors.Is(err, ErrReference))
	assert.True(t, errors.Is(err, cause))

	msg := err.Error()
	assert.Contains(t, msg, "lambda.tf")
	assert.Contains(t, msg, "line 4")
	assert.Contains(t, msg, "column 7")
	assert.Contains(t, msg, "invalid block")
	assert.Contains(t, msg, "unexpected token")
}

func TestReferenceError(t *testing.T) {
	plain := &ReferenceError{Ref: "#/components/schemas/Missing", RefType: "local", Message: "not found"}
	assert.True(t, errors.Is(plain, ErrReference))
	assert.False(t, errors.Is(plain, ErrCircularReference))
	assert.Contains(t, plain.Error(), "#/components/schemas/Missing")

	circular := &ReferenceError{
		Ref:        "#/components/schemas/A",
		IsCircular: true,
		Cycle:      []string{"#/components/schemas/A", "#/components/schemas/B", "#/components/schemas/A"},
	}
	assert.True(t, errors.Is(circular, ErrReference))
	assert.True(t, errors.Is(circular, ErrCircularReference))
	assert.Contains(t, circular.Error(), "circular reference")
	assert.Contains(t, circular.Error(), "#/components/schemas/A -> #/components/schemas/B -> #/components/schemas/A")
}

func TestReferenceError_WrappedDetection(t *testing.T) {
	inner := &ReferenceError{Ref: "#/x", IsCircular: true}
	wrapped := fmt.Errorf("resolving api.yaml: %w", inner)

	assert.True(t, errors.Is(wrapped, ErrCircularReference))
	var refErr *ReferenceError
	require.True(t, errors.As(wrapped, &refErr))
	assert.Equal(t, "#/x", refErr.Ref)
}

func TestCollisionError(t *testing.T) {
	err := &CollisionError{Section: "paths", Key: "/v1/lambda/endpoint1", FirstFile: "a.yaml", SecondFile: "b.yaml"}
	assert.True(t, errors.Is(err, ErrCollision))
	msg := err.Error()
	assert.Contains(t, msg, "paths")
	assert.Contains(t, msg, "/v1/lambda/endpoint1")
	assert.Contains(t, msg, "a.yaml")
	assert.Contains(t, msg, "b.yaml")
}

func TestExtractError(t *testing.T) {
	missing := &ExtractError{Kind: MissingBlock, File: "lambda.tf", Block: "locals.lambdas"}
	assert.True(t, errors.Is(missing, ErrMissingBlock))
	assert.False(t, errors.Is(missing, ErrMalformedBlock))
	assert.Contains(t, missing.Error(), "missing block")
	assert.Contains(t, missing.Error(), "locals.lambdas")

	malformed := &ExtractError{Kind: MalformedBlock, File: "lambda.tf", Block: "locals.lambdas.lambda-1", Message: "missing required attribute handler"}
	assert.True(t, errors.Is(malformed, ErrMalformedBlock))
	assert.False(t, errors.Is(malformed, ErrMissingBlock))
	assert.Contains(t, malformed.Error(), "malformed block")
}
