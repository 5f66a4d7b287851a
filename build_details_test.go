package svtools

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestVersion verifies that Version() returns the version variable.
// In development it defaults to "dev"; releases set it via ldflags.
func TestVersion(t *testing.T) {
	result := Version()
	assert.NotEmpty(t, result)
	assert.True(t,
		result == "dev" || strings.HasPrefix(result, "v"),
		"Version() should be 'dev' or start with 'v', got: %s", result)
}

func TestGoVersion(t *testing.T) {
	result := GoVersion()
	assert.Equal(t, runtime.Version(), result)
	assert.True(t, strings.HasPrefix(result, "go"))
}

func TestBuildInfo(t *testing.T) {
	result := BuildInfo()
	assert.Contains(t, result, "Version:")
	assert.Contains(t, result, "Commit:")
	assert.Contains(t, result, "Build Time:")
	assert.Contains(t, result, "Go Version:")
	assert.Contains(t, result, Version())
	assert.Contains(t, result, Commit())
	assert.Contains(t, result, BuildTime())
	assert.Contains(t, result, GoVersion())
}
