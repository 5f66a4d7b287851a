package severity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverity(t *testing.T) {
	tests := []struct {
		severity Severity
		text     string
		fatal    bool
	}{
		{SeverityError, "error", true},
		{SeverityWarning, "warning", false},
		{SeverityInfo, "info", false},
		{SeverityCritical, "critical", true},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.text, tt.severity.String())
			assert.Equal(t, tt.fatal, tt.severity.Fatal())
		})
	}
}
