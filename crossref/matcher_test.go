package crossref

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultMatcher(t *testing.T) {
	tests := []struct {
		name      string
		sourceARN string
		method    string
		path      string
		ok        bool
		ambiguous bool
	}{
		{
			name:      "stage wildcard",
			sourceARN: "${module.api_gateway.execution_arn}/*/POST/v1/lambda/endpoint1",
			method:    "post",
			path:      "/v1/lambda/endpoint1",
			ok:        true,
		},
		{
			name:      "explicit stage",
			sourceARN: "arn:aws:execute-api:eu-west-1:123456789012:abcdef/prod/GET/v1/lambda/endpoint2",
			method:    "get",
			path:      "/v1/lambda/endpoint2",
			ok:        true,
		},
		{
			name:      "lowercase method not a marker",
			sourceARN: "arn:aws:execute-api:eu-west-1:123456789012:abcdef/prod/get/v1/pets",
			ok:        false,
		},
		{
			name:      "no method marker",
			sourceARN: "${module.api_gateway.execution_arn}/*/",
			ok:        false,
		},
		{
			name:      "two markers uses the last",
			sourceARN: "arn:aws:execute-api:eu-west-1:123456789012:abcdef/GET/proxy/POST/v1/lambda/endpoint1",
			method:    "post",
			path:      "/v1/lambda/endpoint1",
			ok:        true,
			ambiguous: true,
		},
		{
			name:      "path segment resembling a method",
			sourceARN: "${module.api_gateway.execution_arn}/*/DELETE/v1/options/legacy",
			method:    "delete",
			path:      "/v1/options/legacy",
			ok:        true,
		},
		{
			name:      "empty",
			sourceARN: "",
			ok:        false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method, path, ok, ambiguous := DefaultMatcher{}.Match(tt.sourceARN)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.method, method)
			assert.Equal(t, tt.path, path)
			assert.Equal(t, tt.ambiguous, ambiguous)
		})
	}
}
