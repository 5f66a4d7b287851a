package parser

import "fmt"

// Option is a function that configures a parse operation
type Option func(*parseConfig) error

// parseConfig holds configuration for a parse operation
type parseConfig struct {
	// Input source (exactly one must be set)
	filePath *string
	bytes    []byte

	// Configuration options
	resolveRefs    bool
	tolerateCycles bool
	logger         Logger

	// Source identification
	sourceName *string // Override SourcePath in the result
}

// applyOptions applies option functions and validates configuration
func applyOptions(opts ...Option) (*parseConfig, error) {
	cfg := &parseConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.filePath == nil && cfg.bytes == nil {
		return nil, fmt.Errorf("parser: must specify an input source (use WithFilePath or WithBytes)")
	}
	if cfg.filePath != nil && cfg.bytes != nil {
		return nil, fmt.Errorf("parser: must specify exactly one input source")
	}
	if cfg.logger == nil {
		cfg.logger = nopLogger{}
	}
	return cfg, nil
}

// WithFilePath specifies a file path as the input source
func WithFilePath(path string) Option {
	return func(cfg *parseConfig) error {
		cfg.filePath = &path
		return nil
	}
}

// WithBytes specifies raw document bytes as the input source
func WithBytes(data []byte) Option {
	return func(cfg *parseConfig) error {
		cfg.bytes = data
		return nil
	}
}

// WithSourceName overrides the SourcePath recorded on the resulting document.
// Useful with WithBytes, where no file path is available.
func WithSourceName(name string) Option {
	return func(cfg *parseConfig) error {
		cfg.sourceName = &name
		return nil
	}
}

// WithResolveRefs enables $ref resolution after parsing
func WithResolveRefs(enabled bool) Option {
	return func(cfg *parseConfig) error {
		cfg.resolveRefs = enabled
		return nil
	}
}

// WithTolerateCycles downgrades detected reference cycles from fatal errors
// to warning findings; the cyclic node is replaced with an opaque marker so
// resolution of the rest of the document continues.
func WithTolerateCycles(enabled bool) Option {
	return func(cfg *parseConfig) error {
		cfg.tolerateCycles = enabled
		return nil
	}
}

// WithLogger sets the logger used during parsing and resolution
func WithLogger(l Logger) Option {
	return func(cfg *parseConfig) error {
		cfg.logger = l
		return nil
	}
}
