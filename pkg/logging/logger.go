// Package logging builds the zap logger used across hourbook.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New returns a logger appropriate for the given environment.
// "local" gets the human-readable development config; everything else
// gets production JSON output.
func New(env string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "local" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
