// Package logging builds the session logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New returns a logger writing JSON lines to path, or a no-op logger when
// path is empty. The progress surface owns stdout and stderr, so a file is
// the only log destination.
func New(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	cfg.Sampling = nil // every per-file event matters when diagnosing a run
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	return logger, nil
}
