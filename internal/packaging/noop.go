package packaging

import (
	"context"
	"log/slog"

	"github.com/cochaviz/slnbuild/internal/artifacts"
	"github.com/cochaviz/slnbuild/internal/build"
)

var _ build.Packager = (*Noop)(nil)

// Noop logs the mapping instead of packaging it.
type Noop struct {
	Logger *slog.Logger
}

func (n *Noop) Package(_ context.Context, mapping *artifacts.Mapping) error {
	logger := slog.Default()
	if n.Logger != nil {
		logger = n.Logger
	}
	for _, artifact := range mapping.Artifacts() {
		logger.Info("packaging skipped", "configuration", artifact.Configuration, "artifact", artifact.Path)
	}
	return nil
}
