package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cochaviz/slnbuild/internal/artifacts"
)

// Service runs the whole build: prepare the output tree, build every configuration
// in order, then hand the artifact mapping to the packager.
//
// The first error aborts the run. Packaging is never dispatched with a partial mapping.
type Service struct {
	Logger   *slog.Logger
	Preparer OutputPreparer
	Driver   Driver
	Packager Packager
}

// Run executes the request and returns the final state of the run. On failure the
// returned Result has PhaseFailed and holds whatever was built before the error.
func (s *Service) Run(ctx context.Context, request Request) (Result, error) {
	logger := s.logger().With("output_root", request.OutputRoot)
	result := Result{Phase: PhaseValidating, Mapping: artifacts.NewMapping()}

	fail := func(phase Phase, err error) (Result, error) {
		logger.Error("run failed", "phase", phase, "error", err)
		result.Phase = PhaseFailed
		return result, err
	}

	if err := s.validate(request); err != nil {
		return fail(PhaseValidating, err)
	}

	result.Phase = PhasePreparing
	layout, err := s.Preparer.Prepare(request.OutputRoot, request.Configurations)
	if err != nil {
		return fail(PhasePreparing, err)
	}
	logger.Debug("output prepared", "configurations", len(layout.Directories))

	result.Phase = PhaseBuilding
	for _, configuration := range request.Configurations {
		if err := ctx.Err(); err != nil {
			return fail(PhaseBuilding, err)
		}

		dir, ok := layout.Dir(configuration)
		if !ok {
			return fail(PhaseBuilding, &OutputError{Path: request.OutputRoot, Reason: fmt.Sprintf("no directory prepared for %s", configuration)})
		}

		logger.Info(fmt.Sprintf("building %s ..", configuration), "output_dir", dir)
		started := time.Now()

		output, err := s.Driver.Build(ctx, Target{Configuration: configuration, OutputDir: dir})
		if err != nil {
			return fail(PhaseBuilding, err)
		}
		if output.Duration == 0 {
			output.Duration = time.Since(started)
		}

		if err := result.Mapping.Add(output.Artifact); err != nil {
			return fail(PhaseBuilding, errors.Join(ErrArtifact, err))
		}
		result.Outputs = append(result.Outputs, output)

		logger.Info("configuration built",
			"configuration", configuration,
			"artifact", output.Artifact.Path,
			"duration", output.Duration.Round(time.Millisecond),
		)
	}

	if err := result.Mapping.Complete(Names(request.Configurations)); err != nil {
		return fail(PhaseBuilding, errors.Join(ErrArtifact, err))
	}

	result.Phase = PhasePackaging
	logger.Info("dispatching packaging", "artifacts", result.Mapping.Len())
	if err := s.Packager.Package(ctx, result.Mapping); err != nil {
		return fail(PhasePackaging, err)
	}

	result.Phase = PhaseDone
	completed := []any{"artifacts", result.Mapping.Len()}
	if !request.RequestedAt.IsZero() {
		completed = append(completed, "elapsed", time.Since(request.RequestedAt).Round(time.Millisecond))
	}
	logger.Info("run completed", completed...)
	return result, nil
}

func (s *Service) validate(request Request) error {
	switch {
	case s.Preparer == nil:
		return configurationErrorf("output preparer is not configured")
	case s.Driver == nil:
		return configurationErrorf("build driver is not configured")
	case s.Packager == nil:
		return configurationErrorf("packager is not configured")
	case request.OutputRoot == "":
		return configurationErrorf("output root is required")
	}

	_, err := ParseConfigurations(Names(request.Configurations))
	return err
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
