// Package simple wires the profile, the environment and the MSBuild adapters into a
// build service. It is the only place where concrete implementations are chosen.
package simple

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cochaviz/slnbuild/internal/build"
	"github.com/cochaviz/slnbuild/internal/build/adapters/msbuild"
	"github.com/cochaviz/slnbuild/internal/logging"
	"github.com/cochaviz/slnbuild/internal/packaging"
	"github.com/cochaviz/slnbuild/internal/process"
	"github.com/cochaviz/slnbuild/internal/profile"
	"github.com/cochaviz/slnbuild/internal/setup"
)

// Options adjust a run without editing the profile.
type Options struct {
	ProfilePath string   // explicit profile; empty searches the XDG config dirs
	Only        []string // subset of configurations, empty builds all
	NoRebuild   bool
	NoParallel  bool
	SkipPackage bool

	Lookup setup.LookupFunc    // environment lookup, defaults to os.LookupEnv
	Runner build.CommandRunner // process runner, defaults to process.ExecRunner

	Output    io.Writer // child process stdout, defaults to os.Stdout
	ErrOutput io.Writer // child process stderr, defaults to os.Stderr
}

// Plan is a resolved profile bound to a validated environment.
type Plan struct {
	Profile        profile.Profile
	ProfilePath    string
	Environment    setup.Environment
	Configurations []build.Configuration
}

// OutputRoot returns the root of the output tree.
func (p Plan) OutputRoot() string {
	return p.Profile.OutputRoot(p.Environment.SolutionRoot)
}

// Resolve loads the profile and validates the environment it names.
func Resolve(opts Options, logger *slog.Logger) (Plan, error) {
	logger = logging.Ensure(logger)

	prof, path, err := profile.Resolve(opts.ProfilePath)
	if err != nil {
		return Plan{}, err
	}
	if path == "" {
		logger.Debug("using built-in profile")
	} else {
		logger.Debug("using profile", "path", path)
	}

	env, err := setup.Verify(setup.EnvironmentNames{
		ToolDir:      prof.Environment.ToolDir,
		SolutionRoot: prof.Environment.SolutionRoot,
	}, opts.Lookup)
	if err != nil {
		return Plan{}, err
	}

	configurations, err := prof.Select(opts.Only)
	if err != nil {
		return Plan{}, err
	}

	return Plan{Profile: prof, ProfilePath: path, Environment: env, Configurations: configurations}, nil
}

// Build runs every selected configuration and dispatches packaging.
func Build(ctx context.Context, opts Options, logger *slog.Logger) (build.Result, error) {
	logger = logging.Ensure(logger).With("component", "config.simple")

	plan, err := Resolve(opts, logger)
	if err != nil {
		return build.Result{Phase: build.PhaseFailed}, err
	}

	service := NewService(plan, opts, logger)
	return service.Run(ctx, build.Request{
		Configurations: plan.Configurations,
		OutputRoot:     plan.OutputRoot(),
		RequestedAt:    time.Now(),
	})
}

// NewService assembles the build service for a resolved plan.
func NewService(plan Plan, opts Options, logger *slog.Logger) *build.Service {
	logger = logging.Ensure(logger)
	prof := plan.Profile
	env := plan.Environment

	runner := opts.Runner
	if runner == nil {
		runner = &process.ExecRunner{
			Logger: logger.With("component", "process"),
			Stdout: opts.Output,
			Stderr: opts.ErrOutput,
		}
	}

	var packager build.Packager = &packaging.Noop{Logger: logger.With("packager", "noop")}
	if !opts.SkipPackage {
		packager = &packaging.ScriptPackager{
			Logger:       logger.With("packager", "script"),
			Runner:       runner,
			Interpreter:  prof.Packager.Interpreter,
			Script:       underRoot(env.SolutionRoot, prof.Packager.Script),
			ManifestPath: filepath.Join(plan.OutputRoot(), prof.Packager.Manifest),
			Dir:          env.SolutionRoot,
		}
	}

	return &build.Service{
		Logger:   logger.With("service", "build"),
		Preparer: &msbuild.OutputPreparer{Logger: logger.With("component", "output")},
		Driver: &msbuild.Driver{
			Logger: logger.With("driver", "msbuild"),
			Runner: runner,
			Config: msbuild.BuildConfig{
				ToolPath:      filepath.Join(env.ToolDir, prof.BuildTool),
				SolutionPath:  underRoot(env.SolutionRoot, prof.Solution),
				Artifact:      prof.Artifact,
				PostBuildHook: prof.PostBuildHook,
				Rebuild:       prof.Rebuild && !opts.NoRebuild,
				Parallel:      prof.Parallel && !opts.NoParallel,
				WorkDir:       env.SolutionRoot,
			},
		},
		Packager: packager,
	}
}

// Target is one configuration as it would be built.
type Target struct {
	Configuration build.Configuration
	OutputDir     string
	Artifact      string
}

// List returns the selected configurations and where their artifacts are expected.
func List(opts Options, logger *slog.Logger) ([]Target, error) {
	plan, err := Resolve(opts, logging.Ensure(logger).With("component", "config.simple"))
	if err != nil {
		return nil, err
	}

	targets := make([]Target, 0, len(plan.Configurations))
	for _, c := range plan.Configurations {
		targets = append(targets, Target{
			Configuration: c,
			OutputDir:     filepath.Join(plan.OutputRoot(), string(c)),
			Artifact:      plan.Profile.ArtifactPath(plan.Environment.SolutionRoot, c),
		})
	}
	return targets, nil
}

// Check validates the profile and environment without building.
func Check(opts Options, logger *slog.Logger) (setup.Environment, error) {
	logger = logging.Ensure(logger).With("component", "config.simple")

	plan, err := Resolve(opts, logger)
	if err != nil {
		return setup.Environment{}, err
	}

	solution := underRoot(plan.Environment.SolutionRoot, plan.Profile.Solution)
	if _, err := os.Stat(solution); err != nil {
		logger.Warn("solution file not found", "path", solution)
	}
	tool := filepath.Join(plan.Environment.ToolDir, plan.Profile.BuildTool)
	if _, err := os.Stat(tool); err != nil {
		return setup.Environment{}, fmt.Errorf("%w: build tool %s: %v", build.ErrConfiguration, tool, err)
	}
	return plan.Environment, nil
}

func underRoot(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
