package msbuild

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/cochaviz/slnbuild/internal/artifacts"
	"github.com/cochaviz/slnbuild/internal/build"
)

// Ensure Driver satisfies the build driver interface.
var _ build.Driver = (*Driver)(nil)

// DefaultPostBuildHook is the MSBuild property that enables post-build events.
const DefaultPostBuildHook = "PostBuildEventUseInBuild"

// BuildConfig captures the inputs shared by every configuration build.
type BuildConfig struct {
	ToolPath      string // Path to the build tool executable.
	SolutionPath  string // Build-description file passed as the positional argument.
	Artifact      string // File name expected in each output directory.
	PostBuildHook string // Property disabled for every build.
	Rebuild       bool   // Append the clean and rebuild target.
	Parallel      bool   // Let the build tool schedule its own parallel jobs.
	WorkDir       string // Working directory for the build tool, optional.
}

// Driver builds one configuration of a solution with MSBuild.
type Driver struct {
	Logger *slog.Logger
	Runner build.CommandRunner
	Config BuildConfig
}

func (d *Driver) logger() *slog.Logger {
	if d != nil && d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// Build invokes the build tool for the target and verifies the artifact it produced.
func (d *Driver) Build(ctx context.Context, target build.Target) (build.Output, error) {
	if err := d.Config.validate(); err != nil {
		return build.Output{}, err
	}
	if d.Runner == nil {
		return build.Output{}, fmt.Errorf("%w: command runner is not configured", build.ErrConfiguration)
	}

	command := buildCommand(d.Config, target)
	logger := d.logger().With("configuration", target.Configuration)
	logger.Debug("running build tool", "command", command.Path+" "+strings.Join(command.Args, " "))

	started := time.Now()
	exitCode, err := d.Runner.Run(ctx, command)
	if err != nil {
		return build.Output{}, &build.BuildError{Configuration: target.Configuration, ExitCode: exitCode, Err: err}
	}
	if exitCode != 0 {
		return build.Output{}, &build.BuildError{Configuration: target.Configuration, ExitCode: exitCode}
	}

	artifactPath := filepath.Join(target.OutputDir, d.Config.Artifact)
	artifact, err := artifacts.Inspect(string(target.Configuration), artifactPath)
	if err != nil {
		return build.Output{}, &build.ArtifactError{Configuration: target.Configuration, Path: artifactPath, Err: err}
	}

	logger.Debug("artifact verified", "path", artifact.Path, "size", artifact.Size, "sha256", artifact.Checksum)

	return build.Output{
		Configuration: target.Configuration,
		Artifact:      artifact,
		Duration:      time.Since(started),
	}, nil
}

func (cfg BuildConfig) validate() error {
	switch {
	case cfg.ToolPath == "":
		return fmt.Errorf("%w: build tool path is required", build.ErrConfiguration)
	case cfg.SolutionPath == "":
		return fmt.Errorf("%w: solution path is required", build.ErrConfiguration)
	case cfg.Artifact == "":
		return fmt.Errorf("%w: artifact name is required", build.ErrConfiguration)
	}
	return nil
}

// buildCommand builds the build tool invocation for a single configuration.
func buildCommand(cfg BuildConfig, target build.Target) build.Command {
	hook := cfg.PostBuildHook
	if hook == "" {
		hook = DefaultPostBuildHook
	}

	properties := []string{
		"Configuration=" + string(target.Configuration),
		"OutDir=" + withTrailingSeparator(target.OutputDir),
		hook + "=no",
	}

	args := []string{
		cfg.SolutionPath,
		"-p:" + strings.Join(properties, ";"),
	}
	if cfg.Rebuild {
		args = append(args, "-t:Clean;Rebuild")
	}
	if cfg.Parallel {
		args = append(args, "-m")
	}

	return build.Command{Path: cfg.ToolPath, Args: args, Dir: cfg.WorkDir}
}

// withTrailingSeparator appends a path separator; MSBuild treats OutDir as a prefix.
func withTrailingSeparator(dir string) string {
	if strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir
	}
	return dir + string(filepath.Separator)
}
