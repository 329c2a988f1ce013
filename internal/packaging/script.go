package packaging

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/cochaviz/slnbuild/internal/artifacts"
	"github.com/cochaviz/slnbuild/internal/build"
)

const (
	DefaultInterpreter  = "python"
	DefaultScript       = "installer/generateFomod.py"
	DefaultManifestName = "package-manifest.json"
)

// Ensure ScriptPackager satisfies the packager interface.
var _ build.Packager = (*ScriptPackager)(nil)

// ScriptPackager writes the mapping to a manifest file and runs the generator
// script with the manifest path as its only argument.
type ScriptPackager struct {
	Logger       *slog.Logger
	Runner       build.CommandRunner
	Interpreter  string // executable used to run Script; defaults to DefaultInterpreter
	Script       string // absolute path of the generator script
	ManifestPath string
	Dir          string // working directory for the generator
}

// Package writes the manifest and blocks until the generator exits.
func (p *ScriptPackager) Package(ctx context.Context, mapping *artifacts.Mapping) error {
	if p.Runner == nil {
		return &Error{Script: p.Script, ExitCode: -1, Err: errors.New("command runner is not configured")}
	}
	if p.Script == "" || p.ManifestPath == "" {
		return &Error{Script: p.Script, ExitCode: -1, Err: errors.New("generator script and manifest path are required")}
	}
	if mapping.Len() == 0 {
		return &Error{Script: p.Script, ExitCode: -1, Err: errors.New("no artifacts to package")}
	}

	manifest := artifacts.NewManifest(mapping)
	if err := artifacts.WriteManifest(p.ManifestPath, manifest); err != nil {
		return &Error{Script: p.Script, ExitCode: -1, Err: err}
	}

	logger := p.logger().With("run_id", manifest.RunID, "script", filepath.Base(p.Script))
	logger.Info("running packaging generator", "manifest", p.ManifestPath, "artifacts", len(manifest.Order))

	command := build.Command{
		Path: p.interpreter(),
		Args: []string{p.Script, p.ManifestPath},
		Dir:  p.Dir,
	}
	code, err := p.Runner.Run(ctx, command)
	if err != nil {
		return &Error{Script: p.Script, ExitCode: code, Err: err}
	}
	if code != 0 {
		return &Error{Script: p.Script, ExitCode: code}
	}

	logger.Debug("packaging generator finished")
	return nil
}

func (p *ScriptPackager) interpreter() string {
	if p.Interpreter != "" {
		return p.Interpreter
	}
	return DefaultInterpreter
}

func (p *ScriptPackager) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
