package packaging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cochaviz/slnbuild/internal/artifacts"
	"github.com/cochaviz/slnbuild/internal/build"
)

type recordingRunner struct {
	exitCode int
	err      error
	commands []build.Command
	manifest artifacts.Manifest
}

func (r *recordingRunner) Run(_ context.Context, command build.Command) (int, error) {
	r.commands = append(r.commands, command)
	if len(command.Args) == 2 {
		manifest, err := artifacts.ReadManifest(command.Args[1])
		if err != nil {
			return -1, err
		}
		r.manifest = manifest
	}
	return r.exitCode, r.err
}

func testMapping(t *testing.T) *artifacts.Mapping {
	t.Helper()

	mapping := artifacts.NewMapping()
	for _, name := range []string{"A", "B"} {
		if err := mapping.Add(artifacts.Artifact{Configuration: name, Path: "/out/" + name + "/CBP.dll"}); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	return mapping
}

func TestScriptPackagerRunsGeneratorWithManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	runner := &recordingRunner{}
	packager := &ScriptPackager{
		Runner:       runner,
		Script:       filepath.Join(dir, "installer", "generateFomod.py"),
		ManifestPath: filepath.Join(dir, "tmp", DefaultManifestName),
		Dir:          dir,
	}

	if err := packager.Package(context.Background(), testMapping(t)); err != nil {
		t.Fatalf("Package() error = %v", err)
	}

	want := []build.Command{{
		Path: DefaultInterpreter,
		Args: []string{packager.Script, packager.ManifestPath},
		Dir:  dir,
	}}
	if diff := cmp.Diff(want, runner.commands); diff != "" {
		t.Fatalf("unexpected commands (-want +got):\n%s", diff)
	}

	wantTargets := map[string]string{"A": "/out/A/CBP.dll", "B": "/out/B/CBP.dll"}
	if diff := cmp.Diff(wantTargets, runner.manifest.Targets); diff != "" {
		t.Fatalf("manifest targets mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A", "B"}, runner.manifest.Order); diff != "" {
		t.Fatalf("manifest order mismatch (-want +got):\n%s", diff)
	}
}

func TestScriptPackagerReportsGeneratorFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	packager := &ScriptPackager{
		Runner:       &recordingRunner{exitCode: 2},
		Interpreter:  "python3",
		Script:       "gen.py",
		ManifestPath: filepath.Join(dir, DefaultManifestName),
	}

	err := packager.Package(context.Background(), testMapping(t))

	var pkgErr *Error
	if !errors.As(err, &pkgErr) || pkgErr.ExitCode != 2 {
		t.Fatalf("error = %v, want packaging error with exit code 2", err)
	}
	if !errors.Is(err, build.ErrPackaging) {
		t.Fatalf("error does not match ErrPackaging: %v", err)
	}
}

func TestScriptPackagerReportsStartFailure(t *testing.T) {
	t.Parallel()

	cause := errors.New("executable not found")
	packager := &ScriptPackager{
		Runner:       &recordingRunner{err: cause},
		Script:       "gen.py",
		ManifestPath: filepath.Join(t.TempDir(), DefaultManifestName),
	}

	err := packager.Package(context.Background(), testMapping(t))
	if !errors.Is(err, build.ErrPackaging) || !errors.Is(err, cause) {
		t.Fatalf("error = %v, want packaging error wrapping cause", err)
	}
}

func TestScriptPackagerRejectsEmptyMapping(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{}
	packager := &ScriptPackager{
		Runner:       runner,
		Script:       "gen.py",
		ManifestPath: filepath.Join(t.TempDir(), DefaultManifestName),
	}

	if err := packager.Package(context.Background(), artifacts.NewMapping()); !errors.Is(err, build.ErrPackaging) {
		t.Fatalf("error = %v, want packaging error", err)
	}
	if len(runner.commands) != 0 {
		t.Fatal("generator ran for an empty mapping")
	}
}

func TestNoopLogsArtifacts(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	noop := &Noop{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	if err := noop.Package(context.Background(), testMapping(t)); err != nil {
		t.Fatalf("Package() error = %v", err)
	}
	if got := strings.Count(buf.String(), "packaging skipped"); got != 2 {
		t.Fatalf("logged %d artifacts, want 2:\n%s", got, buf.String())
	}
}
