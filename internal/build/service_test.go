package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/cochaviz/slnbuild/internal/artifacts"
)

type stubPreparer struct {
	err   error
	calls int
}

func (s *stubPreparer) Prepare(root string, configurations []Configuration) (Layout, error) {
	s.calls++
	if s.err != nil {
		return Layout{}, s.err
	}
	layout := Layout{Root: root, Directories: make(map[Configuration]string, len(configurations))}
	for _, c := range configurations {
		layout.Directories[c] = filepath.Join(root, string(c))
	}
	return layout, nil
}

// stubDriver builds in order and fails on configurations listed in failures.
type stubDriver struct {
	failures map[Configuration]error
	built    []Configuration
}

func (s *stubDriver) Build(_ context.Context, target Target) (Output, error) {
	s.built = append(s.built, target.Configuration)
	if err := s.failures[target.Configuration]; err != nil {
		return Output{}, err
	}
	return Output{
		Configuration: target.Configuration,
		Artifact: artifacts.Artifact{
			Configuration: string(target.Configuration),
			Kind:          artifacts.BinaryArtifact,
			Path:          filepath.Join(target.OutputDir, "CBP.dll"),
		},
	}, nil
}

type stubPackager struct {
	err      error
	calls    int
	received map[string]string
	order    []string
}

func (s *stubPackager) Package(_ context.Context, mapping *artifacts.Mapping) error {
	s.calls++
	s.received = mapping.Paths()
	s.order = mapping.Names()
	return s.err
}

func newTestService() (*Service, *stubPreparer, *stubDriver, *stubPackager) {
	preparer := &stubPreparer{}
	driver := &stubDriver{failures: map[Configuration]error{}}
	packager := &stubPackager{}
	return &Service{Preparer: preparer, Driver: driver, Packager: packager}, preparer, driver, packager
}

func TestServiceRunBuildsAllAndPackagesOnce(t *testing.T) {
	t.Parallel()

	service, _, driver, packager := newTestService()
	root := filepath.Join("out", "tmp")

	result, err := service.Run(context.Background(), Request{
		Configurations: []Configuration{"A", "B"},
		OutputRoot:     root,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Phase != PhaseDone {
		t.Fatalf("phase = %s, want %s", result.Phase, PhaseDone)
	}
	if diff := cmp.Diff([]Configuration{"A", "B"}, driver.built); diff != "" {
		t.Fatalf("build order mismatch (-want +got):\n%s", diff)
	}
	if packager.calls != 1 {
		t.Fatalf("packager called %d times, want 1", packager.calls)
	}

	want := map[string]string{
		"A": filepath.Join(root, "A", "CBP.dll"),
		"B": filepath.Join(root, "B", "CBP.dll"),
	}
	if diff := cmp.Diff(want, packager.received); diff != "" {
		t.Fatalf("packaged mapping mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A", "B"}, packager.order); diff != "" {
		t.Fatalf("packaged order mismatch (-want +got):\n%s", diff)
	}
	if len(result.Outputs) != 2 {
		t.Fatalf("outputs = %d, want 2", len(result.Outputs))
	}
}

func TestServiceRunStopsOnBuildFailure(t *testing.T) {
	t.Parallel()

	service, _, driver, packager := newTestService()
	driver.failures["A"] = &BuildError{Configuration: "A", ExitCode: 1}

	result, err := service.Run(context.Background(), Request{
		Configurations: []Configuration{"A", "B"},
		OutputRoot:     "out",
	})

	var buildErr *BuildError
	if !errors.As(err, &buildErr) || buildErr.Configuration != "A" {
		t.Fatalf("error = %v, want build error for A", err)
	}
	if result.Phase != PhaseFailed {
		t.Fatalf("phase = %s, want %s", result.Phase, PhaseFailed)
	}
	if diff := cmp.Diff([]Configuration{"A"}, driver.built); diff != "" {
		t.Fatalf("unexpected builds (-want +got):\n%s", diff)
	}
	if packager.calls != 0 {
		t.Fatalf("packager called %d times, want 0", packager.calls)
	}
}

func TestServiceRunStopsOnMissingArtifact(t *testing.T) {
	t.Parallel()

	service, _, driver, packager := newTestService()
	missing := filepath.Join("out", "A", "CBP.dll")
	driver.failures["A"] = &ArtifactError{Configuration: "A", Path: missing}

	_, err := service.Run(context.Background(), Request{
		Configurations: []Configuration{"A", "B"},
		OutputRoot:     "out",
	})

	var artifactErr *ArtifactError
	if !errors.As(err, &artifactErr) || artifactErr.Path != missing {
		t.Fatalf("error = %v, want artifact error for %s", err, missing)
	}
	if len(driver.built) != 1 {
		t.Fatalf("built %v, want only A", driver.built)
	}
	if packager.calls != 0 {
		t.Fatalf("packager called %d times, want 0", packager.calls)
	}
}

func TestServiceRunStopsWhenPreparationFails(t *testing.T) {
	t.Parallel()

	service, preparer, driver, packager := newTestService()
	preparer.err = &OutputError{Path: "out", Reason: "exists and is not a directory"}

	result, err := service.Run(context.Background(), Request{
		Configurations: []Configuration{"A", "B"},
		OutputRoot:     "out",
	})

	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("error = %v, want configuration error", err)
	}
	if result.Phase != PhaseFailed {
		t.Fatalf("phase = %s, want %s", result.Phase, PhaseFailed)
	}
	if len(driver.built) != 0 || packager.calls != 0 {
		t.Fatalf("work done after failed preparation: builds=%v packager=%d", driver.built, packager.calls)
	}
}

func TestServiceRunReportsPackagingFailure(t *testing.T) {
	t.Parallel()

	service, _, _, packager := newTestService()
	packager.err = fmt.Errorf("%w: generator exited with 2", ErrPackaging)

	result, err := service.Run(context.Background(), Request{
		Configurations: []Configuration{"A"},
		OutputRoot:     "out",
	})

	if !errors.Is(err, ErrPackaging) {
		t.Fatalf("error = %v, want packaging error", err)
	}
	if result.Phase != PhaseFailed {
		t.Fatalf("phase = %s, want %s", result.Phase, PhaseFailed)
	}
	if result.Mapping.Len() != 1 {
		t.Fatalf("mapping has %d entries, want 1", result.Mapping.Len())
	}
}

func TestServiceRunRejectsDuplicateArtifacts(t *testing.T) {
	t.Parallel()

	service, _, _, packager := newTestService()
	service.Driver = driverFunc(func(_ context.Context, target Target) (Output, error) {
		return Output{Artifact: artifacts.Artifact{Configuration: "A", Path: "same.dll"}}, nil
	})

	_, err := service.Run(context.Background(), Request{
		Configurations: []Configuration{"A", "B"},
		OutputRoot:     "out",
	})

	if !errors.Is(err, ErrArtifact) || !errors.Is(err, artifacts.ErrDuplicateConfiguration) {
		t.Fatalf("error = %v, want duplicate artifact error", err)
	}
	if packager.calls != 0 {
		t.Fatalf("packager called %d times, want 0", packager.calls)
	}
}

func TestServiceRunHonoursCancellation(t *testing.T) {
	t.Parallel()

	service, _, driver, packager := newTestService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.Run(ctx, Request{Configurations: []Configuration{"A"}, OutputRoot: "out"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if len(driver.built) != 0 || packager.calls != 0 {
		t.Fatal("work done after cancellation")
	}
}

func TestServiceRunValidatesRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Service)
		request Request
	}{
		{name: "no configurations", request: Request{OutputRoot: "out"}},
		{name: "no output root", request: Request{Configurations: []Configuration{"A"}}},
		{name: "duplicate configuration", request: Request{Configurations: []Configuration{"A", "A"}, OutputRoot: "out"}},
		{name: "missing driver", mutate: func(s *Service) { s.Driver = nil }, request: Request{Configurations: []Configuration{"A"}, OutputRoot: "out"}},
		{name: "missing packager", mutate: func(s *Service) { s.Packager = nil }, request: Request{Configurations: []Configuration{"A"}, OutputRoot: "out"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, preparer, _, _ := newTestService()
			if tt.mutate != nil {
				tt.mutate(service)
			}

			_, err := service.Run(context.Background(), tt.request)
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("error = %v, want configuration error", err)
			}
			if preparer.calls != 0 {
				t.Fatal("output prepared for an invalid request")
			}
		})
	}
}

type driverFunc func(context.Context, Target) (Output, error)

func (f driverFunc) Build(ctx context.Context, target Target) (Output, error) { return f(ctx, target) }

func TestServiceRunLogsElapsedSinceRequest(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	service, _, _, _ := newTestService()
	service.Logger = slog.New(slog.NewTextHandler(&buf, nil))

	_, err := service.Run(context.Background(), Request{
		Configurations: []Configuration{"A"},
		OutputRoot:     "out",
		RequestedAt:    time.Now().Add(-time.Second),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var summary string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "run completed") {
			summary = line
		}
	}
	if !strings.Contains(summary, "elapsed=") || !strings.Contains(summary, "artifacts=1") {
		t.Fatalf("summary line = %q, want artifacts and elapsed", summary)
	}
}
