package build

import (
	"errors"
	"fmt"
)

// Error classes for a run. Every class is fatal.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrBuild         = errors.New("build failed")
	ErrArtifact      = errors.New("artifact not found")
	ErrPackaging     = errors.New("packaging failed")
)

// A BuildError reports a failed invocation of the build tool for one configuration.
type BuildError struct {
	Configuration Configuration
	ExitCode      int
	Err           error
}

// Error returns the error message.
func (e *BuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("build failed: %s: %v", e.Configuration, e.Err)
	}
	return fmt.Sprintf("build failed: %s (exit code %d)", e.Configuration, e.ExitCode)
}

func (e *BuildError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrBuild, e.Err}
	}
	return []error{ErrBuild}
}

// An ArtifactError reports an artifact that was not produced by a successful build.
type ArtifactError struct {
	Configuration Configuration
	Path          string
	Err           error
}

// Error returns the error message.
func (e *ArtifactError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not find artifact for %s: %s: %v", e.Configuration, e.Path, e.Err)
	}
	return fmt.Sprintf("could not find artifact for %s: %s", e.Configuration, e.Path)
}

func (e *ArtifactError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrArtifact, e.Err}
	}
	return []error{ErrArtifact}
}

// An OutputError reports an output location that cannot be used.
type OutputError struct {
	Path   string
	Reason string
}

// Error returns the error message.
func (e *OutputError) Error() string {
	return fmt.Sprintf("invalid output path %s: %s", e.Path, e.Reason)
}

func (e *OutputError) Unwrap() error { return ErrConfiguration }

func configurationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
