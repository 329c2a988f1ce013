package build

import (
	"strings"
	"time"

	"github.com/cochaviz/slnbuild/internal/artifacts"
)

// Configuration names a build variant, e.g. an instruction-set specific target.
type Configuration string

// String returns the configuration name.
func (c Configuration) String() string {
	return string(c)
}

// Phase captures the lifecycle state of a run.
type Phase string

// Supported run phases.
const (
	PhaseValidating Phase = "validating"
	PhasePreparing  Phase = "preparing"
	PhaseBuilding   Phase = "building"
	PhasePackaging  Phase = "packaging"
	PhaseDone       Phase = "done"
	PhaseFailed     Phase = "failed"
)

// Request describes a complete run across all configurations.
type Request struct {
	Configurations []Configuration
	OutputRoot     string
	RequestedAt    time.Time
}

// Layout is the prepared output tree: a root and one directory per configuration.
type Layout struct {
	Root        string
	Directories map[Configuration]string
}

// Dir returns the output directory prepared for the configuration.
func (l Layout) Dir(configuration Configuration) (string, bool) {
	dir, ok := l.Directories[configuration]
	return dir, ok
}

// Target is a single configuration build handed to a Driver.
type Target struct {
	Configuration Configuration
	OutputDir     string
}

// Output captures what a driver produced for one configuration.
type Output struct {
	Configuration Configuration
	Artifact      artifacts.Artifact
	Duration      time.Duration
}

// Result summarizes a run. Phase is PhaseDone only when packaging was dispatched.
type Result struct {
	Phase   Phase
	Mapping *artifacts.Mapping
	Outputs []Output
}

// ParseConfigurations converts raw names into configurations, rejecting empty,
// duplicate and path-like names, and names that would split a build property list.
// Order is preserved.
func ParseConfigurations(names []string) ([]Configuration, error) {
	if len(names) == 0 {
		return nil, configurationErrorf("at least one configuration is required")
	}

	seen := make(map[string]struct{}, len(names))
	configurations := make([]Configuration, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			return nil, configurationErrorf("configuration name must not be empty")
		}
		if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
			return nil, configurationErrorf("configuration name %q is not a valid directory name", name)
		}
		if strings.ContainsAny(name, ";=") {
			return nil, configurationErrorf("configuration name %q must not contain ';' or '='", name)
		}
		if _, dup := seen[name]; dup {
			return nil, configurationErrorf("configuration %q is listed more than once", name)
		}
		seen[name] = struct{}{}
		configurations = append(configurations, Configuration(name))
	}
	return configurations, nil
}

// Names returns the configuration names as plain strings.
func Names(configurations []Configuration) []string {
	names := make([]string, len(configurations))
	for i, c := range configurations {
		names[i] = string(c)
	}
	return names
}
