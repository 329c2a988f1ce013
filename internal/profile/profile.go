// Package profile holds the per-project constants of a build: which solution to
// build, which configurations, where the output goes and how packaging runs.
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/cochaviz/slnbuild/internal/build"
)

// SearchPath is looked up in the XDG config directories when no profile is given.
const SearchPath = "slnbuild/profile.yaml"

// Profile describes one solution build. Relative paths are relative to the solution root.
type Profile struct {
	Solution       string      `yaml:"solution"`
	BuildTool      string      `yaml:"build_tool"` // executable inside the tool directory
	OutputDir      string      `yaml:"output_dir"`
	Artifact       string      `yaml:"artifact"` // expected file in every configuration's output directory
	Configurations []string    `yaml:"configurations"`
	Rebuild        bool        `yaml:"rebuild"`
	Parallel       bool        `yaml:"parallel"`
	PostBuildHook  string      `yaml:"post_build_hook"`
	Environment    Environment `yaml:"environment"`
	Packager       Packager    `yaml:"packager"`
}

// Environment names the variables holding the required locations.
type Environment struct {
	ToolDir      string `yaml:"tool_dir"`
	SolutionRoot string `yaml:"solution_root"`
}

type Packager struct {
	Interpreter string `yaml:"interpreter"`
	Script      string `yaml:"script"`
	Manifest    string `yaml:"manifest"` // relative to the output directory
}

// Default returns the built-in profile for the CBP solution.
func Default() Profile {
	p := builtin
	p.Configurations = append([]string(nil), builtin.Configurations...)
	return p
}

// Load reads a YAML profile from path. Fields absent from the file keep their
// default values; unknown fields are rejected.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: read profile: %v", build.ErrConfiguration, err)
	}
	profile, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Profile{}, fmt.Errorf("%s: %w", path, err)
	}
	return profile, nil
}

// Decode parses a YAML profile over the defaults and validates it.
func Decode(r io.Reader) (Profile, error) {
	profile := Default()

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&profile); err != nil && !errors.Is(err, io.EOF) {
		return Profile{}, fmt.Errorf("%w: parse profile: %v", build.ErrConfiguration, err)
	}

	if err := profile.Validate(); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// Resolve loads the explicit profile if given, otherwise the first profile found in
// the XDG config directories, otherwise the defaults. It returns the file used, if any.
func Resolve(explicit string) (Profile, string, error) {
	if explicit != "" {
		profile, err := Load(explicit)
		return profile, explicit, err
	}

	path, err := xdg.SearchConfigFile(SearchPath)
	if err != nil {
		return Default(), "", nil
	}
	profile, err := Load(path)
	return profile, path, err
}

// Validate reports the first field that cannot be used for a build.
func (p Profile) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"solution", p.Solution},
		{"build_tool", p.BuildTool},
		{"output_dir", p.OutputDir},
		{"artifact", p.Artifact},
		{"environment.tool_dir", p.Environment.ToolDir},
		{"environment.solution_root", p.Environment.SolutionRoot},
		{"packager.script", p.Packager.Script},
		{"packager.manifest", p.Packager.Manifest},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return invalid("%s is required", field.name)
		}
	}

	if filepath.IsAbs(p.Artifact) {
		return invalid("artifact %q must be relative to the output directory", p.Artifact)
	}
	if p.Environment.ToolDir == p.Environment.SolutionRoot {
		return invalid("environment variables must differ, both are %q", p.Environment.ToolDir)
	}
	if _, err := build.ParseConfigurations(p.Configurations); err != nil {
		return err
	}
	return nil
}

// Select returns the named configurations in profile order, or all of them when
// names is empty.
func (p Profile) Select(names []string) ([]build.Configuration, error) {
	all, err := build.ParseConfigurations(p.Configurations)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return all, nil
	}

	wanted := make(map[build.Configuration]bool, len(names))
	for _, name := range names {
		c := build.Configuration(strings.TrimSpace(name))
		if !contains(all, c) {
			return nil, invalid("unknown configuration %q (known: %s)", name, strings.Join(p.Configurations, ", "))
		}
		wanted[c] = true
	}

	selected := make([]build.Configuration, 0, len(wanted))
	for _, c := range all {
		if wanted[c] {
			selected = append(selected, c)
		}
	}
	return selected, nil
}

// OutputRoot returns the output directory under the solution root.
func (p Profile) OutputRoot(solutionRoot string) string {
	if filepath.IsAbs(p.OutputDir) {
		return p.OutputDir
	}
	return filepath.Join(solutionRoot, p.OutputDir)
}

// ArtifactPath returns where the build of configuration is expected to leave its artifact.
func (p Profile) ArtifactPath(solutionRoot string, configuration build.Configuration) string {
	return filepath.Join(p.OutputRoot(solutionRoot), string(configuration), p.Artifact)
}

func contains(configurations []build.Configuration, c build.Configuration) bool {
	for _, candidate := range configurations {
		if candidate == c {
			return true
		}
	}
	return false
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: profile: %s", build.ErrConfiguration, fmt.Sprintf(format, args...))
}
