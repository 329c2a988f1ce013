package setup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cochaviz/slnbuild/internal/build"
)

// EnvironmentNames are the variables that locate the build tool and the solution.
type EnvironmentNames struct {
	ToolDir      string
	SolutionRoot string
}

// DefaultEnvironmentNames are the variables read when the profile does not override them.
var DefaultEnvironmentNames = EnvironmentNames{
	ToolDir:      "MSBUILD_PATH",
	SolutionRoot: "CBP_SLN_ROOT",
}

// Environment holds the validated, absolute locations.
type Environment struct {
	ToolDir      string
	SolutionRoot string
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Reasons a variable is rejected.
const (
	ReasonNotSet       = "not set"
	ReasonMissing      = "does not exist"
	ReasonNotDirectory = "not a directory"
)

// VariableProblem is one rejected variable.
type VariableProblem struct {
	Name   string
	Value  string
	Reason string
}

// An EnvironmentError lists every required variable that is unusable.
type EnvironmentError struct {
	Problems []VariableProblem
}

func (e *EnvironmentError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		if p.Value == "" {
			parts = append(parts, fmt.Sprintf("%s is %s", p.Name, p.Reason))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s %s", p.Name, p.Value, p.Reason))
	}
	return "invalid environment: " + strings.Join(parts, "; ")
}

func (e *EnvironmentError) Unwrap() error { return build.ErrConfiguration }

// LoadEnvironment reads and checks both variables through lookup, which defaults to
// os.LookupEnv. It does not stop at the first problem.
func LoadEnvironment(names EnvironmentNames, lookup LookupFunc) (Environment, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if names.ToolDir == "" || names.SolutionRoot == "" {
		return Environment{}, fmt.Errorf("%w: environment variable names are required", build.ErrConfiguration)
	}

	var problems []VariableProblem
	resolve := func(name string) string {
		dir, problem := checkDirectory(name, lookup)
		if problem != nil {
			problems = append(problems, *problem)
			return ""
		}
		getLogger().Debug("environment variable resolved", "name", name, "path", dir)
		return dir
	}

	env := Environment{
		ToolDir:      resolve(names.ToolDir),
		SolutionRoot: resolve(names.SolutionRoot),
	}
	if len(problems) > 0 {
		return Environment{}, &EnvironmentError{Problems: problems}
	}
	return env, nil
}

// Verify loads the environment and logs the outcome. Zero names mean
// DefaultEnvironmentNames.
func Verify(names EnvironmentNames, lookup LookupFunc) (Environment, error) {
	if names == (EnvironmentNames{}) {
		names = DefaultEnvironmentNames
	}

	logger := getLogger().With("action", "verify_environment")
	logger.Debug("verifying environment", "tool_dir", names.ToolDir, "solution_root", names.SolutionRoot)

	env, err := LoadEnvironment(names, lookup)
	if err != nil {
		logger.Error("environment verification failed", "error", err)
		return Environment{}, err
	}
	logger.Debug("environment verification succeeded")
	return env, nil
}

func checkDirectory(name string, lookup LookupFunc) (string, *VariableProblem) {
	value, ok := lookup(name)
	if !ok || strings.TrimSpace(value) == "" {
		return "", &VariableProblem{Name: name, Reason: ReasonNotSet}
	}

	info, err := os.Stat(value)
	if errors.Is(err, os.ErrNotExist) {
		return "", &VariableProblem{Name: name, Value: value, Reason: ReasonMissing}
	}
	if err != nil {
		return "", &VariableProblem{Name: name, Value: value, Reason: err.Error()}
	}
	if !info.IsDir() {
		return "", &VariableProblem{Name: name, Value: value, Reason: ReasonNotDirectory}
	}

	abs, err := filepath.Abs(value)
	if err != nil {
		return "", &VariableProblem{Name: name, Value: value, Reason: err.Error()}
	}
	return abs, nil
}
