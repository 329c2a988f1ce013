package build

import (
	"context"

	"github.com/cochaviz/slnbuild/internal/artifacts"
)

// OutputPreparer creates the output tree for a run.
type OutputPreparer interface {
	Prepare(root string, configurations []Configuration) (Layout, error)
}

// Driver builds a single configuration and reports its verified artifact.
type Driver interface {
	Build(ctx context.Context, target Target) (Output, error)
}

// Packager receives the complete artifact mapping once every configuration is built.
type Packager interface {
	Package(ctx context.Context, mapping *artifacts.Mapping) error
}

// Command is a single external process invocation.
type Command struct {
	Path string
	Args []string
	Dir  string
}

// CommandRunner runs an external process to completion.
//
// A process that ran and exited reports its exit code with a nil error. The error
// is reserved for processes that could not be started or waited on.
type CommandRunner interface {
	Run(ctx context.Context, command Command) (int, error)
}
