package process

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/execabs"

	"github.com/cochaviz/slnbuild/internal/build"
)

// Ensure ExecRunner satisfies the command runner interface.
var _ build.CommandRunner = (*ExecRunner)(nil)

// ExecRunner starts commands as child processes and waits for them.
//
// Output is streamed to Stdout and Stderr, which default to the process's own.
type ExecRunner struct {
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes the command and returns its exit code.
func (r *ExecRunner) Run(ctx context.Context, command build.Command) (int, error) {
	if command.Path == "" {
		return -1, errors.New("no command provided")
	}

	r.logger().Debug("executing", "command", command.Path+" "+strings.Join(command.Args, " "), "dir", command.Dir)

	cmd := execabs.CommandContext(ctx, command.Path, command.Args...)
	cmd.Dir = command.Dir
	cmd.Stdout = writerOr(r.Stdout, os.Stdout)
	cmd.Stderr = writerOr(r.Stderr, os.Stderr)

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

func (r *ExecRunner) logger() *slog.Logger {
	if r != nil && r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}
