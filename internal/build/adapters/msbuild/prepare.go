package msbuild

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cochaviz/slnbuild/internal/build"
)

// Ensure OutputPreparer implements the build.OutputPreparer interface.
var _ build.OutputPreparer = (*OutputPreparer)(nil)

// OutputPreparer creates the output root and one subdirectory per configuration.
//
// Existing directories are reused; only a non-directory in the way is an error.
type OutputPreparer struct {
	Logger *slog.Logger
}

// Prepare ensures the output tree exists and returns its layout.
func (p *OutputPreparer) Prepare(root string, configurations []build.Configuration) (build.Layout, error) {
	if root == "" {
		return build.Layout{}, &build.OutputError{Path: root, Reason: "path is empty"}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return build.Layout{}, fmt.Errorf("resolve output root: %w", err)
	}

	if err := prepareRoot(absRoot); err != nil {
		return build.Layout{}, err
	}

	layout := build.Layout{
		Root:        absRoot,
		Directories: make(map[build.Configuration]string, len(configurations)),
	}
	for _, configuration := range configurations {
		dir := filepath.Join(absRoot, string(configuration))
		created, err := ensureDir(dir)
		if err != nil {
			return build.Layout{}, err
		}
		if created {
			p.logger().Debug("created output directory", "configuration", configuration, "path", dir)
		}
		layout.Directories[configuration] = dir
	}

	return layout, nil
}

func (p *OutputPreparer) logger() *slog.Logger {
	if p != nil && p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// prepareRoot creates the root if absent and rejects anything that is not a directory.
func prepareRoot(root string) error {
	info, err := os.Stat(root)
	switch {
	case err == nil:
		if !info.IsDir() {
			return &build.OutputError{Path: root, Reason: "exists and is not a directory"}
		}
		return nil
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(root, 0o755); err != nil {
			return fmt.Errorf("create output root: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("stat output root %q: %w", root, err)
	}
}

// ensureDir creates dir if absent. It reports whether the directory was created.
func ensureDir(dir string) (bool, error) {
	err := os.Mkdir(dir, 0o755)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, fs.ErrExist) {
		return false, fmt.Errorf("create output directory: %w", err)
	}

	info, statErr := os.Stat(dir)
	if statErr != nil {
		return false, fmt.Errorf("stat output directory %q: %w", dir, statErr)
	}
	if !info.IsDir() {
		return false, &build.OutputError{Path: dir, Reason: "exists and is not a directory"}
	}
	return false, nil
}
