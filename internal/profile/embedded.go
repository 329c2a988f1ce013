package profile

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed assets/default.yaml
var embeddedDefault []byte

var builtin = mustParseEmbedded()

func mustParseEmbedded() Profile {
	var p Profile
	if err := yaml.Unmarshal(embeddedDefault, &p); err != nil {
		panic(fmt.Sprintf("profile: embedded default: %v", err))
	}
	p.Packager.Script = filepath.FromSlash(p.Packager.Script)
	return p
}

// DefaultYAML returns the built-in profile as written to disk by WriteDefault.
func DefaultYAML() []byte {
	return append([]byte(nil), embeddedDefault...)
}

// WriteDefault writes the built-in profile to path, or to the user's XDG config
// directory when path is empty. An existing file is only replaced when force is set.
func WriteDefault(path string, force bool) (string, error) {
	if path == "" {
		var err error
		path, err = xdg.ConfigFile(SearchPath)
		if err != nil {
			return "", fmt.Errorf("resolve config path: %w", err)
		}
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, os.ErrExist) {
		return path, fmt.Errorf("profile %s already exists", path)
	}
	if err != nil {
		return path, err
	}

	if _, err := f.Write(embeddedDefault); err != nil {
		f.Close()
		return path, err
	}
	return path, f.Close()
}
