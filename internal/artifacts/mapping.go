package artifacts

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicateConfiguration = errors.New("configuration already has an artifact")
	ErrIncompleteMapping      = errors.New("artifact mapping is incomplete")
)

// Mapping associates each configuration with its artifact, in build order.
//
// Entries are never overwritten. The zero value is not usable; call NewMapping.
type Mapping struct {
	order   []string
	entries map[string]Artifact
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{entries: make(map[string]Artifact)}
}

// Add records the artifact under its configuration name.
func (m *Mapping) Add(artifact Artifact) error {
	name := artifact.Configuration
	if name == "" {
		return errors.New("artifact has no configuration")
	}
	if artifact.Path == "" {
		return fmt.Errorf("artifact for %s has no path", name)
	}
	if _, exists := m.entries[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateConfiguration, name)
	}
	m.order = append(m.order, name)
	m.entries[name] = artifact
	return nil
}

// Len returns the number of recorded artifacts.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// Names returns configuration names in the order they were added.
func (m *Mapping) Names() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.order...)
}

// Artifacts returns the recorded artifacts in the order they were added.
func (m *Mapping) Artifacts() []Artifact {
	if m == nil {
		return nil
	}
	out := make([]Artifact, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.entries[name])
	}
	return out
}

// Paths returns the configuration to artifact path mapping handed to packagers.
func (m *Mapping) Paths() map[string]string {
	if m == nil {
		return map[string]string{}
	}
	paths := make(map[string]string, len(m.entries))
	for name, artifact := range m.entries {
		paths[name] = artifact.Path
	}
	return paths
}

// Complete reports an error unless every expected configuration, and nothing else,
// has an artifact.
func (m *Mapping) Complete(expected []string) error {
	var missing []string
	want := make(map[string]struct{}, len(expected))
	for _, name := range expected {
		want[name] = struct{}{}
		if _, ok := m.entries[name]; !ok {
			missing = append(missing, name)
		}
	}

	var unexpected []string
	for _, name := range m.order {
		if _, ok := want[name]; !ok {
			unexpected = append(unexpected, name)
		}
	}

	switch {
	case len(missing) > 0:
		return fmt.Errorf("%w: missing %s", ErrIncompleteMapping, strings.Join(missing, ", "))
	case len(unexpected) > 0:
		return fmt.Errorf("%w: unexpected %s", ErrIncompleteMapping, strings.Join(unexpected, ", "))
	}
	return nil
}
