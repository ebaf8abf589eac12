package updater

import (
	"fmt"
	"sort"
)

// Factory builds a fresh, unconfigured Source.
type Factory func() Source

// registry tracks Source factories by type name
type registry map[string]Factory

var (
	defaultRegistry = make(registry)
)

// NoopType is the registered type name of the no-op terminal.
const NoopType = "noop"

func init() {
	_ = RegisterType(NoopType, func() Source { return &Noop{} })
}

// RegisteredTypes returns a sorted list of all registered type names.
func RegisteredTypes() []string {
	names := make([]string, 0, len(defaultRegistry))
	for name := range defaultRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewSource builds a Source from a registered type name.
func NewSource(typeName string) (Source, bool) {
	factory, ok := defaultRegistry[typeName]
	if !ok {
		return nil, false
	}
	return factory(), true
}

// RegisterType registers a Source factory under a type name, so that
// manifests and Coordinator.Add can build it by name.
// Note: this is NOT thread safe, and should only be called in init()
func RegisterType(typeName string, factory Factory) error {
	if _, ok := defaultRegistry[typeName]; ok {
		return fmt.Errorf("failed to register adapter type %q: other factory already registered", typeName)
	}

	defaultRegistry[typeName] = factory

	return nil
}
