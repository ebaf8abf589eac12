package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/agentpkg/pkgupdate/pkg/updater"
)

// ManifestFileName is the manifest filename of a package directory.
const ManifestFileName = "pkgupdate.toml"

// Config is the pkgupdate.toml manifest: the installed package and the
// adapters that resolve its updates.
type Config struct {
	Package  PackageConfig   `toml:"package"`
	Adapters []AdapterConfig `toml:"adapters,omitempty"`
}

type PackageConfig struct {
	// Dir is the package directory, relative to the manifest. Defaults to
	// the manifest's directory.
	Dir string `toml:"dir,omitempty"`
	// Slug overrides the directory name as installation identifier.
	Slug string `toml:"slug,omitempty"`
	// Headers override values read from the package header.
	Headers map[string]string `toml:"headers,omitempty"`
}

type AdapterConfig struct {
	// Type is a registered adapter type name, e.g. "github-release".
	Type string `toml:"type"`
	// ID overrides the id derived from the adapter type.
	ID string `toml:"id,omitempty"`
	// Priority is passed through updater.ParsePriority; lower runs first.
	Priority any `toml:"priority,omitempty"`
	// Lock prevents the id from being replaced after registration.
	Lock bool `toml:"lock,omitempty"`
	// Settings are decoded by the adapter type.
	Settings map[string]any `toml:"settings,omitempty"`
}

func UnmarshalConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	err := toml.Unmarshal(data, cfg)

	return cfg, err
}

func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate reports every adapter entry with a missing or unknown type and
// every id declared twice.
func (c *Config) Validate() error {
	var errs []error
	ids := make(map[string]int)
	for i, a := range c.Adapters {
		if a.Type == "" {
			errs = append(errs, fmt.Errorf("adapters[%d]: type is required", i))
		} else if _, ok := updater.NewSource(a.Type); !ok {
			errs = append(errs, fmt.Errorf("adapters[%d]: unknown type %q (known: %s)",
				i, a.Type, strings.Join(updater.RegisteredTypes(), ", ")))
		}
		if a.ID == "" {
			continue
		}
		if prev, ok := ids[a.ID]; ok {
			errs = append(errs, fmt.Errorf("adapters[%d]: id %q already declared by adapters[%d]", i, a.ID, prev))
			continue
		}
		ids[a.ID] = i
	}
	return errors.Join(errs...)
}

func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	cfg, err := UnmarshalConfig(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func SaveFile(path string, cfg *Config) error {
	data, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
