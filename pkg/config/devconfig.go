package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/agentpkg/pkgupdate/pkg/httpclient"
	"github.com/agentpkg/pkgupdate/pkg/versions"
)

const (
	// LocalConfigFile is the project-local developer config filename.
	LocalConfigFile = "pkgupdate.local.toml"

	// GlobalDirName is the per-user directory under the home directory.
	GlobalDirName = ".pkgupdate"

	// EnvPrefix prefixes the environment variables read into DevConfig.
	EnvPrefix = "PKGUPDATE"
)

// DevConfig holds developer-specific configuration that is NOT committed
// to version control. It is resolved with Viper precedence:
// CLI flags > PKGUPDATE_* environment > pkgupdate.local.toml (project-local)
// > ~/.pkgupdate/config.toml (global).
type DevConfig struct {
	GitHubToken string        `toml:"github_token,omitempty" mapstructure:"github_token"`
	Compare     string        `toml:"compare,omitempty" mapstructure:"compare"`
	CacheDir    string        `toml:"cache_dir,omitempty" mapstructure:"cache_dir"`
	Timeout     time.Duration `toml:"timeout,omitempty" mapstructure:"timeout"`
}

// Flags carries the CLI flag values; zero values are not applied.
type Flags struct {
	Compare  string
	CacheDir string
	Timeout  time.Duration
}

// Policy parses Compare into a version policy.
func (c *DevConfig) Policy() (versions.Policy, error) {
	return versions.ParsePolicy(c.Compare)
}

// LoadDevConfig resolves developer configuration using Viper's merge semantics.
func LoadDevConfig(flags Flags) (*DevConfig, error) {
	dir, err := globalDir()
	if err != nil {
		return nil, err
	}
	return loadDevConfig(flags, filepath.Join(dir, "config.toml"), LocalConfigFile)
}

// loadDevConfig is the internal implementation that accepts explicit paths,
// making it testable without touching the real home directory.
func loadDevConfig(flags Flags, globalPath, localPath string) (*DevConfig, error) {
	v := viper.New()
	v.SetConfigType("toml")

	v.SetDefault("github_token", "")
	v.SetDefault("compare", string(versions.PolicyNewer))
	v.SetDefault("cache_dir", "")
	v.SetDefault("timeout", httpclient.DefaultTimeout)

	// Lowest priority: global config
	v.SetConfigFile(globalPath)
	// Read global config; ignore if missing.
	_ = v.ReadInConfig()

	// Higher priority: project-local config
	if _, err := os.Stat(localPath); err == nil {
		v.SetConfigFile(localPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", localPath, err)
		}
	}

	// Higher still: environment. GITHUB_TOKEN is honored as a fallback.
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	if err := v.BindEnv("github_token", EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, fmt.Errorf("binding environment: %w", err)
	}

	// Highest priority: CLI flags
	if flags.Compare != "" {
		v.Set("compare", flags.Compare)
	}
	if flags.CacheDir != "" {
		v.Set("cache_dir", flags.CacheDir)
	}
	if flags.Timeout > 0 {
		v.Set("timeout", flags.Timeout)
	}

	cfg := &DevConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling dev config: %w", err)
	}
	if _, err := cfg.Policy(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func globalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}
	return filepath.Join(home, GlobalDirName), nil
}

// WriteLocalDevConfig persists developer config to pkgupdate.local.toml in
// the given package directory.
func WriteLocalDevConfig(dir string, cfg *DevConfig) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling dev config: %w", err)
	}

	path := filepath.Join(dir, LocalConfigFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}
