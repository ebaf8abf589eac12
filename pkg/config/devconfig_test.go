package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentpkg/pkgupdate/pkg/httpclient"
	"github.com/agentpkg/pkgupdate/pkg/versions"
)

func TestLoadDevConfig(t *testing.T) {
	tests := map[string]struct {
		global string
		local  string
		env    map[string]string
		flags  Flags
		want   DevConfig
	}{
		"no config files returns defaults": {
			want: DevConfig{Compare: "newer", Timeout: httpclient.DefaultTimeout},
		},
		"local merges over global": {
			global: "github_token = \"global\"\ncompare = \"differs\"\n",
			local:  "github_token = \"local\"\n",
			want:   DevConfig{GitHubToken: "local", Compare: "differs", Timeout: httpclient.DefaultTimeout},
		},
		"only global config": {
			global: "cache_dir = \"/tmp/cache\"\ntimeout = \"30s\"\n",
			want:   DevConfig{Compare: "newer", CacheDir: "/tmp/cache", Timeout: 30 * time.Second},
		},
		"environment overrides files": {
			local: "compare = \"newer\"\n",
			env:   map[string]string{"PKGUPDATE_COMPARE": "differs"},
			want:  DevConfig{Compare: "differs", Timeout: httpclient.DefaultTimeout},
		},
		"GITHUB_TOKEN is a fallback": {
			env:  map[string]string{"GITHUB_TOKEN": "gh"},
			want: DevConfig{GitHubToken: "gh", Compare: "newer", Timeout: httpclient.DefaultTimeout},
		},
		"prefixed token wins over GITHUB_TOKEN": {
			env:  map[string]string{"PKGUPDATE_GITHUB_TOKEN": "own", "GITHUB_TOKEN": "gh"},
			want: DevConfig{GitHubToken: "own", Compare: "newer", Timeout: httpclient.DefaultTimeout},
		},
		"flags override everything": {
			global: "compare = \"differs\"\ncache_dir = \"/a\"\n",
			env:    map[string]string{"PKGUPDATE_CACHE_DIR": "/b"},
			flags:  Flags{Compare: "newer", CacheDir: "/c", Timeout: time.Minute},
			want:   DevConfig{Compare: "newer", CacheDir: "/c", Timeout: time.Minute},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"PKGUPDATE_GITHUB_TOKEN", "GITHUB_TOKEN", "PKGUPDATE_COMPARE", "PKGUPDATE_CACHE_DIR", "PKGUPDATE_TIMEOUT"} {
				t.Setenv(k, "")
			}
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			dir := t.TempDir()
			globalPath := filepath.Join(dir, "global-config.toml")
			localPath := filepath.Join(dir, LocalConfigFile)
			if tc.global != "" {
				writeTestConfig(t, globalPath, tc.global)
			}
			if tc.local != "" {
				writeTestConfig(t, localPath, tc.local)
			}

			cfg, err := loadDevConfig(tc.flags, globalPath, localPath)
			if err != nil {
				t.Fatalf("loadDevConfig() error = %v", err)
			}
			if *cfg != tc.want {
				t.Errorf("loadDevConfig() = %+v, want %+v", *cfg, tc.want)
			}
		})
	}
}

func TestLoadDevConfigRejectsUnknownPolicy(t *testing.T) {
	t.Setenv("PKGUPDATE_COMPARE", "")
	dir := t.TempDir()
	localPath := filepath.Join(dir, LocalConfigFile)
	writeTestConfig(t, localPath, "compare = \"older\"\n")

	if _, err := loadDevConfig(Flags{}, filepath.Join(dir, "missing.toml"), localPath); err == nil {
		t.Fatal("loadDevConfig() error = nil, want policy error")
	}
}

func TestLoadDevConfigMalformedLocal(t *testing.T) {
	dir := t.TempDir()
	localPath := filepath.Join(dir, LocalConfigFile)
	writeTestConfig(t, localPath, "compare = \n")

	if _, err := loadDevConfig(Flags{}, filepath.Join(dir, "missing.toml"), localPath); err == nil {
		t.Fatal("loadDevConfig() error = nil, want parse error")
	}
}

func TestDevConfigPolicy(t *testing.T) {
	cfg := &DevConfig{Compare: "Differs"}
	p, err := cfg.Policy()
	if err != nil {
		t.Fatalf("Policy() error = %v", err)
	}
	if p != versions.PolicyDiffers {
		t.Errorf("Policy() = %q, want %q", p, versions.PolicyDiffers)
	}
}

func TestWriteLocalDevConfig(t *testing.T) {
	t.Setenv("PKGUPDATE_GITHUB_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "")
	dir := t.TempDir()

	if err := WriteLocalDevConfig(dir, &DevConfig{GitHubToken: "secret"}); err != nil {
		t.Fatalf("WriteLocalDevConfig() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, LocalConfigFile))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("permissions = %o, want 600", perm)
	}

	cfg, err := loadDevConfig(Flags{}, filepath.Join(dir, "missing.toml"), filepath.Join(dir, LocalConfigFile))
	if err != nil {
		t.Fatalf("loadDevConfig() error = %v", err)
	}
	if cfg.GitHubToken != "secret" {
		t.Errorf("GitHubToken = %q, want %q", cfg.GitHubToken, "secret")
	}
}

func writeTestConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
