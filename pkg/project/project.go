package project

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentpkg/pkgupdate/pkg/config"
	"github.com/agentpkg/pkgupdate/pkg/store"
)

const ManifestFile = config.ManifestFileName

// ErrNoManifest is returned by Find when no manifest exists in the start
// directory or any of its parents.
var ErrNoManifest = errors.New("no " + ManifestFile + " found")

// IgnoredEntries are the developer-local files that should not be committed.
var IgnoredEntries = []string{
	config.LocalConfigFile,
	store.DefaultRoot + "/",
}

// InferSlug derives an installation slug from the given directory path.
func InferSlug(dir string) string {
	return strings.ToLower(filepath.Base(filepath.Clean(dir)))
}

// Init creates a pkgupdate.toml manifest in dir. A nil cfg writes a manifest
// with the slug inferred from dir and no adapters. Returns an error if the
// manifest already exists.
func Init(dir string, cfg *config.Config) error {
	path := filepath.Join(dir, ManifestFile)

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", ManifestFile)
	}

	if cfg == nil {
		cfg = &config.Config{Package: config.PackageConfig{Slug: InferSlug(dir)}}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}

	return config.SaveFile(path, cfg)
}

// Find walks up from start and returns the path of the first manifest found.
func Find(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, ManifestFile)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoManifest
		}
		dir = parent
	}
}

// PackageDir resolves the package directory declared by the manifest at
// manifestPath.
func PackageDir(manifestPath string, cfg *config.Config) string {
	base := filepath.Dir(manifestPath)
	if cfg.Package.Dir == "" {
		return base
	}
	if filepath.IsAbs(cfg.Package.Dir) {
		return cfg.Package.Dir
	}
	return filepath.Join(base, cfg.Package.Dir)
}

// EnsureGitignore appends each entry missing from the .gitignore file in dir
// and returns the entries it added.
func EnsureGitignore(dir string, entries []string) ([]string, error) {
	path := filepath.Join(dir, ".gitignore")

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	present := make(map[string]bool)
	sc := bufio.NewScanner(bytes.NewReader(existing))
	for sc.Scan() {
		present[strings.TrimSpace(sc.Text())] = true
	}

	var buf bytes.Buffer
	var added []string
	for _, entry := range entries {
		if present[entry] {
			continue
		}
		present[entry] = true
		added = append(added, entry)
		buf.WriteString(entry + "\n")
	}
	if len(added) == 0 {
		return nil, nil
	}

	out := existing
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	out = append(out, buf.Bytes()...)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}

	return added, nil
}
