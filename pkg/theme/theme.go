// Package theme reads the installed theme package an update is resolved
// for.
package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/agentpkg/pkgupdate/pkg/updater"
)

const (
	StyleFile    = "style.css"
	MetadataFile = "theme.yaml"

	// HeaderTemplate names the parent theme of a child theme.
	HeaderTemplate = "Template"
)

// ErrNoHeader is returned by Load when a directory carries neither a
// style.css nor a theme.yaml.
var ErrNoHeader = errors.New("no theme header found")

// Theme is an installed theme package. It implements
// updater.InstalledPackage.
type Theme struct {
	dir     string
	slug    string
	headers map[string]string
}

var _ updater.InstalledPackage = &Theme{}

// Option configures Load and New.
type Option func(*Theme)

// WithSlug overrides the slug derived from the directory name.
func WithSlug(slug string) Option {
	return func(t *Theme) {
		if slug != "" {
			t.slug = slug
		}
	}
}

// WithHeaders overrides individual header values.
func WithHeaders(headers map[string]string) Option {
	return func(t *Theme) {
		for k, v := range headers {
			t.headers[k] = v
		}
	}
}

// New returns a theme with the given headers.
func New(slug string, headers map[string]string, opts ...Option) *Theme {
	t := &Theme{slug: slug, headers: make(map[string]string, len(headers))}
	for k, v := range headers {
		t.headers[k] = v
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Load reads the theme in dir from its style.css header, falling back to
// theme.yaml.
func Load(dir string, opts ...Option) (*Theme, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving theme directory: %w", err)
	}

	headers, err := readHeaders(abs)
	if err != nil {
		return nil, err
	}

	t := New(filepath.Base(abs), headers, opts...)
	t.dir = abs
	return t, nil
}

func readHeaders(dir string) (map[string]string, error) {
	style, err := os.ReadFile(filepath.Join(dir, StyleFile))
	if err == nil {
		return ParseStyleHeader(style), nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", StyleFile, err)
	}

	meta, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", dir, ErrNoHeader)
		}
		return nil, fmt.Errorf("reading %s: %w", MetadataFile, err)
	}
	return ParseMetadata(meta)
}

// Metadata is the theme.yaml layout.
type Metadata struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description,omitempty"`
	ThemeURI    string   `json:"theme_uri,omitempty"`
	Author      string   `json:"author,omitempty"`
	AuthorURI   string   `json:"author_uri,omitempty"`
	RequiresWP  string   `json:"requires_wp,omitempty"`
	RequiresPHP string   `json:"requires_php,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	TextDomain  string   `json:"text_domain,omitempty"`
	DomainPath  string   `json:"domain_path,omitempty"`
	Template    string   `json:"template,omitempty"`
}

// ParseMetadata decodes a theme.yaml document into header values.
func ParseMetadata(data []byte) (map[string]string, error) {
	var m Metadata
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", MetadataFile, err)
	}

	headers := map[string]string{
		updater.HeaderName:        m.Name,
		updater.HeaderVersion:     m.Version,
		updater.HeaderDescription: m.Description,
		updater.HeaderThemeURI:    m.ThemeURI,
		updater.HeaderAuthor:      m.Author,
		updater.HeaderAuthorURI:   m.AuthorURI,
		updater.HeaderRequiresWP:  m.RequiresWP,
		updater.HeaderRequiresPHP: m.RequiresPHP,
		updater.HeaderTags:        strings.Join(m.Tags, ", "),
		updater.HeaderTextDomain:  m.TextDomain,
		updater.HeaderDomainPath:  m.DomainPath,
		HeaderTemplate:            m.Template,
	}
	for k, v := range headers {
		if v == "" {
			delete(headers, k)
		}
	}
	return headers, nil
}

// Get returns the header value for key, or nil when the header is unset.
func (t *Theme) Get(key string) any {
	v, ok := t.headers[key]
	if !ok {
		return nil
	}
	return v
}

// Header returns the header value for key, or "".
func (t *Theme) Header(key string) string { return t.headers[key] }

// Slug returns the installation identifier.
func (t *Theme) Slug() string { return t.slug }

// Dir returns the theme directory, or "" for themes not loaded from disk.
func (t *Theme) Dir() string { return t.dir }

// Stylesheet returns the slug of the theme's stylesheet directory.
func (t *Theme) Stylesheet() string { return t.slug }

// Template returns the parent theme slug, or the stylesheet for themes
// without a parent.
func (t *Theme) Template() string {
	if tmpl := t.headers[HeaderTemplate]; tmpl != "" {
		return tmpl
	}
	return t.Stylesheet()
}

// Request is the theme entry of an update-check request body.
type Request struct {
	Name       string `json:"Name"`
	Title      string `json:"Title"`
	Version    string `json:"Version"`
	Author     string `json:"Author"`
	AuthorURI  string `json:"Author URI"`
	Template   string `json:"Template"`
	Stylesheet string `json:"Stylesheet"`
}

// Request projects the theme onto its update-check request entry.
func (t *Theme) Request() Request {
	return Request{
		Name:       t.headers[updater.HeaderName],
		Title:      t.headers[updater.HeaderName],
		Version:    t.headers[updater.HeaderVersion],
		Author:     t.headers[updater.HeaderAuthor],
		AuthorURI:  t.headers[updater.HeaderAuthorURI],
		Template:   t.Template(),
		Stylesheet: t.Stylesheet(),
	}
}
