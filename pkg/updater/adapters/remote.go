package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/agentpkg/pkgupdate/pkg/httpclient"
	"github.com/agentpkg/pkgupdate/pkg/updater"
)

// Document formats understood by Remote.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// translationsKey holds the language packs of a remote document.
const translationsKey = "translations"

// Remote resolves updates from a metadata document served over HTTP.
// Unquoted numbers in YAML and TOML documents keep their literal text, so
// version: 1.10 resolves to "1.10".
type Remote struct {
	URL string `mapstructure:"url"`
	// Format is json, yaml or toml. It defaults to the URL extension, then
	// json.
	Format string `mapstructure:"format"`
	// Path selects the payload within the document, in gjson path syntax.
	Path    string            `mapstructure:"path"`
	Headers map[string]string `mapstructure:"headers"`

	client httpclient.Client
}

var (
	_ updater.Describer = &Remote{}
	_ HTTPClientSetter  = &Remote{}
)

func (r *Remote) Describe() updater.Info {
	return updater.Info{
		Name:        "Remote document",
		Version:     updater.Version,
		Description: "Resolves updates from a remote metadata document.",
	}
}

// Configure decodes url, format, path and headers.
func (r *Remote) Configure(settings map[string]any) error {
	if err := decodeSettings(settings, r); err != nil {
		return err
	}
	switch r.DocumentFormat() {
	case FormatJSON, FormatYAML, FormatTOML:
		return nil
	}
	return fmt.Errorf("unsupported document format %q", r.Format)
}

// SetHTTPClient replaces the transport.
func (r *Remote) SetHTTPClient(c httpclient.Client) {
	r.client = c
}

// DocumentFormat returns the effective document format.
func (r *Remote) DocumentFormat() string {
	if r.Format != "" {
		return strings.ToLower(r.Format)
	}
	switch strings.ToLower(path.Ext(strings.SplitN(r.URL, "?", 2)[0])) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	}
	return FormatJSON
}

func (r *Remote) Discover(ctx context.Context, a *updater.Adapter) (*updater.Result, error) {
	if r.URL == "" {
		return nil, errors.New("remote source requires a url")
	}
	if r.client == nil {
		r.client = httpclient.NewDefaultClient(httpclient.DefaultTimeout)
	}

	header := http.Header{}
	switch r.DocumentFormat() {
	case FormatYAML:
		header.Set("Accept", "application/yaml, text/yaml")
	case FormatTOML:
		header.Set("Accept", "application/toml")
	}
	for k, v := range r.Headers {
		header.Set(k, v)
	}

	body, err := r.client.Get(ctx, r.URL, header)
	if err != nil {
		if httpclient.IsNotFound(err) {
			a.Logger().V(1).Info("Remote document not found", "url", r.URL)
			return nil, nil
		}
		return nil, fmt.Errorf("fetching remote document: %w", err)
	}

	payload, err := decodeDocument(r.DocumentFormat(), body, r.Path)
	if err != nil {
		return nil, fmt.Errorf("decoding remote document %s: %w", r.URL, err)
	}
	if payload == nil {
		return nil, nil
	}

	var opts []updater.ResultOption
	if raw, ok := payload[translationsKey]; ok {
		delete(payload, translationsKey)
		opts = append(opts, updater.WithTranslations(parseTranslations(a.Package().Slug(), raw)))
	}
	return updater.NewResult(a, payload, opts...), nil
}

// decodeDocument converts body to JSON, selects the payload at selector,
// and decodes it. A selector matching nothing yields a nil payload.
func decodeDocument(format string, body []byte, selector string) (map[string]any, error) {
	doc, err := toJSON(format, body)
	if err != nil {
		return nil, err
	}

	if selector != "" {
		res := gjson.GetBytes(doc, selector)
		if !res.Exists() {
			return nil, nil
		}
		if !res.IsObject() {
			return nil, fmt.Errorf("path %q does not select an object", selector)
		}
		doc = []byte(res.Raw)
	}

	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("document is not an object: %w", err)
	}
	return payload, nil
}

func toJSON(format string, body []byte) ([]byte, error) {
	switch format {
	case FormatJSON:
		if !gjson.ValidBytes(body) {
			return nil, errors.New("invalid JSON")
		}
		return body, nil
	case FormatYAML:
		doc, err := yamlToJSON(body)
		if err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
		return doc, nil
	case FormatTOML:
		doc, err := tomlToJSON(body)
		if err != nil {
			return nil, fmt.Errorf("parsing TOML: %w", err)
		}
		return doc, nil
	}
	return nil, fmt.Errorf("unsupported document format %q", format)
}

// parseTranslations reads a list of language pack entries, each with
// language, version, updated, package and autoupdate keys.
func parseTranslations(slug string, raw any) *updater.Translations {
	set := updater.NewTranslations(slug)
	items, _ := raw.([]any)
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		language := stringValue(entry["language"])
		if language == "" {
			continue
		}
		set.Add(language, updater.NewTranslation(
			slug,
			language,
			stringValue(entry["version"]),
			dateValue(entry["updated"]),
			stringValue(entry["package"]),
			boolValue(entry["autoupdate"]),
		))
	}
	return set
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	}
	return ""
}

func dateValue(v any) any {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i
		}
	}
	return v
}

func boolValue(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, _ := strconv.ParseBool(b)
		return parsed
	case json.Number:
		return b.String() != "0"
	}
	return false
}
