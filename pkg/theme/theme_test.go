package theme

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/agentpkg/pkgupdate/pkg/updater"
)

const fooStyle = `/*
Theme Name: Foo
Theme URI: https://example.com/foo
Author: Jane Doe
Author URI: https://example.com/jane
Description: A theme for testing.
Version: 1.2.0
Requires at least: 6.0
Requires PHP: 7.4
Tags: blog, dark, two-columns
Text Domain: foo
*/

body { color: #000; }
`

func TestParseStyleHeader(t *testing.T) {
	tests := map[string]struct {
		input string
		want  map[string]string
	}{
		"full header": {
			input: fooStyle,
			want: map[string]string{
				updater.HeaderName:        "Foo",
				updater.HeaderThemeURI:    "https://example.com/foo",
				updater.HeaderAuthor:      "Jane Doe",
				updater.HeaderAuthorURI:   "https://example.com/jane",
				updater.HeaderDescription: "A theme for testing.",
				updater.HeaderVersion:     "1.2.0",
				updater.HeaderRequiresWP:  "6.0",
				updater.HeaderRequiresPHP: "7.4",
				updater.HeaderTags:        "blog, dark, two-columns",
				updater.HeaderTextDomain:  "foo",
			},
		},
		"starred single line": {
			input: "/* Theme Name: Bar */\n",
			want:  map[string]string{updater.HeaderName: "Bar"},
		},
		"starred block": {
			input: "/**\n * Theme Name: Child\n * Template: foo\n * Version: 0.1\n */\n",
			want: map[string]string{
				updater.HeaderName:    "Child",
				HeaderTemplate:        "foo",
				updater.HeaderVersion: "0.1",
			},
		},
		"case insensitive label": {
			input: "/*\ntheme name: Lower\nVERSION: 2\n*/",
			want: map[string]string{
				updater.HeaderName:    "Lower",
				updater.HeaderVersion: "2",
			},
		},
		"windows line endings": {
			input: "/*\r\nTheme Name: Crlf\r\nVersion: 3.0\r\n*/\r\n",
			want: map[string]string{
				updater.HeaderName:    "Crlf",
				updater.HeaderVersion: "3.0",
			},
		},
		"empty values dropped": {
			input: "/*\nTheme Name:\nVersion:   \n*/",
			want:  map[string]string{},
		},
		"no header": {
			input: "body { margin: 0; }",
			want:  map[string]string{},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := ParseStyleHeader([]byte(tc.input))
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ParseStyleHeader() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseStyleHeaderScanLimit(t *testing.T) {
	input := "/*\nTheme Name: Foo\n*/\n" + strings.Repeat(" ", headerScanLimit) + "\n/* Version: 9.9 */"

	got := ParseStyleHeader([]byte(input))
	if got[updater.HeaderName] != "Foo" {
		t.Errorf("Name = %q, want %q", got[updater.HeaderName], "Foo")
	}
	if _, ok := got[updater.HeaderVersion]; ok {
		t.Error("header beyond the scan limit was parsed")
	}
}

func TestParseMetadata(t *testing.T) {
	tests := map[string]struct {
		input   string
		want    map[string]string
		wantErr bool
	}{
		"full": {
			input: "name: Foo\nversion: 1.0.0\nauthor: Jane\ntags: [blog, dark]\nrequires_php: \"8.1\"\ntemplate: parent\n",
			want: map[string]string{
				updater.HeaderName:        "Foo",
				updater.HeaderVersion:     "1.0.0",
				updater.HeaderAuthor:      "Jane",
				updater.HeaderTags:        "blog, dark",
				updater.HeaderRequiresPHP: "8.1",
				HeaderTemplate:            "parent",
			},
		},
		"empty": {
			input: "",
			want:  map[string]string{},
		},
		"malformed": {
			input:   "name: [unclosed\n",
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseMetadata([]byte(tc.input))
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseMetadata() error = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ParseMetadata() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	tests := map[string]struct {
		files     map[string]string
		opts      []Option
		wantSlug  string
		wantName  string
		wantErr   error
		wantError bool
	}{
		"style.css": {
			files:    map[string]string{StyleFile: fooStyle},
			wantSlug: "foo",
			wantName: "Foo",
		},
		"style.css preferred": {
			files: map[string]string{
				StyleFile:    fooStyle,
				MetadataFile: "name: Other\nversion: 9.0.0\n",
			},
			wantSlug: "foo",
			wantName: "Foo",
		},
		"theme.yaml fallback": {
			files:    map[string]string{MetadataFile: "name: Yaml\nversion: 1.0.0\n"},
			wantSlug: "foo",
			wantName: "Yaml",
		},
		"slug and header overrides": {
			files:    map[string]string{StyleFile: fooStyle},
			opts:     []Option{WithSlug("custom"), WithHeaders(map[string]string{updater.HeaderName: "Renamed"})},
			wantSlug: "custom",
			wantName: "Renamed",
		},
		"no header": {
			files:   map[string]string{"index.php": "<?php"},
			wantErr: ErrNoHeader,
		},
		"bad metadata": {
			files:     map[string]string{MetadataFile: "name: [unclosed\n"},
			wantError: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "foo")
			if err := os.MkdirAll(dir, 0o755); err != nil {
				t.Fatal(err)
			}
			for file, content := range tc.files {
				if err := os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			th, err := Load(dir, tc.opts...)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Load() error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if tc.wantError {
				if err == nil {
					t.Fatal("Load() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			if th.Slug() != tc.wantSlug {
				t.Errorf("Slug() = %q, want %q", th.Slug(), tc.wantSlug)
			}
			if th.Get(updater.HeaderName) != tc.wantName {
				t.Errorf("Get(Name) = %v, want %q", th.Get(updater.HeaderName), tc.wantName)
			}
			if th.Dir() != dir {
				t.Errorf("Dir() = %q, want %q", th.Dir(), dir)
			}
		})
	}
}

func TestGetUnsetHeader(t *testing.T) {
	th := New("foo", map[string]string{updater.HeaderName: "Foo"})

	if got := th.Get(updater.HeaderVersion); got != nil {
		t.Errorf("Get(Version) = %v, want nil", got)
	}
	if got := th.Header(updater.HeaderVersion); got != "" {
		t.Errorf("Header(Version) = %q, want empty", got)
	}
}

func TestRequest(t *testing.T) {
	tests := map[string]struct {
		theme *Theme
		want  Request
	}{
		"parent theme": {
			theme: New("foo", ParseStyleHeader([]byte(fooStyle))),
			want: Request{
				Name:       "Foo",
				Title:      "Foo",
				Version:    "1.2.0",
				Author:     "Jane Doe",
				AuthorURI:  "https://example.com/jane",
				Template:   "foo",
				Stylesheet: "foo",
			},
		},
		"child theme": {
			theme: New("foo-child", map[string]string{updater.HeaderName: "Child", HeaderTemplate: "foo"}),
			want: Request{
				Name:       "Child",
				Title:      "Child",
				Template:   "foo",
				Stylesheet: "foo-child",
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tc.theme.Request(); got != tc.want {
				t.Errorf("Request() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestRequestJSON(t *testing.T) {
	data, err := json.Marshal(New("foo", map[string]string{updater.HeaderAuthorURI: "https://example.com"}).Request())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"Author URI":"https://example.com"`) {
		t.Errorf("Request JSON = %s, missing Author URI key", data)
	}
}

func TestThemeAsInstalledPackage(t *testing.T) {
	th := New("foo", ParseStyleHeader([]byte(fooStyle)))
	c := updater.NewCoordinator(th)
	r := updater.NewResult(updater.NewAdapter(c, &updater.Noop{}), map[string]any{"version": "2.0.0"})

	if r.Name() != "Foo" {
		t.Errorf("Name() = %q, want %q", r.Name(), "Foo")
	}
	if want := []string{"blog", "dark", "two-columns"}; !reflect.DeepEqual(r.Tags(), want) {
		t.Errorf("Tags() = %v, want %v", r.Tags(), want)
	}
	if !r.IsNeedUpdate() {
		t.Error("IsNeedUpdate() = false for 1.2.0 -> 2.0.0")
	}
}
