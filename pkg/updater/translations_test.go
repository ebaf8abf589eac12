package updater

import (
	"reflect"
	"testing"
	"time"
)

func TestNormalizeTranslationDate(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.FixedZone("CET", 3600))

	tests := map[string]struct {
		input any
		want  string
	}{
		"time":            {input: ts, want: "2024-03-01 12:30:00+0100"},
		"time pointer":    {input: &ts, want: "2024-03-01 12:30:00+0100"},
		"nil pointer":     {input: (*time.Time)(nil), want: ""},
		"zero time":       {input: time.Time{}, want: ""},
		"unix int":        {input: 0, want: "1970-01-01 00:00:00+0000"},
		"unix int64":      {input: int64(1709296200), want: "2024-03-01 12:30:00+0000"},
		"rfc3339":         {input: "2024-03-01T12:30:00Z", want: "2024-03-01 12:30:00+0000"},
		"already normal":  {input: "2024-03-01 12:30:00+0100", want: "2024-03-01 12:30:00+0100"},
		"date only":       {input: "2024-03-01", want: "2024-03-01 00:00:00+0000"},
		"garbage":         {input: "yesterday", want: ""},
		"empty":           {input: "", want: ""},
		"unsupported":     {input: 1.5, want: ""},
		"whitespace date": {input: " 2024-03-01 ", want: "2024-03-01 00:00:00+0000"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := normalizeTranslationDate(tc.input); got != tc.want {
				t.Errorf("normalizeTranslationDate(%v) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNewTranslation(t *testing.T) {
	tr := NewTranslation("foo", "de_DE", "2.0", "2024-03-01", "https://example.com/de.zip", true)

	tests := map[string]struct {
		field string
		want  string
	}{
		"type":     {field: "type", want: TranslationType},
		"slug":     {field: "slug", want: "foo"},
		"language": {field: "language", want: "de_DE"},
		"version":  {field: "version", want: "2.0"},
		"updated":  {field: "updated", want: "2024-03-01 00:00:00+0000"},
		"package":  {field: "package", want: "https://example.com/de.zip"},
		"unknown":  {field: "autoupdate", want: ""},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tr.Get(tc.field); got != tc.want {
				t.Errorf("Get(%q) = %q, want %q", tc.field, got, tc.want)
			}
		})
	}

	if !tr.AutoUpdate {
		t.Error("AutoUpdate = false, want true")
	}
}

func TestTranslations(t *testing.T) {
	set := NewTranslations("foo")
	set.Add("fr_FR", NewTranslation("foo", "fr_FR", "2.0", nil, "fr.zip", false))
	set.Add("de_DE", NewTranslation("foo", "de_DE", "2.0", nil, "de.zip", false))
	set.Add("de_DE", NewTranslation("foo", "de_DE", "2.1", nil, "de-2.1.zip", false))

	if set.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", set.Len())
	}
	if got := set.Locales(); !reflect.DeepEqual(got, []string{"de_DE", "fr_FR"}) {
		t.Errorf("Locales() = %v, want [de_DE fr_FR]", got)
	}
	de, ok := set.Get("de_DE")
	if !ok || de.Version != "2.1" {
		t.Errorf("Get(de_DE) = %v, %v; want version 2.1", de, ok)
	}
	if _, ok := set.Get("es_ES"); ok {
		t.Error("Get(es_ES) found a translation")
	}
	all := set.All()
	if len(all) != 2 || all[0].Language != "de_DE" || all[1].Language != "fr_FR" {
		t.Errorf("All() = %v, want de_DE then fr_FR", all)
	}
}
