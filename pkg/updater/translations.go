package updater

import (
	"sort"
	"strings"
	"time"
)

const (
	// TranslationDateFormat is the layout translation update dates are
	// normalized to.
	TranslationDateFormat = "2006-01-02 15:04:05-0700"

	// TranslationType is the package type translations are reported for.
	TranslationType = "theme"
)

// dateLayouts are tried in order when a translation date is given as a string.
var dateLayouts = []string{
	time.RFC3339,
	TranslationDateFormat,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
}

// Translation is the metadata of one language pack offered for an update.
type Translation struct {
	Type       string `json:"type" toml:"type"`
	Slug       string `json:"slug" toml:"slug"`
	Language   string `json:"language" toml:"language"`
	Version    string `json:"version" toml:"version"`
	Updated    string `json:"updated" toml:"updated"`
	Package    string `json:"package" toml:"package"`
	AutoUpdate bool   `json:"autoupdate" toml:"autoupdate"`
}

// NewTranslation builds translation metadata. updated may be a time.Time, a
// unix timestamp, or a date string; anything unparseable becomes "".
func NewTranslation(slug, locale, version string, updated any, packageURL string, autoUpdate bool) *Translation {
	return &Translation{
		Type:       TranslationType,
		Slug:       slug,
		Language:   locale,
		Version:    version,
		Updated:    normalizeTranslationDate(updated),
		Package:    packageURL,
		AutoUpdate: autoUpdate,
	}
}

// Get returns a metadata field by its serialized name, or "".
func (t *Translation) Get(name string) string {
	switch name {
	case "type":
		return t.Type
	case "slug":
		return t.Slug
	case "language":
		return t.Language
	case "version":
		return t.Version
	case "updated":
		return t.Updated
	case "package":
		return t.Package
	}
	return ""
}

func normalizeTranslationDate(updated any) string {
	switch v := updated.(type) {
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(TranslationDateFormat)
	case *time.Time:
		if v == nil {
			return ""
		}
		return normalizeTranslationDate(*v)
	case int:
		return time.Unix(int64(v), 0).UTC().Format(TranslationDateFormat)
	case int64:
		return time.Unix(v, 0).UTC().Format(TranslationDateFormat)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return ""
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.Format(TranslationDateFormat)
			}
		}
	}
	return ""
}

// Translations is the locale-keyed collection of translations attached to
// a Result.
type Translations struct {
	slug  string
	items map[string]*Translation
}

// NewTranslations returns an empty collection for slug.
func NewTranslations(slug string) *Translations {
	return &Translations{slug: slug, items: make(map[string]*Translation)}
}

// Slug returns the package slug the collection belongs to.
func (t *Translations) Slug() string { return t.slug }

// Add stores translation under locale, replacing any previous entry.
func (t *Translations) Add(locale string, translation *Translation) {
	t.items[locale] = translation
}

// Get returns the translation for locale.
func (t *Translations) Get(locale string) (*Translation, bool) {
	tr, ok := t.items[locale]
	return tr, ok
}

// Locales returns the stored locales in sorted order.
func (t *Translations) Locales() []string {
	locales := make([]string, 0, len(t.items))
	for locale := range t.items {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	return locales
}

// All returns the translations ordered by locale.
func (t *Translations) All() []*Translation {
	out := make([]*Translation, 0, len(t.items))
	for _, locale := range t.Locales() {
		out = append(out, t.items[locale])
	}
	return out
}

// Len returns the number of stored translations.
func (t *Translations) Len() int { return len(t.items) }
