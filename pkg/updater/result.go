package updater

import (
	"fmt"
	"sort"
	"strings"
)

// archiveExtension is the only package format an update can be installed from.
const archiveExtension = ".zip"

// Result is the normalized outcome of one adapter's discovery. It is
// immutable once built.
type Result struct {
	adapter      *Adapter
	data         map[string]any
	original     map[string]any
	valid        bool
	translations *Translations
}

// ResultOption configures NewResult.
type ResultOption func(*Result)

// WithTranslations attaches a translations collection to the Result.
func WithTranslations(t *Translations) ResultOption {
	return func(r *Result) {
		r.translations = t
	}
}

// NewResult normalizes data produced by a's source. Keys are resolved
// through the alias table and values coerced to their canonical types;
// canonical fields missing from data are filled from the installed package
// header. When data holds several spellings of one field, the canonical
// spelling wins, then the first alias in sorted order.
func NewResult(a *Adapter, data map[string]any, opts ...ResultOption) *Result {
	r := &Result{
		adapter:  a,
		data:     make(map[string]any, len(data)+len(fallbackHeaders)),
		original: make(map[string]any, len(data)),
	}
	for _, opt := range opts {
		opt(r)
	}

	keys := make([]string, 0, len(data))
	for k, v := range data {
		r.original[k] = v
		keys = append(keys, k)
	}
	sort.Strings(keys)
	sort.SliceStable(keys, func(i, j int) bool {
		return isCanonicalKey(keys[i]) && !isCanonicalKey(keys[j])
	})

	for _, k := range keys {
		field := NormalizeKey(k)
		if _, seen := r.data[field]; seen {
			continue
		}
		r.data[field] = normalizeValue(field, data[k])
	}

	pkg := a.Package()
	for field, header := range fallbackHeaders {
		if _, ok := r.data[field]; ok {
			continue
		}
		r.data[field] = normalizeValue(field, pkg.Get(header))
	}

	r.valid = !a.IsNoop() && r.Name() != "" && r.Version() != ""

	return r
}

func normalizeValue(field string, value any) any {
	switch field {
	case FieldName, FieldDescription, FieldAuthor, FieldAuthorURL, FieldVersion,
		FieldPackage, FieldRequireWP, FieldRequirePHP, FieldThemeURL:
		s, _ := coerceString(value)
		return s
	case FieldTags:
		return coerceTags(value)
	}
	return value
}

func coerceString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case fmt.Stringer:
		return v.String(), true
	}
	return "", false
}

func coerceTags(value any) []string {
	tags := []string{}
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			tags = append(tags, s)
		}
	}

	switch v := value.(type) {
	case string:
		for _, part := range strings.Split(v, ",") {
			add(part)
		}
	case []string:
		for _, s := range v {
			add(s)
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	}
	return tags
}

// Adapter returns the adapter that produced the Result.
func (r *Result) Adapter() *Adapter { return r.adapter }

// IsValid reports whether the Result names an update candidate: it was not
// produced by the no-op terminal and has both a name and a version.
func (r *Result) IsValid() bool { return r.valid }

// IsReadyUpdate reports whether the Result points at an installable zip
// archive that supersedes the installed version.
func (r *Result) IsReadyUpdate() bool {
	pkg := r.Package()
	return pkg != "" && strings.HasSuffix(pkg, archiveExtension) && r.IsNeedUpdate()
}

// IsNeedUpdate reports whether the installed package reports a version and
// the coordinator's version policy says this Result's version supersedes it.
func (r *Result) IsNeedUpdate() bool {
	installed := headerString(r.adapter.Package(), HeaderVersion)
	if installed == "" {
		return false
	}
	return r.adapter.policy().Supersedes(installed, r.Version())
}

// Get returns the value stored under the normalized key, or "" when absent.
func (r *Result) Get(key string) any {
	if v, ok := r.data[NormalizeKey(key)]; ok {
		return v
	}
	return ""
}

// Has reports whether a value is stored under the normalized key.
func (r *Result) Has(key string) bool {
	_, ok := r.data[NormalizeKey(key)]
	return ok
}

// Lookup is the read-only indexed view of the Result.
func (r *Result) Lookup(key string) (any, bool) {
	v, ok := r.data[NormalizeKey(key)]
	return v, ok
}

func (r *Result) stringField(field string) string {
	s, _ := r.data[field].(string)
	return s
}

func (r *Result) Name() string        { return r.stringField(FieldName) }
func (r *Result) Description() string { return r.stringField(FieldDescription) }
func (r *Result) Author() string      { return r.stringField(FieldAuthor) }
func (r *Result) AuthorURL() string   { return r.stringField(FieldAuthorURL) }
func (r *Result) Version() string     { return r.stringField(FieldVersion) }
func (r *Result) ThemeURL() string    { return r.stringField(FieldThemeURL) }
func (r *Result) Package() string     { return r.stringField(FieldPackage) }
func (r *Result) RequireWP() string   { return r.stringField(FieldRequireWP) }
func (r *Result) RequirePHP() string  { return r.stringField(FieldRequirePHP) }

// Tags returns a copy of the normalized tag list.
func (r *Result) Tags() []string {
	tags, _ := r.data[FieldTags].([]string)
	return append([]string{}, tags...)
}

// Data returns a copy of the normalized field map.
func (r *Result) Data() map[string]any {
	out := make(map[string]any, len(r.data))
	for k, v := range r.data {
		if tags, ok := v.([]string); ok {
			v = append([]string{}, tags...)
		}
		out[k] = v
	}
	return out
}

// OriginalData returns a copy of the payload the Result was built from.
func (r *Result) OriginalData() map[string]any {
	out := make(map[string]any, len(r.original))
	for k, v := range r.original {
		out[k] = v
	}
	return out
}

// Translations returns the Result's translations, creating an empty
// collection on first use when none was supplied.
func (r *Result) Translations() *Translations {
	if r.translations == nil {
		r.translations = NewTranslations(r.adapter.Package().Slug())
	}
	return r.translations
}
