package updater

import "strings"

// Canonical Result fields.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldAuthor      = "author"
	FieldAuthorURL   = "author_url"
	FieldVersion     = "version"
	FieldPackage     = "package"
	FieldTags        = "tags"
	FieldRequireWP   = "require_wp"
	FieldRequirePHP  = "require_php"
	FieldThemeURL    = "theme_url"
)

// CanonicalFields lists every canonical Result field.
var CanonicalFields = []string{
	FieldName,
	FieldDescription,
	FieldAuthor,
	FieldAuthorURL,
	FieldVersion,
	FieldPackage,
	FieldTags,
	FieldRequireWP,
	FieldRequirePHP,
	FieldThemeURL,
}

// keyAliases maps the spellings sources use onto canonical fields. Lookups
// try the key verbatim first, then lower-cased.
var keyAliases = map[string]string{
	"description": FieldDescription,

	"name":        FieldName,
	"title":       FieldName,
	"theme_name":  FieldName,
	"theme_title": FieldName,

	"theme_url": FieldThemeURL,
	"theme_uri": FieldThemeURL,
	"themeuri":  FieldThemeURL,
	"themeurl":  FieldThemeURL,

	"author":      FieldAuthor,
	"author_name": FieldAuthor,
	"authorname":  FieldAuthor,

	"author_url": FieldAuthorURL,
	"author_uri": FieldAuthorURL,
	"authoruri":  FieldAuthorURL,
	"authorurl":  FieldAuthorURL,

	"version":       FieldVersion,
	"theme_version": FieldVersion,
	"new_version":   FieldVersion,

	"package":     FieldPackage,
	"package_url": FieldPackage,
	"zip_url":     FieldPackage,

	"tags": FieldTags,
	"tag":  FieldTags,

	"require_wp":         FieldRequireWP,
	"requirewp":          FieldRequireWP,
	"requireswp":         FieldRequireWP,
	"requires_wp":        FieldRequireWP,
	"requiredwp":         FieldRequireWP,
	"required_wp":        FieldRequireWP,
	"requireswordpress":  FieldRequireWP,
	"requires_wordpress": FieldRequireWP,
	"requirewordpress":   FieldRequireWP,
	"require_wordpress":  FieldRequireWP,
	"requiredwordpress":  FieldRequireWP,
	"required_wordpress": FieldRequireWP,

	"requiresphp":  FieldRequirePHP,
	"requires_php": FieldRequirePHP,
	"requirephp":   FieldRequirePHP,
	"require_php":  FieldRequirePHP,
	"requiredphp":  FieldRequirePHP,
	"required_php": FieldRequirePHP,
}

// fallbackHeaders maps canonical fields onto the installed package header
// used when a source did not report the field. package has no local
// equivalent.
var fallbackHeaders = map[string]string{
	FieldName:        HeaderName,
	FieldDescription: HeaderDescription,
	FieldThemeURL:    HeaderThemeURI,
	FieldAuthor:      HeaderAuthor,
	FieldAuthorURL:   HeaderAuthorURI,
	FieldRequireWP:   HeaderRequiresWP,
	FieldRequirePHP:  HeaderRequiresPHP,
	FieldTags:        HeaderTags,
	FieldVersion:     HeaderVersion,
}

// NormalizeKey resolves key through the alias table. Unknown keys are
// returned unchanged.
func NormalizeKey(key string) string {
	if canonical, ok := keyAliases[key]; ok {
		return canonical
	}
	if canonical, ok := keyAliases[strings.ToLower(key)]; ok {
		return canonical
	}
	return key
}

// KeyAliases returns a copy of the alias table.
func KeyAliases() map[string]string {
	out := make(map[string]string, len(keyAliases))
	for k, v := range keyAliases {
		out[k] = v
	}
	return out
}

func isCanonicalKey(key string) bool {
	_, ok := fallbackHeaders[key]
	return ok || key == FieldPackage
}
