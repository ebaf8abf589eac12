package theme

import (
	"regexp"
	"strings"

	"github.com/agentpkg/pkgupdate/pkg/updater"
)

// headerScanLimit bounds how much of style.css is searched for headers.
const headerScanLimit = 8 * 1024

// styleHeaders maps style.css header labels onto header keys.
var styleHeaders = map[string]string{
	"Theme Name":        updater.HeaderName,
	"Theme URI":         updater.HeaderThemeURI,
	"Description":       updater.HeaderDescription,
	"Author":            updater.HeaderAuthor,
	"Author URI":        updater.HeaderAuthorURI,
	"Version":           updater.HeaderVersion,
	"Template":          HeaderTemplate,
	"Tags":              updater.HeaderTags,
	"Text Domain":       updater.HeaderTextDomain,
	"Domain Path":       updater.HeaderDomainPath,
	"Requires at least": updater.HeaderRequiresWP,
	"Requires PHP":      updater.HeaderRequiresPHP,
}

var headerPatterns = func() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(styleHeaders))
	for label, key := range styleHeaders {
		patterns[key] = regexp.MustCompile(`(?mi)^[ \t/*#@]*` + regexp.QuoteMeta(label) + `:(.*)$`)
	}
	return patterns
}()

var commentClose = regexp.MustCompile(`\s*(?:\*/|\?>).*$`)

// ParseStyleHeader extracts header values from the comment block at the
// top of a style.css file. Only headers with a non-empty value are kept.
func ParseStyleHeader(data []byte) map[string]string {
	if len(data) > headerScanLimit {
		data = data[:headerScanLimit]
	}
	text := strings.ReplaceAll(string(data), "\r", "\n")

	headers := make(map[string]string)
	for key, pattern := range headerPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(commentClose.ReplaceAllString(m[1], ""))
		if value != "" {
			headers[key] = value
		}
	}
	return headers
}
