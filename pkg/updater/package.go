package updater

// Header keys an InstalledPackage must answer.
const (
	HeaderName        = "Name"
	HeaderVersion     = "Version"
	HeaderDescription = "Description"
	HeaderThemeURI    = "ThemeURI"
	HeaderAuthor      = "Author"
	HeaderAuthorURI   = "AuthorURI"
	HeaderRequiresWP  = "RequiresWP"
	HeaderRequiresPHP = "RequiresPHP"
	HeaderTags        = "Tags"
	HeaderTextDomain  = "TextDomain"
	HeaderDomainPath  = "DomainPath"
)

// InstalledPackage is the currently installed unit an update is resolved for.
type InstalledPackage interface {
	// Get returns the declared header value for key, or nil when unset.
	// Tags may be returned as a comma separated string or a []string.
	Get(key string) any
	// Slug is the installation identifier (the directory name for themes).
	Slug() string
}

// TransientReader exposes the prior update-cache entry for a slug.
type TransientReader interface {
	LookupTransient(slug string) (Transient, bool)
}
