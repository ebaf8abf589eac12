package updater

// Keys of a Transient, the per-slug entry of the host update cache.
const (
	TransientTheme       = "theme"
	TransientNewVersion  = "new_version"
	TransientURL         = "url"
	TransientPackage     = "package"
	TransientRequires    = "requires"
	TransientRequiresPHP = "requires_php"
)

// Transient is one update-cache entry.
type Transient map[string]string

// Merge returns a copy of t with every key of over applied on top.
func (t Transient) Merge(over Transient) Transient {
	out := make(Transient, len(t)+len(over))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

func asTransient(v any) (Transient, bool) {
	switch m := v.(type) {
	case Transient:
		return m, m != nil
	case map[string]string:
		return Transient(m), m != nil
	}
	return nil, false
}

// DefaultResultTransient is the cache entry to fall back on: the prior
// cached entry for the installed slug where it has values, else the
// installed package's own header.
func (r *Result) DefaultResultTransient() Transient {
	pkg := r.adapter.Package()
	slug := pkg.Slug()

	var current Transient
	if reader := r.adapter.transients(); reader != nil {
		if entry, ok := reader.LookupTransient(slug); ok {
			current = entry
		}
	}

	pick := func(key string, fallback string) string {
		if v := current[key]; v != "" {
			return v
		}
		return fallback
	}
	present := func(key string, fallback string) string {
		if v, ok := current[key]; ok {
			return v
		}
		return fallback
	}

	return Transient{
		TransientTheme:       slug,
		TransientNewVersion:  pick(TransientNewVersion, headerString(pkg, HeaderVersion)),
		TransientURL:         pick(TransientURL, headerString(pkg, HeaderThemeURI)),
		TransientPackage:     present(TransientPackage, r.Package()),
		TransientRequires:    present(TransientRequires, headerString(pkg, HeaderRequiresWP)),
		TransientRequiresPHP: present(TransientRequiresPHP, headerString(pkg, HeaderRequiresPHP)),
	}
}

// ResultTransient projects the Result onto an update-cache entry for the
// installed package. The projection is passed through the
// FilterResultTransient filter and merged over DefaultResultTransient.
func (r *Result) ResultTransient() Transient {
	defaults := r.DefaultResultTransient()
	projected := defaults.Merge(Transient{
		TransientTheme:       r.adapter.Package().Slug(),
		TransientNewVersion:  r.Version(),
		TransientURL:         r.ThemeURL(),
		TransientPackage:     r.Package(),
		TransientRequires:    r.RequireWP(),
		TransientRequiresPHP: r.RequirePHP(),
	})

	filtered, ok := asTransient(r.adapter.filters().Apply(FilterResultTransient, projected, r))
	if !ok {
		return defaults
	}
	return defaults.Merge(filtered)
}

func headerString(pkg InstalledPackage, key string) string {
	s, _ := coerceString(pkg.Get(key))
	return s
}
