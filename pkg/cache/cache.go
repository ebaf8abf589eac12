// Package cache persists resolved update entries between runs, in the shape
// of the host's update_themes cache.
package cache

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/agentpkg/pkgupdate/pkg/store"
	"github.com/agentpkg/pkgupdate/pkg/updater"
)

const (
	Dir  = "cache"
	File = "update_themes.toml"
)

// ErrNoSlug is returned when an entry without a theme slug is saved.
var ErrNoSlug = errors.New("cache entry has no theme slug")

type document struct {
	LastChecked  *time.Time                   `toml:"last_checked,omitempty"`
	Checked      map[string]time.Time         `toml:"checked"`
	Response     map[string]updater.Transient `toml:"response"`
	NoUpdate     map[string]updater.Transient `toml:"no_update"`
	Translations []*updater.Translation       `toml:"translations,omitempty"`
}

// Cache is the update cache file. It implements updater.TransientReader.
// It is not safe for concurrent use.
type Cache struct {
	store store.Store
	doc   document
	now   func() time.Time
}

var _ updater.TransientReader = &Cache{}

// Open loads the cache file from s. A missing file yields an empty cache.
func Open(s store.Store) (*Cache, error) {
	c := &Cache{store: s, now: time.Now}
	if err := c.Load(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load rereads the cache file, discarding unsaved state.
func (c *Cache) Load() error {
	c.doc = document{}
	data, err := c.store.ReadFile(Dir, File)
	if err != nil {
		if os.IsNotExist(err) {
			c.init()
			return nil
		}
		return fmt.Errorf("reading update cache: %w", err)
	}
	if err := toml.Unmarshal(data, &c.doc); err != nil {
		return fmt.Errorf("parsing update cache %s: %w", c.Path(), err)
	}
	c.init()
	return nil
}

func (c *Cache) init() {
	if c.doc.Response == nil {
		c.doc.Response = make(map[string]updater.Transient)
	}
	if c.doc.NoUpdate == nil {
		c.doc.NoUpdate = make(map[string]updater.Transient)
	}
	if c.doc.Checked == nil {
		c.doc.Checked = make(map[string]time.Time)
	}
}

// Path returns the cache file location.
func (c *Cache) Path() string { return c.store.Path(Dir, File) }

// LastChecked returns when any entry was last saved.
func (c *Cache) LastChecked() time.Time {
	if c.doc.LastChecked == nil {
		return time.Time{}
	}
	return *c.doc.LastChecked
}

// CheckedAt returns when the entry of slug was last saved, or the zero time.
func (c *Cache) CheckedAt(slug string) time.Time { return c.doc.Checked[slug] }

// Lookup returns the entry for slug and whether it is a pending update.
func (c *Cache) Lookup(slug string) (entry updater.Transient, ready bool, ok bool) {
	if entry, ok := c.doc.Response[slug]; ok {
		return entry, true, true
	}
	if entry, ok := c.doc.NoUpdate[slug]; ok {
		return entry, false, true
	}
	return nil, false, false
}

// LookupTransient returns the entry for slug regardless of its table.
func (c *Cache) LookupTransient(slug string) (updater.Transient, bool) {
	entry, _, ok := c.Lookup(slug)
	return entry, ok
}

// Slugs returns every cached slug in sorted order.
func (c *Cache) Slugs() []string {
	slugs := make([]string, 0, len(c.doc.Response)+len(c.doc.NoUpdate))
	for slug := range c.doc.Response {
		slugs = append(slugs, slug)
	}
	for slug := range c.doc.NoUpdate {
		if _, dup := c.doc.Response[slug]; !dup {
			slugs = append(slugs, slug)
		}
	}
	sort.Strings(slugs)
	return slugs
}

// Translations returns the cached language packs of slug.
func (c *Cache) Translations(slug string) []*updater.Translation {
	var out []*updater.Translation
	for _, tr := range c.doc.Translations {
		if tr.Slug == slug {
			out = append(out, tr)
		}
	}
	return out
}

// Save stores entry under its theme slug, in the response table when ready
// and the no_update table otherwise, replaces the slug's translations, and
// writes the cache file.
func (c *Cache) Save(entry updater.Transient, ready bool, translations ...*updater.Translation) error {
	slug := entry[updater.TransientTheme]
	if slug == "" {
		return ErrNoSlug
	}

	if ready {
		c.doc.Response[slug] = entry.Merge(nil)
		delete(c.doc.NoUpdate, slug)
	} else {
		c.doc.NoUpdate[slug] = entry.Merge(nil)
		delete(c.doc.Response, slug)
	}

	kept := c.doc.Translations[:0]
	for _, tr := range c.doc.Translations {
		if tr.Slug != slug {
			kept = append(kept, tr)
		}
	}
	c.doc.Translations = append(kept, translations...)
	now := c.now().UTC().Truncate(time.Second)
	c.doc.Checked[slug] = now
	c.doc.LastChecked = &now

	return c.write()
}

// Remove drops every entry of slug and writes the cache file.
func (c *Cache) Remove(slug string) error {
	delete(c.doc.Response, slug)
	delete(c.doc.NoUpdate, slug)
	delete(c.doc.Checked, slug)
	kept := c.doc.Translations[:0]
	for _, tr := range c.doc.Translations {
		if tr.Slug != slug {
			kept = append(kept, tr)
		}
	}
	c.doc.Translations = kept
	return c.write()
}

func (c *Cache) write() error {
	data, err := toml.Marshal(c.doc)
	if err != nil {
		return fmt.Errorf("encoding update cache: %w", err)
	}
	if err := c.store.WriteFile(data, Dir, File); err != nil {
		return fmt.Errorf("writing update cache: %w", err)
	}
	return nil
}
