// Package resolver assembles an update coordinator from a pkgupdate.toml
// manifest and persists what it resolves into the update cache.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/agentpkg/pkgupdate/pkg/cache"
	"github.com/agentpkg/pkgupdate/pkg/config"
	"github.com/agentpkg/pkgupdate/pkg/httpclient"
	"github.com/agentpkg/pkgupdate/pkg/project"
	"github.com/agentpkg/pkgupdate/pkg/store"
	"github.com/agentpkg/pkgupdate/pkg/theme"
	"github.com/agentpkg/pkgupdate/pkg/updater"
	"github.com/agentpkg/pkgupdate/pkg/updater/adapters"
)

type Resolver struct {
	Store  store.Store
	Dev    *config.DevConfig
	Logger logr.Logger
	// HTTPClient is handed to every adapter that makes HTTP requests. When
	// nil a retrying client honoring Dev.Timeout is built.
	HTTPClient httpclient.Client
}

// Resolution is a coordinator built from a manifest together with the
// installed theme and the cache it reads defaults from.
type Resolution struct {
	Theme       *theme.Theme
	Coordinator *updater.Coordinator
	Cache       *cache.Cache
}

// Open loads the theme the manifest at manifestPath describes and registers
// every configured adapter on a new coordinator.
func (r *Resolver) Open(manifestPath string, cfg *config.Config) (*Resolution, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", manifestPath, err)
	}

	th, err := r.loadTheme(manifestPath, cfg)
	if err != nil {
		return nil, err
	}

	c, err := cache.Open(r.Store)
	if err != nil {
		return nil, err
	}

	dev := r.dev()
	policy, err := dev.Policy()
	if err != nil {
		return nil, err
	}

	co := updater.NewCoordinator(th,
		updater.WithLogger(r.Logger),
		updater.WithPolicy(policy),
		updater.WithTransientReader(c),
	)

	for i, ac := range cfg.Adapters {
		if err := r.register(co, ac); err != nil {
			return nil, fmt.Errorf("adapters[%d] (%s): %w", i, ac.Type, err)
		}
	}

	return &Resolution{Theme: th, Coordinator: co, Cache: c}, nil
}

func (r *Resolver) dev() *config.DevConfig {
	if r.Dev == nil {
		return &config.DevConfig{}
	}
	return r.Dev
}

func (r *Resolver) loadTheme(manifestPath string, cfg *config.Config) (*theme.Theme, error) {
	dir := project.PackageDir(manifestPath, cfg)
	opts := []theme.Option{
		theme.WithSlug(cfg.Package.Slug),
		theme.WithHeaders(cfg.Package.Headers),
	}

	th, err := theme.Load(dir, opts...)
	if errors.Is(err, theme.ErrNoHeader) && len(cfg.Package.Headers) > 0 {
		// The manifest alone describes the package.
		slug := cfg.Package.Slug
		if slug == "" {
			slug = project.InferSlug(dir)
		}
		return theme.New(slug, cfg.Package.Headers), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading theme: %w", err)
	}
	return th, nil
}

func (r *Resolver) register(co *updater.Coordinator, ac config.AdapterConfig) error {
	src, ok := updater.NewSource(ac.Type)
	if !ok {
		return fmt.Errorf("unknown adapter type %q", ac.Type)
	}

	if c, ok := src.(adapters.Configurable); ok {
		if err := c.Configure(ac.Settings); err != nil {
			return err
		}
	} else if len(ac.Settings) > 0 {
		return fmt.Errorf("adapter type %q takes no settings", ac.Type)
	}
	if s, ok := src.(adapters.HTTPClientSetter); ok {
		s.SetHTTPClient(r.httpClient())
	}
	if s, ok := src.(adapters.TokenSetter); ok {
		s.SetDefaultToken(r.dev().GitHubToken)
	}

	var opts []updater.AdapterOption
	if ac.ID != "" {
		opts = append(opts, updater.WithID(ac.ID))
	}
	if ac.Priority != nil {
		opts = append(opts, updater.WithPriority(ac.Priority))
	}

	a, err := co.Add(src, opts...)
	if err != nil {
		return err
	}
	if ac.Lock {
		co.Lock(a)
	}
	r.Logger.V(1).Info("Configured adapter", "id", a.ID(), "type", ac.Type, "priority", a.Priority(), "locked", ac.Lock)
	return nil
}

func (r *Resolver) httpClient() httpclient.Client {
	if r.HTTPClient == nil {
		r.HTTPClient = httpclient.NewDefaultClient(r.dev().Timeout, httpclient.WithLogger(r.Logger))
	}
	return r.HTTPClient
}

// Check walks the adapter chain. A forced check ignores the cached outcome
// of a previous walk.
func (res *Resolution) Check(ctx context.Context, force bool) *updater.Result {
	return res.Coordinator.Update(ctx, force)
}

// Save writes the transient entry of result and its translations to the
// update cache.
func (res *Resolution) Save(result *updater.Result) error {
	entry := result.ResultTransient()
	if entry[updater.TransientTheme] == "" {
		entry = entry.Merge(updater.Transient{updater.TransientTheme: res.Theme.Slug()})
	}

	var translations []*updater.Translation
	if result.IsReadyUpdate() {
		translations = result.Translations().All()
	}
	if err := res.Cache.Save(entry, result.IsReadyUpdate(), translations...); err != nil {
		return fmt.Errorf("saving update cache: %w", err)
	}
	return nil
}
