package updater

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/go-logr/logr"

	"github.com/agentpkg/pkgupdate/pkg/versions"
)

// reservedKeywords can never be used as adapter ids.
var reservedKeywords = []string{
	"theme",
	"reserved_keywords",
	"adapters",
	"locked_adapters",
}

// Coordinator owns the adapter registry for one installed package and
// resolves the authoritative update Result from it. It is not safe for
// concurrent use.
type Coordinator struct {
	pkg        InstalledPackage
	logger     logr.Logger
	policy     versions.Policy
	transients TransientReader
	filters    *Filters

	adapters map[string]*Adapter
	// order holds adapter ids sorted ascending by priority, ties in
	// insertion order.
	order  []string
	locked map[string]struct{}

	processed *Result
}

// Option is a function that configures the coordinator
type Option func(*Coordinator)

// WithLogger sets the logger handed to adapters
func WithLogger(logger logr.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithPolicy sets how candidate and installed versions are compared
func WithPolicy(p versions.Policy) Option {
	return func(c *Coordinator) {
		c.policy = p
	}
}

// WithTransientReader sets the update cache consulted for transient defaults
func WithTransientReader(r TransientReader) Option {
	return func(c *Coordinator) {
		c.transients = r
	}
}

// WithFilters sets the extension filters applied to Result projections
func WithFilters(f *Filters) Option {
	return func(c *Coordinator) {
		c.filters = f
	}
}

// NewCoordinator creates a coordinator resolving updates for pkg.
func NewCoordinator(pkg InstalledPackage, opts ...Option) *Coordinator {
	if pkg == nil {
		pkg = emptyPackage{}
	}
	c := &Coordinator{
		pkg:      pkg,
		logger:   logr.Discard(),
		policy:   versions.PolicyNewer,
		filters:  NewFilters(),
		adapters: make(map[string]*Adapter),
		locked:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Package returns the installed package.
func (c *Coordinator) Package() InstalledPackage { return c.pkg }

// Logger returns the coordinator's logger.
func (c *Coordinator) Logger() logr.Logger { return c.logger }

// Policy returns the version comparison policy.
func (c *Coordinator) Policy() versions.Policy { return c.policy }

// Filters returns the extension filters.
func (c *Coordinator) Filters() *Filters { return c.filters }

// ProcessedResult returns the cached Result of the last Update, or nil.
func (c *Coordinator) ProcessedResult() *Result { return c.processed }

// ReservedKeywords returns the ids that can never be registered.
func (c *Coordinator) ReservedKeywords() []string {
	return slices.Clone(reservedKeywords)
}

// Adapters returns the registered adapters ascending by priority.
func (c *Coordinator) Adapters() []*Adapter {
	out := make([]*Adapter, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.adapters[id])
	}
	return out
}

// LockedAdapters returns the locked ids in sorted order.
func (c *Coordinator) LockedAdapters() []string {
	ids := make([]string, 0, len(c.locked))
	for id := range c.locked {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// idOf resolves a string id or an *Adapter to an id.
func idOf(v any) (string, bool) {
	switch a := v.(type) {
	case string:
		return a, true
	case *Adapter:
		if a == nil {
			return "", false
		}
		return a.ID(), true
	}
	return "", false
}

// IsReserved reports whether the id of v is a reserved keyword.
func (c *Coordinator) IsReserved(v any) bool {
	id, ok := idOf(v)
	return ok && slices.Contains(reservedKeywords, id)
}

// IsLocked reports whether the id of v is locked.
func (c *Coordinator) IsLocked(v any) bool {
	id, ok := idOf(v)
	if !ok {
		return false
	}
	_, locked := c.locked[id]
	return locked
}

// Lock prevents any future Add or Set under the id of v (a string id or an
// *Adapter). It returns false only when no id can be resolved from v.
func (c *Coordinator) Lock(v any) bool {
	id, ok := idOf(v)
	if !ok {
		return false
	}
	c.locked[id] = struct{}{}
	return true
}

// Has reports whether an adapter is registered under the id of v.
func (c *Coordinator) Has(v any) bool {
	id, ok := idOf(v)
	if !ok || id == "" {
		return false
	}
	_, exists := c.adapters[id]
	return exists
}

// Get returns the adapter registered under the id of v.
func (c *Coordinator) Get(v any) (*Adapter, bool) {
	id, ok := idOf(v)
	if !ok {
		return nil, false
	}
	a, exists := c.adapters[id]
	return a, exists
}

// resolveAdapter turns v into an *Adapter. v may be an *Adapter, a Source,
// or a registered type name; opts apply only when a new Adapter is built.
func (c *Coordinator) resolveAdapter(op string, v any, opts []AdapterOption) (*Adapter, error) {
	switch a := v.(type) {
	case *Adapter:
		if a != nil {
			return a, nil
		}
	case Source:
		if a != nil {
			return NewAdapter(c, a, opts...), nil
		}
	case string:
		if src, ok := NewSource(strings.TrimSpace(a)); ok {
			return NewAdapter(c, src, opts...), nil
		}
	}
	return nil, &RegistryError{Op: op, Err: ErrNotAdapter}
}

func (c *Coordinator) checkWritable(op string, a *Adapter) error {
	id := a.ID()
	if c.IsLocked(id) {
		return &RegistryError{Op: op, ID: id, Err: ErrLocked, Adapter: a}
	}
	if c.IsReserved(id) {
		return &RegistryError{Op: op, ID: id, Err: ErrReserved, Adapter: a}
	}
	return nil
}

// Add registers v, failing with ErrExists when its id is already taken.
// v may be an *Adapter, a Source, or a registered type name. Failures are
// returned as *RegistryError and leave the registry untouched.
func (c *Coordinator) Add(v any, opts ...AdapterOption) (*Adapter, error) {
	a, err := c.resolveAdapter("add", v, opts)
	if err != nil {
		return nil, err
	}
	if existing, ok := c.adapters[a.ID()]; ok {
		return nil, &RegistryError{Op: "add", ID: a.ID(), Err: ErrExists, Adapter: existing}
	}
	return c.set("add", a)
}

// Set registers v, replacing any adapter already registered under its id.
// Locked and reserved ids are rejected as in Add.
func (c *Coordinator) Set(v any, opts ...AdapterOption) (*Adapter, error) {
	a, err := c.resolveAdapter("set", v, opts)
	if err != nil {
		return nil, err
	}
	return c.set("set", a)
}

func (c *Coordinator) set(op string, a *Adapter) (*Adapter, error) {
	if err := c.checkWritable(op, a); err != nil {
		return nil, err
	}

	id := a.ID()
	if _, exists := c.adapters[id]; !exists {
		c.order = append(c.order, id)
	}
	c.adapters[id] = a
	slices.SortStableFunc(c.order, func(x, y string) int {
		return cmp.Compare(c.adapters[x].Priority(), c.adapters[y].Priority())
	})

	c.logger.V(1).Info("Registered adapter", "adapter", id, "priority", a.Priority())
	return a, nil
}

// Update resolves the authoritative Result.
//
// Unless force is set, a cached Result from an earlier call is returned as
// is. Otherwise adapters are walked in priority order: adapters that were
// never processed are processed, and already processed ones are re-run only
// when force is set. The first valid Result wins and is cached. A Result
// from a registered no-op terminal is kept as a placeholder, and when the
// walk ends without a winner a fresh no-op Result is cached. Update never
// returns nil.
func (c *Coordinator) Update(ctx context.Context, force bool) *Result {
	if !force && c.processed != nil {
		return c.processed
	}
	c.processed = nil

	for _, a := range c.Adapters() {
		if force || !a.IsProcessed() {
			a.Process(ctx)
		}

		res := a.LastResult().Result()
		if res == nil {
			continue
		}
		if res.IsValid() {
			c.processed = res
			c.logger.Info("Resolved update source",
				"adapter", a.ID(),
				"version", res.Version(),
				"ready", res.IsReadyUpdate())
			return res
		}
		if c.processed == nil && a.IsNoop() {
			c.processed = res
		}
	}

	if c.processed == nil {
		c.processed = NewAdapter(c, &Noop{}).Process(ctx).Result()
	}
	c.logger.Info("No adapter produced a valid result", "adapters", len(c.order))
	return c.processed
}
