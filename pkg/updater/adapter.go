package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"path"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-logr/logr"

	"github.com/agentpkg/pkgupdate/pkg/versions"
)

const (
	// DefaultPriority is used when a source declares no usable priority.
	DefaultPriority = 10

	// priorityFloor is the lowest accepted priority; anything below is
	// replaced by clampedPriority.
	priorityFloor   = -9999
	clampedPriority = -999
)

// Source discovers update data from one place.
type Source interface {
	// Discover returns a Result, nil when the source has nothing conclusive
	// to report, or an error. The Adapter gives access to the installed
	// package and a logger.
	Discover(ctx context.Context, a *Adapter) (*Result, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, a *Adapter) (*Result, error)

// Discover calls f(ctx, a).
func (f SourceFunc) Discover(ctx context.Context, a *Adapter) (*Result, error) {
	return f(ctx, a)
}

// Initializer is implemented by sources that need setup once they are bound
// to an Adapter. Init runs exactly once, during NewAdapter.
type Initializer interface {
	Init(a *Adapter)
}

// Describer is implemented by sources that declare their own metadata.
type Describer interface {
	Describe() Info
}

// Info is the metadata a Source declares about itself.
type Info struct {
	Name        string
	Version     string
	Description string
	// Priority is a raw value passed through ParsePriority. nil selects
	// DefaultPriority.
	Priority any
}

// AdapterOption overrides metadata at construction.
type AdapterOption func(*adapterOptions)

type adapterOptions struct {
	id       string
	priority any
}

// WithID sets the adapter id instead of deriving it from the source type.
// Blank ids are ignored.
func WithID(id string) AdapterOption {
	return func(o *adapterOptions) {
		o.id = id
	}
}

// WithPriority overrides the priority the source declares. The raw value is
// passed through ParsePriority. It has no effect on the no-op terminal.
func WithPriority(raw any) AdapterOption {
	return func(o *adapterOptions) {
		o.priority = raw
	}
}

// Outcome is the captured result of one Process call: a Result, an error,
// or neither when the source had nothing conclusive.
type Outcome struct {
	result *Result
	err    error
}

// Result returns the Result, or nil.
func (o Outcome) Result() *Result { return o.result }

// Err returns the captured discovery error, or nil.
func (o Outcome) Err() error { return o.err }

// Empty reports whether neither a Result nor an error was captured.
func (o Outcome) Empty() bool { return o.result == nil && o.err == nil }

// Adapter binds a Source to a Coordinator and tracks its last outcome.
type Adapter struct {
	id          string
	priority    int
	name        string
	version     string
	description string

	source      Source
	coordinator *Coordinator

	processed bool
	last      Outcome
}

// NewAdapter builds an Adapter for src owned by c, then runs the source's
// Init hook if it has one.
func NewAdapter(c *Coordinator, src Source, opts ...AdapterOption) *Adapter {
	o := adapterOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	typeName, pkgName := sourceTypeName(src)

	var info Info
	if d, ok := src.(Describer); ok {
		info = d.Describe()
	}

	a := &Adapter{
		id:          strings.TrimSpace(o.id),
		name:        info.Name,
		version:     info.Version,
		description: info.Description,
		source:      src,
		coordinator: c,
	}
	if a.id == "" {
		a.id = DeriveID(src)
	}
	if a.name == "" {
		a.name = typeName
		if a.name == "" {
			a.name = pkgName
		}
	}

	raw := info.Priority
	if o.priority != nil && !isNoopSource(src) {
		raw = o.priority
	}
	a.priority = ParsePriority(raw)

	if initer, ok := src.(Initializer); ok {
		initer.Init(a)
	}

	return a
}

// DeriveID returns the default adapter id for src: "<package>_<type>",
// lower-cased.
func DeriveID(src Source) string {
	typeName, pkgName := sourceTypeName(src)
	switch {
	case typeName == "" && pkgName == "":
		return "adapter"
	case pkgName == "":
		return strings.ToLower(typeName)
	case typeName == "":
		return strings.ToLower(pkgName)
	}
	return strings.ToLower(pkgName + "_" + typeName)
}

func sourceTypeName(src Source) (typeName, pkgName string) {
	t := reflect.TypeOf(src)
	if t == nil {
		return "", ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name(), path.Base(t.PkgPath())
}

// ClampPriority applies the priority floor: values below -9999 become -999.
func ClampPriority(p int) int {
	if p < priorityFloor {
		return clampedPriority
	}
	return p
}

// ParsePriority converts a raw priority (any integer or float kind, a
// json.Number, or a numeric string) into a clamped int. Anything else yields
// DefaultPriority.
func ParsePriority(raw any) int {
	switch v := raw.(type) {
	case int:
		return ClampPriority(v)
	case int8:
		return ClampPriority(int(v))
	case int16:
		return ClampPriority(int(v))
	case int32:
		return ClampPriority(int(v))
	case int64:
		return ClampPriority(clampInt64(v))
	case uint:
		return ClampPriority(clampUint64(uint64(v)))
	case uint8:
		return ClampPriority(int(v))
	case uint16:
		return ClampPriority(int(v))
	case uint32:
		return ClampPriority(clampUint64(uint64(v)))
	case uint64:
		return ClampPriority(clampUint64(v))
	case float32:
		return parseFloatPriority(float64(v))
	case float64:
		return parseFloatPriority(v)
	case json.Number:
		return ParsePriority(v.String())
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return ClampPriority(clampInt64(i))
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return parseFloatPriority(f)
		}
	}
	return DefaultPriority
}

func parseFloatPriority(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return DefaultPriority
	}
	if f < math.MinInt32 {
		return clampedPriority
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return ClampPriority(int(f))
}

func clampInt64(v int64) int {
	if v < math.MinInt32 {
		return math.MinInt32
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}

func clampUint64(v uint64) int {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}

// Process runs the source's discovery and stores the outcome. Errors and
// panics raised by the source are captured, never propagated.
func (a *Adapter) Process(ctx context.Context) Outcome {
	a.processed = true
	a.last = a.discover(ctx)

	logger := a.Logger()
	switch {
	case a.last.err != nil:
		logger.Error(a.last.err, "Adapter discovery failed")
	case a.last.result == nil:
		logger.V(1).Info("Adapter returned no data")
	default:
		logger.V(1).Info("Adapter returned result",
			"valid", a.last.result.IsValid(),
			"version", a.last.result.Version())
	}

	return a.last
}

func (a *Adapter) discover(ctx context.Context) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{err: fmt.Errorf("adapter %s panicked: %v", a.id, r)}
		}
	}()

	res, err := a.source.Discover(ctx, a)
	if err != nil {
		return Outcome{err: err}
	}
	return Outcome{result: res}
}

// LastResult returns the outcome of the most recent Process call. It is
// empty when the adapter was never processed.
func (a *Adapter) LastResult() Outcome { return a.last }

// IsProcessed reports whether Process has been called at least once.
func (a *Adapter) IsProcessed() bool { return a.processed }

// ID returns the adapter id.
func (a *Adapter) ID() string { return a.id }

// Priority returns the adapter priority; lower runs first.
func (a *Adapter) Priority() int { return a.priority }

// Name returns the display name.
func (a *Adapter) Name() string { return a.name }

// Version returns the adapter's declared version.
func (a *Adapter) Version() string { return a.version }

// Description returns the adapter's declared description.
func (a *Adapter) Description() string { return a.description }

// Source returns the wrapped source.
func (a *Adapter) Source() Source { return a.source }

// Coordinator returns the owning coordinator.
func (a *Adapter) Coordinator() *Coordinator { return a.coordinator }

// IsNoop reports whether the adapter wraps the no-op terminal.
func (a *Adapter) IsNoop() bool { return isNoopSource(a.source) }

// Logger returns the coordinator's logger tagged with the adapter id.
func (a *Adapter) Logger() logr.Logger {
	if a.coordinator == nil {
		return logr.Discard()
	}
	return a.coordinator.Logger().WithValues("adapter", a.id)
}

// Package returns the installed package the adapter resolves updates for.
func (a *Adapter) Package() InstalledPackage {
	if a.coordinator == nil {
		return emptyPackage{}
	}
	return a.coordinator.Package()
}

func (a *Adapter) policy() versions.Policy {
	if a.coordinator == nil {
		return versions.PolicyNewer
	}
	return a.coordinator.policy
}

func (a *Adapter) transients() TransientReader {
	if a.coordinator == nil {
		return nil
	}
	return a.coordinator.transients
}

func (a *Adapter) filters() *Filters {
	if a.coordinator == nil {
		return nil
	}
	return a.coordinator.filters
}

type emptyPackage struct{}

func (emptyPackage) Get(string) any { return nil }
func (emptyPackage) Slug() string   { return "" }
