package updater

// FilterResultTransient is applied by Result.ResultTransient. Filters
// receive the merged Transient and the *Result; returning anything other
// than a Transient or map[string]string discards the filtered value.
const FilterResultTransient = "result_transient"

// FilterFunc rewrites value. args carry filter-specific context.
type FilterFunc func(value any, args ...any) any

// Filters holds named extension points that external code may hook into.
// A nil *Filters applies no filters.
type Filters struct {
	filters map[string][]FilterFunc
}

// NewFilters returns an empty filter set.
func NewFilters() *Filters {
	return &Filters{filters: make(map[string][]FilterFunc)}
}

// Add appends fn to the filter chain for name.
func (f *Filters) Add(name string, fn FilterFunc) {
	if f.filters == nil {
		f.filters = make(map[string][]FilterFunc)
	}
	f.filters[name] = append(f.filters[name], fn)
}

// Has reports whether any filter is registered for name.
func (f *Filters) Has(name string) bool {
	return f != nil && len(f.filters[name]) > 0
}

// Apply passes value through every filter registered for name, in the order
// they were added.
func (f *Filters) Apply(name string, value any, args ...any) any {
	if f == nil {
		return value
	}
	for _, fn := range f.filters[name] {
		value = fn(value, args...)
	}
	return value
}
