package updater

import "context"

const (
	// Version is the version of the update resolution engine.
	Version = "1.0.0"

	// NoopPriority places the no-op terminal after every other adapter.
	NoopPriority = 1000
)

// Noop is the terminal source. It always yields a Result built from an
// empty payload, which is never valid, so Update has a deterministic answer
// when no other source qualifies.
type Noop struct{}

var _ Source = &Noop{}

func (*Noop) Describe() Info {
	return Info{
		Name:        "No operation adapter.",
		Version:     Version,
		Description: "Adapter to handle empty adapter.",
		Priority:    NoopPriority,
	}
}

func (*Noop) Discover(_ context.Context, a *Adapter) (*Result, error) {
	return NewResult(a, nil), nil
}

func isNoopSource(src Source) bool {
	_, ok := src.(*Noop)
	return ok
}
