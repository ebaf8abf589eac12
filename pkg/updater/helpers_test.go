package updater

import (
	"context"
	"testing"

	"github.com/go-logr/logr/testr"
)

type fakePackage struct {
	slug    string
	headers map[string]any
}

func (p fakePackage) Get(key string) any { return p.headers[key] }
func (p fakePackage) Slug() string       { return p.slug }

func newFakePackage(name, version string) fakePackage {
	return fakePackage{
		slug: "foo",
		headers: map[string]any{
			HeaderName:        name,
			HeaderVersion:     version,
			HeaderDescription: "Installed description",
			HeaderThemeURI:    "https://example.com/foo",
			HeaderAuthor:      "Jane",
			HeaderAuthorURI:   "https://example.com/jane",
			HeaderRequiresWP:  "6.0",
			HeaderRequiresPHP: "7.4",
			HeaderTags:        "blog, dark",
		},
	}
}

// stubSource returns data as a Result, nil when data is nil, or err.
type stubSource struct {
	info  Info
	data  map[string]any
	err   error
	calls int
}

func (s *stubSource) Describe() Info { return s.info }

func (s *stubSource) Discover(_ context.Context, a *Adapter) (*Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.data == nil {
		return nil, nil
	}
	return NewResult(a, s.data), nil
}

func newTestCoordinator(t *testing.T, opts ...Option) *Coordinator {
	t.Helper()
	opts = append([]Option{WithLogger(testr.New(t))}, opts...)
	return NewCoordinator(newFakePackage("Foo", "1.0"), opts...)
}

func mustAdd(t *testing.T, c *Coordinator, v any, opts ...AdapterOption) *Adapter {
	t.Helper()
	a, err := c.Add(v, opts...)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	return a
}
