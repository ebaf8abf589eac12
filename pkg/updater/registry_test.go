package updater

import (
	"slices"
	"testing"
)

func TestRegisteredTypes(t *testing.T) {
	if !slices.Contains(RegisteredTypes(), NoopType) {
		t.Errorf("RegisteredTypes() = %v, missing %q", RegisteredTypes(), NoopType)
	}
	if !slices.IsSorted(RegisteredTypes()) {
		t.Errorf("RegisteredTypes() = %v, not sorted", RegisteredTypes())
	}
}

func TestNewSource(t *testing.T) {
	tests := map[string]struct {
		typeName string
		wantOK   bool
	}{
		"registered": {typeName: NoopType, wantOK: true},
		"unknown":    {typeName: "svn", wantOK: false},
		"empty":      {typeName: "", wantOK: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			src, ok := NewSource(tc.typeName)
			if ok != tc.wantOK {
				t.Fatalf("NewSource(%q) ok = %v, want %v", tc.typeName, ok, tc.wantOK)
			}
			if ok && src == nil {
				t.Error("NewSource() returned a nil source")
			}
		})
	}
}

func TestRegisterTypeDuplicate(t *testing.T) {
	if err := RegisterType(NoopType, func() Source { return &Noop{} }); err == nil {
		t.Error("RegisterType() accepted a duplicate type name")
	}
}

func TestFilters(t *testing.T) {
	var nilFilters *Filters
	if got := nilFilters.Apply("x", "value"); got != "value" {
		t.Errorf("nil Filters Apply() = %v, want value", got)
	}
	if nilFilters.Has("x") {
		t.Error("nil Filters Has() = true")
	}

	f := NewFilters()
	f.Add("x", func(v any, _ ...any) any { return v.(string) + "-a" })
	f.Add("x", func(v any, args ...any) any { return v.(string) + "-" + args[0].(string) })

	if !f.Has("x") || f.Has("y") {
		t.Error("Has() reports the wrong filters")
	}
	if got := f.Apply("x", "v", "b"); got != "v-a-b" {
		t.Errorf("Apply() = %v, want v-a-b", got)
	}
	if got := f.Apply("y", "v"); got != "v" {
		t.Errorf("Apply() for unknown filter = %v, want v", got)
	}
}
