package updater

import (
	"errors"
	"fmt"
)

// Conditions reported by registry mutations. They are always wrapped in a
// *RegistryError; use errors.Is to tell them apart.
var (
	ErrNotAdapter = errors.New("value is not an adapter")
	ErrLocked     = errors.New("adapter id is locked")
	ErrReserved   = errors.New("adapter id is a reserved keyword")
	ErrExists     = errors.New("adapter id already exists")
)

// RegistryError describes a rejected Add or Set.
type RegistryError struct {
	Op  string
	ID  string
	Err error
	// Adapter is the rejected adapter, or for ErrExists the registered one.
	Adapter *Adapter
}

func (e *RegistryError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s adapter: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s adapter %q: %v", e.Op, e.ID, e.Err)
}

func (e *RegistryError) Unwrap() error {
	return e.Err
}
