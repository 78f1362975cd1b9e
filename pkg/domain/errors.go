package domain

import "fmt"

// ErrNotFound is returned when a record key is absent from its table.
type ErrNotFound struct {
	Table string
	ID    string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Table, e.ID)
}

// ErrDuplicateKey is returned when a create collides with an existing key.
type ErrDuplicateKey struct {
	Table string
	ID    string
}

func (e ErrDuplicateKey) Error() string {
	return fmt.Sprintf("%s %s already exists", e.Table, e.ID)
}

// ErrStoreUnavailable wraps a fatal open/initialization failure. No partial
// handle is usable once this is returned.
type ErrStoreUnavailable struct {
	Err error
}

func (e ErrStoreUnavailable) Error() string {
	return fmt.Sprintf("store unavailable: %v", e.Err)
}

func (e ErrStoreUnavailable) Unwrap() error { return e.Err }

// ErrRestoreFailed reports a rejected or failed backup restore. When the
// failure is detected before any table is replaced the store is unchanged.
type ErrRestoreFailed struct {
	Reason string
}

func (e ErrRestoreFailed) Error() string {
	return "restore failed: " + e.Reason
}
