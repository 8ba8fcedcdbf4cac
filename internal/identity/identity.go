// Package identity resolves receipt owners against an account directory.
package identity

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the directory has no account for the id
var ErrNotFound = errors.New("owner not found")

// Account is the directory view of a receipt owner
type Account struct {
	ID       string
	Disabled bool
}

// Directory looks up owner accounts.
// Implementations return ErrNotFound (possibly wrapped) for unknown ids and
// any other error when the lookup itself could not be completed.
type Directory interface {
	Lookup(ctx context.Context, ownerID string) (Account, error)
}
