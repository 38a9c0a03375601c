// Package store provides pluggable persistence for acquired access tokens.
// A TokenStore is shared across flows at the caller's discretion; each
// implementation serializes its own writes.
package store

import (
	"context"
	"errors"
)

// ErrNoToken is returned by Get when the backend holds no token.
var ErrNoToken = errors.New("token store: no token")

// TokenStore abstracts token persistence across flow invocations.
type TokenStore interface {
	// Get returns the stored token, or ErrNoToken when none is stored.
	Get(ctx context.Context) (string, error)
	// Set persists the token, replacing any previous value.
	Set(ctx context.Context, token string) error
}
