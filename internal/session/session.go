// Package session keeps the registry of live login sessions.
package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned for unknown, expired or revoked sessions.
var ErrNotFound = errors.New("session not found")

// Store is a registry of sessions keyed by an opaque id.
type Store interface {
	// Create opens a session for the user and returns its id.
	Create(ctx context.Context, userID uint) (string, error)
	// Lookup returns the user owning a live session.
	Lookup(ctx context.Context, id string) (uint, error)
	// Revoke ends one session. Unknown ids are ignored.
	Revoke(ctx context.Context, id string) error
	// RevokeUser ends every session of a user.
	RevokeUser(ctx context.Context, userID uint) error
}
