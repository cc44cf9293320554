// Package store persists user records and per-user conversation
// history. The default backend is a pair of flat JSON files read and
// rewritten whole on every operation; Redis and Postgres backends
// implement the same interfaces for deployments that outgrow that.
package store

import (
	"context"
	"errors"

	"chatrelay-backend/internal/models"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
)

// UserStore maps normalized usernames to credential records.
type UserStore interface {
	// Create inserts a new user, failing with ErrUserExists if the
	// username is already taken.
	Create(ctx context.Context, user *models.User) error

	// Get returns the user or ErrUserNotFound.
	Get(ctx context.Context, username string) (*models.User, error)
}

// HistoryStore maps usernames to ordered conversation turns.
type HistoryStore interface {
	// Append adds turns to the end of the user's sequence, creating
	// the sequence if absent.
	Append(ctx context.Context, username string, turns ...models.Turn) error

	// Recent returns the last n turns in chronological order. A user
	// with no history yields an empty slice, not an error.
	Recent(ctx context.Context, username string, n int) ([]models.Turn, error)

	// Clear removes the user's entire sequence. Clearing an absent
	// user is a no-op.
	Clear(ctx context.Context, username string) error
}
