// Package session keeps the latest token for each game id so that several
// clients can share one game. Writes carry the version they were based on
// and are rejected when another write got there first.
package session

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned for an unknown game id.
	ErrNotFound = errors.New("session not found")
	// ErrConflict is returned when an update is based on a stale version.
	ErrConflict = errors.New("session version conflict")
	// ErrExists is returned when creating a session whose id is taken.
	ErrExists = errors.New("session already exists")
)

// Session is the stored token for one game.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store persists sessions. Implementations are safe for concurrent use.
type Store interface {
	// Create stores the first token for id at version 1.
	Create(ctx context.Context, id, token string) (*Session, error)
	// Get returns the current session for id.
	Get(ctx context.Context, id string) (*Session, error)
	// Update replaces the token if the stored version equals expected,
	// and bumps the version.
	Update(ctx context.Context, id, token string, expected int64) (*Session, error)
	Close() error
}
