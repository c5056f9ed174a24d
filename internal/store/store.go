// Package store is the persistence side of the competition engine.
//
// The engine packages never touch the database. This package loads the snapshots they need
// (score windows, scorecards, team lists, calendar rounds) from GORM models and converts
// them into engine values, and it writes the engine's results back (handicap indexes and
// generated matches).
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested league, season, match or player does not exist.
var ErrNotFound = errors.New("record not found")

// Store wraps a *gorm.DB. A Store built from a transaction handle (see Transaction)
// runs every query inside that transaction.
type Store struct {
	db *gorm.DB
}

// New creates a Store on top of an open GORM connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for callers that need raw access (tests, tooling).
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn with a Store bound to a single database transaction.
// Returning an error from fn rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// LockSeason serializes schedule generation for a season.
//
// On Postgres it takes a transaction-scoped advisory lock keyed on the season ID, so it
// must be called inside Transaction; the lock is released on commit or rollback. Other
// databases (SQLite in tests) have a single writer anyway and the call is a no-op.
func (s *Store) LockSeason(ctx context.Context, seasonID uuid.UUID) error {
	if s.db.Dialector.Name() != "postgres" {
		return nil
	}
	return s.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", seasonID.String()).Error
}

// notFound maps GORM's not-found error to ErrNotFound so callers don't need to import gorm.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
