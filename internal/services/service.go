// Package services wires the competition engine to the store.
//
// Each method loads a full snapshot, hands it to a pure engine function and, where the
// result is persisted, writes it back. Nothing is cached between calls: a match status,
// a standings table or a handicap is always recomputed from the rows as they are now.
package services

import (
	"errors"
	"log/slog"
	"time"

	"github.com/trentd187/matchplay-league/internal/metrics"
	"github.com/trentd187/matchplay-league/internal/store"
)

var (
	// ErrNotFound is returned when a league, season, match or player does not exist.
	ErrNotFound = store.ErrNotFound
	// ErrInvalidInput is returned for requests that fail validation.
	ErrInvalidInput = errors.New("invalid input")
)

// DefaultHandicapWorkers bounds how many members are recalculated at once.
const DefaultHandicapWorkers = 4

// Service is the application layer used by the HTTP handlers and the CLI.
type Service struct {
	store   *store.Store
	log     *slog.Logger
	metrics *metrics.Metrics
	workers int
	now     func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithHandicapWorkers sets the recalculation fan-out. Values below 1 are ignored.
func WithHandicapWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service.
func New(st *store.Store, log *slog.Logger, m *metrics.Metrics, opts ...Option) *Service {
	s := &Service{
		store:   st,
		log:     log,
		metrics: m,
		workers: DefaultHandicapWorkers,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
