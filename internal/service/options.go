package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"keepnotes/internal/contextutil"
)

// CascadePolicy decides what happens when a label rename/delete cascade
// cannot be applied to the notes referencing the label.
type CascadePolicy string

const (
	// CascadeBestEffort logs the failure and lets the label write succeed.
	// Notes keep stale label names until the next successful cascade or edit.
	CascadeBestEffort CascadePolicy = "best-effort"
	// CascadeStrict reports the failure to the caller. The label write itself
	// is not rolled back.
	CascadeStrict CascadePolicy = "strict"
)

// ParseCascadePolicy parses a policy name.
func ParseCascadePolicy(s string) (CascadePolicy, error) {
	switch CascadePolicy(s) {
	case CascadeBestEffort, CascadeStrict:
		return CascadePolicy(s), nil
	default:
		return "", fmt.Errorf("unknown cascade policy %q (want %q or %q)", s, CascadeBestEffort, CascadeStrict)
	}
}

const defaultWriteRetries = 5

// Option configures the note and label services.
type Option func(*settings)

// WithCascadePolicy sets the label cascade failure policy.
func WithCascadePolicy(p CascadePolicy) Option {
	return func(s *settings) {
		s.policy = p
	}
}

// WithWriteRetries bounds how many times a read-modify-write is attempted
// when it loses to a concurrent writer. Values below 1 are ignored.
func WithWriteRetries(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.retries = n
		}
	}
}

// WithClock overrides the time source used for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

// WithLogger sets the logger used when the context carries none.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

type settings struct {
	policy  CascadePolicy
	retries int
	now     func() time.Time
	logger  *slog.Logger
}

func newSettings(opts []Option) settings {
	s := settings{
		policy:  CascadeBestEffort,
		retries: defaultWriteRetries,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s *settings) getLogger(ctx context.Context) *slog.Logger {
	return contextutil.LoggerOr(ctx, s.logger)
}

func (s *settings) timestamp() time.Time {
	return s.now().UTC()
}
