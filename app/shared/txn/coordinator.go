// Package txn runs multi-entity mutations as one unit of work. Each attempt is
// a single database transaction; serialization failures, deadlocks, lock
// timeouts and unique-key races are retried a bounded number of times before the caller sees
// apperr.ErrTransactionAborted.
package txn

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/racepack/app/shared/apperr"
	"github.com/Black-And-White-Club/racepack/app/shared/observability/attr"
	"github.com/cenkalti/backoff/v5"
	"github.com/uptrace/bun"
)

// SQLSTATE codes worth another attempt.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	// Natural-key inserts read before they write, so a duplicate means a
	// concurrent transaction committed the same key first. The next attempt
	// sees that row.
	codeUniqueViolation = "23505"
)

// TxFunc is the body of a unit of work. db is the open transaction, or nil
// when the coordinator has no database (unit tests with fake repositories).
type TxFunc func(ctx context.Context, db bun.IDB) error

// Coordinator executes TxFuncs with bounded retry.
type Coordinator struct {
	db              *bun.DB
	logger          *slog.Logger
	maxAttempts     uint
	initialInterval time.Duration
	maxInterval     time.Duration

	// runTx opens one transaction and runs fn inside it.
	runTx func(ctx context.Context, fn func(ctx context.Context, tx bun.IDB) error) error
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithMaxAttempts bounds the number of transaction attempts. Values below 1 mean 1.
func WithMaxAttempts(n int) Option {
	return func(c *Coordinator) {
		if n < 1 {
			n = 1
		}
		c.maxAttempts = uint(n)
	}
}

// WithBackoff sets the first and the largest wait between attempts.
func WithBackoff(initial, max time.Duration) Option {
	return func(c *Coordinator) {
		c.initialInterval = initial
		c.maxInterval = max
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// New returns a Coordinator over db. A nil db runs every TxFunc directly.
func New(db *bun.DB, opts ...Option) *Coordinator {
	c := &Coordinator{
		db:              db,
		logger:          slog.Default(),
		maxAttempts:     3,
		initialInterval: 20 * time.Millisecond,
		maxInterval:     250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	if db != nil {
		c.runTx = func(ctx context.Context, fn func(ctx context.Context, tx bun.IDB) error) error {
			return db.RunInTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, func(ctx context.Context, tx bun.Tx) error {
				return fn(ctx, tx)
			})
		}
	}
	return c
}

// bodyError marks an error returned by the TxFunc itself, as opposed to one
// raised while beginning or committing the transaction.
type bodyError struct{ err error }

func (e *bodyError) Error() string { return e.err.Error() }
func (e *bodyError) Unwrap() error { return e.err }

// Run executes fn atomically. Domain errors from fn are returned unchanged.
// Commit failures, exhausted retries and cancellation surface as
// apperr.ErrTransactionAborted; nothing from a failed attempt is persisted.
func (c *Coordinator) Run(ctx context.Context, operation string, fn TxFunc) error {
	if c == nil || c.runTx == nil {
		return fn(ctx, nil)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	b.MaxInterval = c.maxInterval

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := c.runTx(ctx, func(ctx context.Context, tx bun.IDB) error {
			if err := fn(ctx, tx); err != nil {
				return &bodyError{err: err}
			}
			return nil
		})
		if err == nil {
			return struct{}{}, nil
		}

		if IsRetryable(err) {
			c.logger.WarnContext(ctx, "Transaction conflict, retrying",
				attr.ExtractCorrelationID(ctx),
				attr.String("operation", operation),
				attr.Int("attempt", attempt),
				attr.Error(err),
			)
			return struct{}{}, err
		}

		var body *bodyError
		if errors.As(err, &body) {
			return struct{}{}, backoff.Permanent(body.err)
		}
		// Begin or commit failed.
		return struct{}{}, backoff.Permanent(fmt.Errorf("%w: %s: %v", apperr.ErrTransactionAborted, operation, err))
	}, backoff.WithBackOff(b), backoff.WithMaxTries(c.maxAttempts))

	if err == nil {
		return nil
	}
	if IsRetryable(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		c.logger.ErrorContext(ctx, "Transaction aborted",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operation),
			attr.Int("attempts", attempt),
			attr.Error(err),
		)
		return fmt.Errorf("%w: %s after %d attempt(s): %v", apperr.ErrTransactionAborted, operation, attempt, err)
	}
	var body *bodyError
	if errors.As(err, &body) {
		return body.err
	}
	return err
}

// sqlStateError is satisfied by pgdriver.Error.
type sqlStateError interface {
	Field(k byte) string
}

// IsRetryable reports whether err is a postgres conflict that a fresh
// transaction may not hit again.
func IsRetryable(err error) bool {
	var pgErr sqlStateError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Field('C') {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable, codeUniqueViolation:
		return true
	}
	return false
}
