// Package database owns the PostgreSQL connection pool and the transaction
// wrapper every repository writes through.
//
// WithTx is all-or-nothing: the callback runs inside one transaction that is
// committed only when the callback returns nil. Transient failures
// (serialization conflicts, deadlocks, dropped connections) roll back and the
// whole callback is re-run with exponential backoff, so callbacks must read
// their state inside the transaction and must not keep side effects outside it.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dineqr/dineqr/pkg/logger"
)

const (
	connectAttempts   = 10
	connectRetryDelay = 2 * time.Second
	pingTimeout       = 5 * time.Second

	defaultTxRetries   = 3
	defaultTxBaseDelay = 50 * time.Millisecond
)

// PostgreSQL error codes inspected by the wrapper.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// ErrTransient marks a storage failure that survived every retry.
var ErrTransient = errors.New("transient storage failure")

// Database wraps *sql.DB (pgx stdlib driver) with a retrying transaction helper.
type Database struct {
	db         *sql.DB
	log        logger.Logger
	maxRetries int
	baseDelay  time.Duration
}

// Option tweaks a Database at construction time.
type Option func(*Database)

// WithTxRetries sets how many times a transaction is attempted before
// surfacing ErrTransient. Values below 1 are ignored.
func WithTxRetries(n int) Option {
	return func(d *Database) {
		if n >= 1 {
			d.maxRetries = n
		}
	}
}

// WithTxBaseDelay sets the first backoff delay between transaction attempts.
func WithTxBaseDelay(delay time.Duration) Option {
	return func(d *Database) { d.baseDelay = delay }
}

// NewPool opens the pool and waits until PostgreSQL answers a ping, retrying
// for roughly twenty seconds so containers can start in any order.
func NewPool(ctx context.Context, url string, log logger.Logger, opts ...Option) (*Database, error) {
	var (
		db  *sql.DB
		err error
	)
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		db, err = sql.Open("pgx", url)
		if err == nil {
			pctx, cancel := context.WithTimeout(ctx, pingTimeout)
			err = db.PingContext(pctx)
			cancel()
			if err == nil {
				break
			}
			_ = db.Close()
		}

		log.Warn("database not ready, retrying", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("database connect canceled: %w", ctx.Err())
		case <-time.After(connectRetryDelay):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("database unreachable after %d attempts: %w", connectAttempts, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return New(db, log, opts...), nil
}

// New wraps an already-open *sql.DB.
func New(db *sql.DB, log logger.Logger, opts ...Option) *Database {
	d := &Database{
		db:         db,
		log:        log,
		maxRetries: defaultTxRetries,
		baseDelay:  defaultTxBaseDelay,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DB returns the underlying *sql.DB for non-transactional reads.
func (d *Database) DB() *sql.DB {
	return d.db
}

// WithTx runs fn inside a transaction, retrying transient failures.
// Non-transient errors returned by fn are passed through unchanged.
func (d *Database) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return retry(ctx, d.maxRetries, d.baseDelay, d.log, func() error {
		return d.runTx(ctx, fn)
	})
}

func (d *Database) runTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// retry runs op up to attempts times while it fails with a retryable error,
// doubling the delay between attempts. Errors that are not retryable stop the
// loop and are returned unchanged.
func retry(ctx context.Context, attempts int, baseDelay time.Duration, log logger.Logger, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = baseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0

	tries, permanent := 0, false
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		tries++
		err := op()
		if err != nil && !IsRetryable(err) {
			permanent = true
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.WarnContext(ctx, "transaction failed, retrying",
				"attempt", tries, "max_attempts", attempts, "next_delay", next, "error", err)
		}),
	)
	switch {
	case err == nil, permanent:
		return err
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %w", ErrTransient, err)
	default:
		return fmt.Errorf("%w after %d attempts: %w", ErrTransient, tries, err)
	}
}

// IsRetryable reports whether err is a transient storage failure worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
	}
	if errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// IsForeignKeyViolation reports whether err is a PostgreSQL foreign key violation,
// i.e. the row references a parent that does not exist.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation
}

// Ping checks the database connection health.
func (d *Database) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	return nil
}

// Close releases every pooled connection.
func (d *Database) Close() {
	if d == nil || d.db == nil {
		return
	}
	if err := d.db.Close(); err != nil {
		d.log.Error("database close", "error", err)
	}
}
