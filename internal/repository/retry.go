package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"eximbot/internal/logger"
)

const (
	retryAttempts = 3
	retryBackoff  = time.Second
)

// isTransient reports whether a database error is worth retrying: connection
// failures (class 08), serialization/deadlock aborts, or request-never-sent
// conditions. Row-level outcomes like pgx.ErrNoRows are not transient.
func isTransient(err error) bool {
	if err == nil || errors.Is(err, pgx.ErrNoRows) || errors.Is(err, context.Canceled) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "08") || pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return pgconn.SafeToRetry(err)
}

// withRetry runs fn up to retryAttempts times with a linear backoff between
// attempts, retrying only transient failures.
func withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		if err = fn(); err == nil || !isTransient(err) {
			return err
		}
		if attempt < retryAttempts {
			logger.Log.Warn("retrying database operation",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBackoff):
			}
		}
	}
	return err
}

// isUniqueViolation reports whether err is a duplicate-key insert.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
