package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	assert.False(t, isTransient(nil))
	assert.False(t, isTransient(pgx.ErrNoRows))
	assert.False(t, isTransient(context.Canceled))
	assert.False(t, isTransient(&pgconn.PgError{Code: "23505"}))

	assert.True(t, isTransient(&pgconn.PgError{Code: "08006"}))
	assert.True(t, isTransient(&pgconn.PgError{Code: "40001"}))
	assert.True(t, isTransient(&pgconn.PgError{Code: "40P01"}))
}

func TestWithRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := errors.New("syntax error")

	err := withRetry(context.Background(), "test", func() error {
		calls++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestWithRetryRecovers(t *testing.T) {
	calls := 0

	err := withRetry(context.Background(), "test", func() error {
		calls++
		if calls == 1 {
			return &pgconn.PgError{Code: "40001"}
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRetryGivesUpAfterAttempts(t *testing.T) {
	calls := 0
	transient := &pgconn.PgError{Code: "08006"}

	err := withRetry(context.Background(), "test", func() error {
		calls++
		return transient
	})

	assert.ErrorIs(t, err, transient)
	assert.Equal(t, retryAttempts, calls)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("plain")))
}
