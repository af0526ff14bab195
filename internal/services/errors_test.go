package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryableTxError(t *testing.T) {
	retryable := []error{
		&pgconn.PgError{Code: "40001"}, // serialization failure
		&pgconn.PgError{Code: "40P01"}, // deadlock detected
		&pgconn.PgError{Code: "55P03"}, // lock not available
		errors.New("database is locked (5) (SQLITE_BUSY)"),
		errors.New("database table is locked: auctions"),
		fmt.Errorf("failed to lock auction: %w", &pgconn.PgError{Code: "40001"}),
	}
	for _, err := range retryable {
		assert.True(t, isRetryableTxError(err), "expected retryable: %v", err)
	}

	permanent := []error{
		&pgconn.PgError{Code: "23505"}, // unique violation
		&pgconn.PgError{Code: "42P01"}, // undefined table
		errors.New("no such table: bids"),
	}
	for _, err := range permanent {
		assert.False(t, isRetryableTxError(err), "expected permanent: %v", err)
	}
}

func TestIsLockUnavailable(t *testing.T) {
	assert.True(t, isLockUnavailable(fmt.Errorf("lock: %w", &pgconn.PgError{Code: "55P03"})))
	assert.False(t, isLockUnavailable(&pgconn.PgError{Code: "40001"}))
	assert.False(t, isLockUnavailable(errors.New("database is locked")))
}
