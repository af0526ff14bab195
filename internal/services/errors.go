package services

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Validation and authorization errors, surfaced to the caller immediately
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Lookup errors
var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrAuctionNotFound  = errors.New("auction not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrInquiryNotFound  = errors.New("inquiry not found")
)

// Booking errors
var (
	ErrNotBookable      = errors.New("listing does not accept bookings")
	ErrDatesUnavailable = errors.New("dates are no longer available")
)

// ErrInquiryClosed is returned on a reply to a closed thread
var ErrInquiryClosed = errors.New("inquiry is closed")

// Bidding errors
var (
	ErrAuctionNotActive = errors.New("auction is not active")
	ErrBidTooLow        = errors.New("bid must be higher than current price")

	// ErrConflict is returned after the internal retry budget for a
	// serialization conflict is exhausted.
	ErrConflict = errors.New("conflicting update, please retry")
)

// isRetryableTxError reports whether a failed transaction hit a transient
// serialization or lock conflict worth another attempt. Anything else is a
// real storage failure and must not be retried or reported as a conflict.
func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03": // serialization failure, deadlock, lock not available
			return true
		}
		return false
	}

	// The sqlite driver has no typed errors; its busy/locked conditions
	// only surface as message text
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}

// isLockUnavailable reports a NOWAIT row lock that was held by another
// transaction
func isLockUnavailable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "55P03"
}
