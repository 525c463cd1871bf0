package database

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrNullViolation means a required column was missing or null.
	ErrNullViolation = errors.New("required fields are missing or invalid")
	// ErrForeignKey means a referenced entity does not exist.
	ErrForeignKey = errors.New("referenced entity does not exist")
	// ErrDuplicate means a uniqueness constraint was violated.
	ErrDuplicate = errors.New("record with these attributes already exists")
)

// TranslateError maps driver errors onto the service's sentinel errors
// so handlers can pick HTTP statuses without inspecting SQLSTATEs.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23502": // not_null_violation
			return ErrNullViolation
		case "23503": // foreign_key_violation
			return ErrForeignKey
		case "23505": // unique_violation
			return ErrDuplicate
		}
	}
	return err
}
