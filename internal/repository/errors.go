package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"service-dispatch/internal/apperr"
)

const uniqueViolation = "23505"

// IsDuplicate - signals that the error is a duplicate key violation.
func IsDuplicate(err error) bool {
	var pgerr *pgconn.PgError
	return errors.As(err, &pgerr) && pgerr.Code == uniqueViolation
}

// IsNotFound - signals that the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// wrapWrite maps unique violations onto apperr.ErrConflict.
func wrapWrite(op string, err error) error {
	if IsDuplicate(err) {
		var pgerr *pgconn.PgError
		errors.As(err, &pgerr)
		return fmt.Errorf("%s: %s: %w", op, pgerr.ConstraintName, apperr.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}
