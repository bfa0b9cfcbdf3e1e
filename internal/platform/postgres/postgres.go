// Package postgres provides PostgreSQL implementations of the store
// interfaces, built on database/sql over the pgx stdlib driver.
package postgres

import (
	"errors"
	"fmt"

	"github.com/converselab/converse-api/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
const (
	pgUniqueViolationCode     = "23505"
	pgForeignKeyViolationCode = "23503"
)

// isUniqueViolation reports whether err is a unique-constraint violation on
// the named constraint. An empty constraint matches any unique violation.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolationCode {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// mapForeignKeyViolation translates a foreign-key violation into
// store.ErrInvalidEntity naming the missing referent. Returns nil when err is
// not a foreign-key violation.
func mapForeignKeyViolation(err error, entity string, id int64) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgForeignKeyViolationCode {
		return nil
	}
	return fmt.Errorf("%w: %s with ID %d not found", store.ErrInvalidEntity, entity, id)
}
