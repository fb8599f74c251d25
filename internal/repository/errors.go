package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the postgres class 23 code for duplicate keys.
const uniqueViolation = "23505"

// IsDuplicate reports whether err is a unique constraint violation.
func IsDuplicate(err error) bool {
	var pgerr *pgconn.PgError
	return errors.As(err, &pgerr) && pgerr.Code == uniqueViolation
}

// IsNotFound reports whether err means the query matched no rows.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
