package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the stores translate into domain errors.
const (
	SQLStateUniqueViolation     = "23505"
	SQLStateForeignKeyViolation = "23503"
)

// IsNoRows reports whether err is pgx's "no rows in result set".
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// UniqueViolation reports whether err is a unique-constraint violation and,
// if so, the name of the violated constraint.
func UniqueViolation(err error) (string, bool) {
	return violation(err, SQLStateUniqueViolation)
}

// ForeignKeyViolation reports whether err is a foreign-key violation and,
// if so, the name of the violated constraint.
func ForeignKeyViolation(err error) (string, bool) {
	return violation(err, SQLStateForeignKeyViolation)
}

func violation(err error, code string) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return pgErr.ConstraintName, true
	}
	return "", false
}
