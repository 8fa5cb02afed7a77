package db

import (
	"errors"

	"github.com/jackc/pgconn"
	pgconnv5 "github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

// IsUniqueViolation reports a Postgres unique_violation from either pgconn
// generation. The gorm postgres driver surfaces pgx v5 errors; the older
// package still appears when callers wrap raw pgconn errors.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconnv5.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	var legacyErr *pgconn.PgError
	if errors.As(err, &legacyErr) {
		return legacyErr.Code == uniqueViolationCode
	}
	return false
}
