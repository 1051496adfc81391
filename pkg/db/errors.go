package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// IsUniqueViolation reports whether err is a unique constraint violation. When
// constraintName is provided the violated constraint must match it.
func IsUniqueViolation(err error, constraintName string) bool {
	return isViolation(err, pgUniqueViolation, constraintName, "UNIQUE constraint failed", "duplicate key value")
}

// IsCheckViolation reports whether err is a CHECK constraint violation.
func IsCheckViolation(err error, constraintName string) bool {
	return isViolation(err, pgCheckViolation, constraintName, "CHECK constraint failed", "violates check constraint")
}

func isViolation(err error, pgCode, constraintName string, markers ...string) bool {
	if err == nil {
		return false
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == pgCode && matchesConstraint(pgxErr.ConstraintName, constraintName)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgCode && matchesConstraint(pqErr.Constraint, constraintName)
	}

	msg := err.Error()
	for _, marker := range markers {
		if strings.Contains(msg, marker) {
			return constraintName == "" || sqliteMentions(msg, constraintName)
		}
	}
	return false
}

// sqliteMentions matches sqlite's "UNIQUE constraint failed: users.email"
// wording against a "<table>_<column>_key" constraint name, as well as
// messages that name the index directly.
func sqliteMentions(msg, constraintName string) bool {
	if strings.Contains(msg, constraintName) {
		return true
	}
	base := strings.TrimSuffix(strings.TrimSuffix(constraintName, "_key"), "_check")
	for i := 0; i < len(base); i++ {
		if base[i] != '_' {
			continue
		}
		if strings.Contains(msg, base[:i]+"."+base[i+1:]) {
			return true
		}
	}
	return false
}

func matchesConstraint(actual, want string) bool {
	return want == "" || actual == want
}
