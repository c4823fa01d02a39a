package database

import (
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes
const (
	codeUndefinedTable  = "42P01"
	codeUniqueViolation = "23505"
	codeForeignKey      = "23503"
)

var (
	pgTablePattern     = regexp.MustCompile(`relation "([^"]+)" does not exist`)
	sqliteTablePattern = regexp.MustCompile(`no such table: ([A-Za-z0-9_."]+)`)
)

func sqlState(err error) (string, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.Message
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Message
	}
	return "", ""
}

// IsUndefinedTable reports whether err means a table has not been created yet
func IsUndefinedTable(err error) bool {
	if err == nil {
		return false
	}
	if code, _ := sqlState(err); code == codeUndefinedTable {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "no such table") || pgTablePattern.MatchString(msg)
}

// MissingTableName extracts the table name from an undefined-table error, or ""
func MissingTableName(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if _, m := sqlState(err); m != "" {
		msg = m
	}
	if match := pgTablePattern.FindStringSubmatch(msg); len(match) == 2 {
		return match[1]
	}
	if match := sqliteTablePattern.FindStringSubmatch(msg); len(match) == 2 {
		return strings.Trim(match[1], `"`)
	}
	return ""
}

// IsUniqueViolation reports whether err is a unique constraint failure
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	if code, _ := sqlState(err); code == codeUniqueViolation {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsForeignKeyViolation reports whether err is a foreign key constraint failure
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	if code, _ := sqlState(err); code == codeForeignKey {
		return true
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
