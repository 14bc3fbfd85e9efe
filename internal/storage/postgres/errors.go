package postgres

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	invalidTextRepr     = "22P02"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == uniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgCode(err) == foreignKeyViolation
}

// isInvalidText matches values the column type rejects, such as an id that
// is not a UUID.
func isInvalidText(err error) bool {
	return pgCode(err) == invalidTextRepr
}

// isMissing reports whether a lookup found no row. An id that cannot be a
// UUID cannot name a row either.
func isMissing(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || isInvalidText(err)
}
