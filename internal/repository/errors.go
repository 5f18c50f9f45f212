package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrUniqueViolation reports an insert that collided with a unique
// constraint, such as a duplicate username racing past the pre-check.
var ErrUniqueViolation = errors.New("unique constraint violation")

const pgUniqueViolationCode = "23505"

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
		return ErrUniqueViolation
	}
	return err
}
