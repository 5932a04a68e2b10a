package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

const pqUniqueViolation = "23505"

// mapConstraintError turns a Postgres unique violation into ErrAlreadyExists
// so handlers can answer 409 without inspecting driver internals.
func mapConstraintError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return ErrAlreadyExists
	}
	return err
}
