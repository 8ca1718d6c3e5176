package store

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrPermissionDenied is returned when the database rejects a statement for
// lack of privilege, e.g. a row-level security policy.
var ErrPermissionDenied = errors.New("permission denied")

const pqInsufficientPrivilege = "42501"

// translate maps driver errors to the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqInsufficientPrivilege {
		return errors.Join(ErrPermissionDenied, err)
	}
	return err
}

// requireAffected turns a zero-row update or delete into ErrNotFound.
func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
