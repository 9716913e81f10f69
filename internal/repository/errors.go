package repository

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a requested record is not found in the repository.
// This abstracts away the underlying storage implementation (SQL, NoSQL, etc.)
// from the service layer.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert collides with an existing key.
var ErrDuplicate = errors.New("record already exists")

// ErrInvalidTable is returned when attempting to clear a table that is not whitelisted.
// This prevents SQL injection attacks.
var ErrInvalidTable = errors.New("invalid table name")

// translateConstraint maps SQLite uniqueness violations to ErrDuplicate
func translateConstraint(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		if sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicate
		}
	}
	return err
}
