package repos

import (
	"database/sql"
	"errors"
	"strings"
)

var (
	// ErrNotFound signals a referenced row id that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInUse signals a delete blocked by a RESTRICT foreign key.
	ErrInUse = errors.New("row is referenced by dependent records")
	// ErrDuplicateEmail signals a unique-email violation on user creation.
	ErrDuplicateEmail = errors.New("email already registered")
)

// classify maps driver errors onto the repo sentinels. modernc.org/sqlite
// surfaces constraint violations only through the error text.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "FOREIGN KEY constraint"):
		return ErrInUse
	case strings.Contains(msg, "UNIQUE constraint") && strings.Contains(msg, "email"):
		return ErrDuplicateEmail
	}
	return err
}
