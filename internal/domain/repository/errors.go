package repository

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrReferenceNotFound is returned when an insert references a missing row.
	ErrReferenceNotFound = errors.New("referenced record not found")
	// ErrInUse is returned when a delete would orphan dependent rows.
	ErrInUse = errors.New("record still referenced")
)

// DuplicateError reports a unique constraint violation on Field.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return "duplicate value for " + e.Field
}

// IsDuplicate reports whether err is a unique violation on field.
func IsDuplicate(err error, field string) bool {
	var dup *DuplicateError
	return errors.As(err, &dup) && dup.Field == field
}

// Transactor runs fn in a single transaction. Repositories called with the ctx passed to fn
// take part in that transaction; the transaction is rolled back when fn returns an error.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
