package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-ddd-postboard/internal/domain/repository"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidText         = "22P02"
)

// uniqueFields maps unique constraint names to the field they guard.
var uniqueFields = map[string]string{
	"users_email_key": "email",
}

// translate maps driver errors of reads and deletes onto the repository error taxonomy.
// A malformed uuid can never match a row, so it reads as not found.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeForeignKeyViolation:
		return repository.ErrInUse
	case codeInvalidText:
		return repository.ErrNotFound
	}
	return err
}

// translateInsert maps driver errors of inserts. Here a foreign key violation or a malformed
// reference id means the referenced row does not exist.
func translateInsert(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		field, ok := uniqueFields[pgErr.ConstraintName]
		if !ok {
			field = pgErr.ColumnName
		}
		return &repository.DuplicateError{Field: field}
	case codeForeignKeyViolation, codeInvalidText:
		return repository.ErrReferenceNotFound
	}
	return err
}

// exists treats a malformed id as a missing row.
func exists(ok bool, err error) (bool, error) {
	if errors.Is(translate(err), repository.ErrNotFound) {
		return false, nil
	}
	return ok, err
}
