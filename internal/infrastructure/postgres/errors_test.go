package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-postboard/internal/domain/repository"
)

func TestTranslateInsertUniqueViolationOnEmail(t *testing.T) {
	err := translateInsert(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	var dup *repository.DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "email", dup.Field)
	assert.True(t, repository.IsDuplicate(err, "email"))
}

func TestTranslateInsertUnknownUniqueConstraintUsesColumn(t *testing.T) {
	err := translateInsert(&pgconn.PgError{Code: "23505", ConstraintName: "other_key", ColumnName: "slug"})
	assert.True(t, repository.IsDuplicate(err, "slug"))
	assert.False(t, repository.IsDuplicate(err, "email"))
}

func TestTranslateInsertMissingReference(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "posts_author_id_fkey"}
	assert.ErrorIs(t, translateInsert(fk), repository.ErrReferenceNotFound)
	assert.ErrorIs(t, translateInsert(fmt.Errorf("insert: %w", fk)), repository.ErrReferenceNotFound)
	assert.ErrorIs(t, translateInsert(&pgconn.PgError{Code: "22P02"}), repository.ErrReferenceNotFound)
}

func TestTranslateDeleteStillReferenced(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "comments_post_id_fkey"}
	assert.ErrorIs(t, translate(fk), repository.ErrInUse)
}

func TestTranslateNotFound(t *testing.T) {
	assert.ErrorIs(t, translate(pgx.ErrNoRows), repository.ErrNotFound)
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: "22P02"}), repository.ErrNotFound)
}

func TestTranslatePassesThroughOtherErrors(t *testing.T) {
	boom := errors.New("connection reset")
	assert.Same(t, boom, translate(boom))
	assert.Same(t, boom, translateInsert(boom))
	assert.Nil(t, translate(nil))
	assert.Nil(t, translateInsert(nil))

	canceled := &pgconn.PgError{Code: "57014"}
	assert.Same(t, canceled, translate(canceled))
}

func TestExistsTreatsMalformedIDAsMissing(t *testing.T) {
	ok, err := exists(false, &pgconn.PgError{Code: "22P02"})
	require.NoError(t, err)
	assert.False(t, ok)

	boom := errors.New("boom")
	_, err = exists(false, boom)
	assert.Same(t, boom, err)

	ok, err = exists(true, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}
