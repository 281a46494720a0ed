package application

import "errors"

// Error kinds. Every *Error unwraps to exactly one of them.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrPersistence  = errors.New("persistence failure")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("unavailable")
)

// Error is returned by every service operation. Message is safe to show to a client;
// the underlying cause is only reachable through errors.Is / errors.As.
type Error struct {
	Kind    error
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.cause}
}

func failure(message string, cause error) *Error {
	return &Error{Kind: ErrPersistence, Message: message, cause: cause}
}

var (
	ErrEmailRequired          = &Error{Kind: ErrValidation, Message: "email is required"}
	ErrTitleAndAuthorRequired = &Error{Kind: ErrValidation, Message: "title and author are required"}
	ErrCommentFieldsRequired  = &Error{Kind: ErrValidation, Message: "content, post, and author are required"}

	ErrEmailTaken = &Error{Kind: ErrConflict, Message: "a user with this email already exists"}

	ErrUserNotFound   = &Error{Kind: ErrNotFound, Message: "user not found"}
	ErrAuthorNotFound = &Error{Kind: ErrNotFound, Message: "author not found"}
	ErrPostNotFound   = &Error{Kind: ErrNotFound, Message: "post not found"}

	ErrInvalidCredentials = &Error{Kind: ErrUnauthorized, Message: "invalid credentials"}

	ErrSnapshotUnavailable = &Error{Kind: ErrUnavailable, Message: "snapshot storage not configured"}
)

const (
	msgFetchUsers     = "failed to fetch users"
	msgFetchUser      = "failed to fetch user"
	msgCreateUser     = "failed to create user"
	msgDeleteUser     = "failed to delete user"
	msgFetchPosts     = "failed to fetch posts"
	msgCreatePost     = "failed to create post"
	msgDeletePost     = "failed to delete post"
	msgSearchPosts    = "failed to search posts"
	msgCreateComment  = "failed to create comment"
	msgDeleteComment  = "failed to delete comment"
	msgExportSnapshot = "failed to export snapshot"
)
