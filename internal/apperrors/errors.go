// Package apperrors defines the error kinds shared by services and handlers.
// Services return *Error values; handlers translate them to HTTP statuses.
package apperrors

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindPermission
	KindNotFound
	KindConflict
	KindUpstream
)

// Error carries a client-facing message and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error   { return &Error{Kind: KindValidation, Message: msg} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }
func Forbidden(msg string) *Error    { return &Error{Kind: KindPermission, Message: msg} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Message: msg} }

func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

var (
	ErrDuplicateReview   = Conflict("you have already reviewed this movie")
	ErrEmptyComment      = Validation("comment cannot be empty")
	ErrCommentTooLong    = Validation("comment cannot exceed 500 characters")
	ErrSelfFollow        = Conflict("you cannot follow yourself")
	ErrAlreadyFollowing  = Conflict("you already follow this user")
	ErrAlreadyListed     = Conflict("movie is already in your watchlist")
	ErrAlreadyWatched    = Conflict("movie is already in your watched list")
	ErrVersionConflict   = Conflict("user record was modified by another request, retry")
	ErrUserNotFound      = NotFound("user not found")
	ErrReviewNotFound    = NotFound("review not found")
	ErrCommentNotFound   = NotFound("comment not found")
	ErrInvalidCredential = Unauthorized("invalid credentials")
)

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client-facing message. Wrapped causes are never included.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal server error"
}

// HTTPStatus maps an error onto the response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindPermission:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
