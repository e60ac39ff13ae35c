package domain

import "errors"

var (
	// ErrBookmarkRequired is returned when a memo or status mutation is
	// attempted on a book the user has not bookmarked.
	ErrBookmarkRequired = errors.New("bookmark required")

	// ErrInvalidStatus is returned for a reading status outside
	// {todo, reading, done}.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrUnauthenticated is returned when an operation requires a user id
	// and none is available.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrItemUnavailable is returned when neither a handed-in payload nor a
	// catalog lookup produced a book to display.
	ErrItemUnavailable = errors.New("item unavailable")
)
