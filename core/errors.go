package core

import "errors"

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")              // login: no ledger match
	ErrPasswordMismatch   = errors.New("passwords do not match")                 // signup check 1
	ErrUserExists         = errors.New("user already exists")                    // signup check 2
	ErrMissingFields      = errors.New("please fill all fields")                 // signup check 3
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters") // signup check 4
)

// Ticket errors
var (
	ErrCreateFailed   = errors.New("failed to create ticket")
	ErrUpdateFailed   = errors.New("failed to update ticket")
	ErrDeleteFailed   = errors.New("failed to delete ticket")
	ErrTicketNotFound = errors.New("ticket not found")
)

// Validation errors (caller input)
var (
	ErrTitleRequired   = errors.New("title is required")
	ErrInvalidStatus   = errors.New("invalid ticket status")
	ErrInvalidPriority = errors.New("invalid ticket priority")
	ErrInvalidFilter   = errors.New("invalid ticket filter")
	ErrCommentRequired = errors.New("comment text is required")
)

// Storage errors
var (
	ErrKeyNotFound   = errors.New("key not found")
	ErrCacheNotFound = errors.New("key not found in cache")
)

// Routing errors
var (
	ErrRouteNotFound = errors.New("route not found")
	ErrRouteConflict = errors.New("route conflict")
)

// Config errors
var (
	ErrStorageRequired = errors.New("storage adapter is required")
)
