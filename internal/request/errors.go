package request

import "errors"

var (
	ErrNotFound        = errors.New("request not found")
	ErrUnauthenticated = errors.New("login required")
	ErrForbidden       = errors.New("not allowed")
	ErrDuplicateActive = errors.New("an active request with this provider already exists")
	ErrNotPending      = errors.New("request already decided")
	ErrInvalidStatus   = errors.New("invalid status")
)
