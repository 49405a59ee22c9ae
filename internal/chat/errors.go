package chat

import "errors"

var (
	ErrNotAccepted  = errors.New("chat is only open on accepted requests")
	ErrForbidden    = errors.New("not a party to this request")
	ErrEmptyMessage = errors.New("message text required")
)
