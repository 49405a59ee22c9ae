package provider

import "errors"

var (
	ErrNotFound       = errors.New("provider not found")
	ErrCardNotFound   = errors.New("service card not found")
	ErrForbidden      = errors.New("not allowed")
	ErrInvalidProfile = errors.New("invalid profile")
	ErrInvalidCard    = errors.New("invalid service card")
	ErrInvalidReview  = errors.New("invalid review")
)
