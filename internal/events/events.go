// Package events carries marketplace side effects (request lifecycle, profile views)
// from the API to the worker.
package events

import (
	"context"
	"time"
)

type Type string

const (
	RequestCreated  Type = "request.created"
	RequestAccepted Type = "request.accepted"
	RequestRejected Type = "request.rejected"
	ProfileViewed   Type = "profile.viewed"
)

type Event struct {
	Type       Type      `json:"type"`
	RequestID  string    `json:"request_id,omitempty"`
	ProviderID uint64    `json:"provider_id"`
	UserID     uint64    `json:"user_id"`
	At         time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(ctx context.Context, e Event) error { return nil }
