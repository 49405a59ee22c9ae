package events

import (
	"context"
	"fmt"
	"time"

	"github.com/suPer8Hu/talent-market/internal/logging"
	"go.uber.org/zap"
)

// ViewRecorder persists profile views.
type ViewRecorder interface {
	LogProfileView(ctx context.Context, providerID, viewerID uint64, at time.Time) error
}

// Dispatcher applies an event. The worker calls it per delivery; Inline calls it in process.
type Dispatcher struct {
	Views ViewRecorder
	Log   *zap.Logger
}

func (d *Dispatcher) Handle(ctx context.Context, e Event) error {
	log := logging.OrNop(d.Log)
	switch e.Type {
	case ProfileViewed:
		return d.Views.LogProfileView(ctx, e.ProviderID, e.UserID, e.At)
	case RequestCreated:
		log.Info("notify provider of new contact request",
			zap.String("request_id", e.RequestID), zap.Uint64("provider_id", e.ProviderID), zap.Uint64("user_id", e.UserID))
		return nil
	case RequestAccepted, RequestRejected:
		log.Info("notify customer of request decision",
			zap.String("request_id", e.RequestID), zap.String("decision", string(e.Type)), zap.Uint64("user_id", e.UserID))
		return nil
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
}

// Inline publishes by handling the event synchronously. Used when no broker is configured.
type Inline struct {
	D *Dispatcher
}

func (p Inline) Publish(ctx context.Context, e Event) error {
	return p.D.Handle(ctx, e)
}
