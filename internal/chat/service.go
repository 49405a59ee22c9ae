package chat

import (
	"context"
	"strings"
	"time"

	"github.com/suPer8Hu/talent-market/internal/auth"
	"github.com/suPer8Hu/talent-market/internal/logging"
	"github.com/suPer8Hu/talent-market/internal/request"
	"go.uber.org/zap"
)

// RequestLookup returns a request the session is a party to.
type RequestLookup interface {
	Get(ctx context.Context, sess auth.Session, id string) (*request.ContactRequest, error)
}

type Service struct {
	store    ChatStore
	requests RequestLookup
	log      *zap.Logger
	now      func() time.Time
}

func NewService(store ChatStore, requests RequestLookup, log *zap.Logger) *Service {
	return &Service{store: store, requests: requests, log: logging.OrNop(log), now: time.Now}
}

// Conversation returns the merged conversation for an accepted request. The request's
// own message opens it, attributed to the customer at the request's creation time.
func (s *Service) Conversation(ctx context.Context, sess auth.Session, requestID string) ([]Message, error) {
	req, _, err := s.open(ctx, sess, requestID)
	if err != nil {
		return nil, err
	}
	stored, err := s.store.Read(ctx, threadOf(req))
	if err != nil {
		return nil, err
	}
	var seed *Message
	if strings.TrimSpace(req.Message) != "" {
		seed = &Message{Sender: SenderCustomer, Text: req.Message, Time: req.CreatedAt}
	}
	return Merge(seed, stored), nil
}

// Send appends a line from the session user. The sender role follows the session: the
// addressed provider writes as provider, the requesting user as customer.
func (s *Service) Send(ctx context.Context, sess auth.Session, requestID, text string) (*Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	req, sender, err := s.open(ctx, sess, requestID)
	if err != nil {
		return nil, err
	}
	m := Message{Sender: sender, Text: text, Time: s.now().UTC()}
	if err := s.store.Append(ctx, threadOf(req), m); err != nil {
		s.log.Error("chat append failed", zap.String("request_id", requestID), zap.Error(err))
		return nil, err
	}
	return &m, nil
}

func threadOf(req *request.ContactRequest) Thread {
	return Thread{RequestID: req.ID, ProviderID: req.ProviderID, UserID: req.UserID}
}

func (s *Service) open(ctx context.Context, sess auth.Session, requestID string) (*request.ContactRequest, Sender, error) {
	if !sess.Authenticated() {
		return nil, "", request.ErrUnauthenticated
	}
	req, err := s.requests.Get(ctx, sess, requestID)
	if err != nil {
		return nil, "", err
	}
	var sender Sender
	switch {
	case sess.Owns(req.ProviderID):
		sender = SenderProvider
	case sess.UserID == req.UserID:
		sender = SenderCustomer
	default:
		return nil, "", ErrForbidden
	}
	if req.Status != request.StatusAccepted {
		return nil, "", ErrNotAccepted
	}
	return req, sender, nil
}
