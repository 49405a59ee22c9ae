package request

import (
	"context"
	"strings"
	"time"

	"github.com/suPer8Hu/talent-market/internal/auth"
	"github.com/suPer8Hu/talent-market/internal/common"
	"github.com/suPer8Hu/talent-market/internal/events"
	"github.com/suPer8Hu/talent-market/internal/logging"
	"github.com/suPer8Hu/talent-market/internal/provider"
	"go.uber.org/zap"
)

// ProviderLookup resolves the provider a request is addressed to.
type ProviderLookup interface {
	Get(ctx context.Context, id uint64) (*provider.Provider, error)
}

type Service struct {
	repo      *Repo
	providers ProviderLookup
	events    events.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewService(repo *Repo, providers ProviderLookup, pub events.Publisher, log *zap.Logger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{repo: repo, providers: providers, events: pub, log: logging.OrNop(log), now: time.Now}
}

// Create opens a pending request from the session user to providerID.
//
// The active-pair check runs before the insert and is advisory; the unique active key
// on the table catches a creator that raced past it.
func (s *Service) Create(ctx context.Context, sess auth.Session, providerID uint64, message string) (*ContactRequest, error) {
	if !sess.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if sess.IsProvider() {
		return nil, ErrForbidden
	}
	p, err := s.providers.Get(ctx, providerID)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsActive(ctx, sess.UserID, providerID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateActive
	}

	id, err := common.NewULID()
	if err != nil {
		return nil, err
	}
	now := s.now()
	req := &ContactRequest{
		ID:           id,
		UserID:       sess.UserID,
		UserName:     sess.DisplayName,
		ProviderID:   providerID,
		ProviderName: p.Name,
		Message:      strings.TrimSpace(message),
		Status:       StatusPending,
		ActiveKey:    activeKey(sess.UserID, providerID),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		if again, getErr := s.repo.ExistsActive(ctx, sess.UserID, providerID); getErr == nil && again {
			return nil, ErrDuplicateActive
		}
		return nil, err
	}

	s.publish(ctx, events.RequestCreated, req)
	return req, nil
}

func (s *Service) Accept(ctx context.Context, sess auth.Session, id string) (*ContactRequest, error) {
	return s.decide(ctx, sess, id, StatusAccepted)
}

func (s *Service) Reject(ctx context.Context, sess auth.Session, id string) (*ContactRequest, error) {
	return s.decide(ctx, sess, id, StatusRejected)
}

// decide applies a provider decision. Decided requests are terminal: a second
// accept or reject returns ErrNotPending and leaves the row untouched.
func (s *Service) decide(ctx context.Context, sess auth.Session, id string, to Status) (*ContactRequest, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.IsProvider() || !sess.Owns(req.ProviderID) {
		return nil, ErrForbidden
	}
	if req.Status != StatusPending {
		return nil, ErrNotPending
	}

	changed, err := s.repo.UpdateStatus(ctx, id, StatusPending, to)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, ErrNotPending
	}
	req.Status = to
	req.UpdatedAt = s.now()
	if !to.Active() {
		req.ActiveKey = nil
	}

	typ := events.RequestAccepted
	if to == StatusRejected {
		typ = events.RequestRejected
	}
	s.publish(ctx, typ, req)
	return req, nil
}

func (s *Service) publish(ctx context.Context, typ events.Type, req *ContactRequest) {
	err := s.events.Publish(ctx, events.Event{
		Type:       typ,
		RequestID:  req.ID,
		ProviderID: req.ProviderID,
		UserID:     req.UserID,
		At:         s.now(),
	})
	if err != nil {
		s.log.Warn("publish request event failed",
			zap.String("type", string(typ)), zap.String("request_id", req.ID), zap.Error(err))
	}
}

// Get returns a request to one of its parties or an admin. Anyone else gets ErrNotFound.
func (s *Service) Get(ctx context.Context, sess auth.Session, id string) (*ContactRequest, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.UserID != req.UserID && !sess.Owns(req.ProviderID) && !sess.IsAdmin() {
		return nil, ErrNotFound
	}
	return req, nil
}

// ListForProvider is the provider's incoming queue, optionally narrowed to one status.
func (s *Service) ListForProvider(ctx context.Context, sess auth.Session, status Status) ([]ContactRequest, map[Status]int64, error) {
	if !sess.IsProvider() {
		return nil, nil, ErrForbidden
	}
	if status != "" && !status.Valid() {
		return nil, nil, ErrInvalidStatus
	}
	list, err := s.repo.ByProvider(ctx, sess.UserID, status)
	if err != nil {
		return nil, nil, err
	}
	counts, err := s.repo.CountByStatus(ctx, sess.UserID)
	if err != nil {
		return nil, nil, err
	}
	return list, counts, nil
}

// ListForUser is the customer's outgoing requests, newest first. Requests to providers
// that were deleted since are still listed.
func (s *Service) ListForUser(ctx context.Context, sess auth.Session) ([]ContactRequest, error) {
	if !sess.Authenticated() {
		return nil, ErrUnauthenticated
	}
	return s.repo.ByUser(ctx, sess.UserID)
}

// ContactAccess reports whether the session may see providerID's contact channels.
func (s *Service) ContactAccess(ctx context.Context, sess auth.Session, providerID uint64) (bool, error) {
	switch {
	case sess.Owns(providerID), sess.IsAdmin():
		return true, nil
	case !sess.Authenticated():
		return false, nil
	}
	return s.repo.HasAccepted(ctx, sess.UserID, providerID)
}

// StatusFor is the relationship between the session and a provider as shown on the
// profile page. The owner always counts as accepted; empty means no request yet.
func (s *Service) StatusFor(ctx context.Context, sess auth.Session, providerID uint64) (Status, error) {
	if sess.Owns(providerID) {
		return StatusAccepted, nil
	}
	if !sess.Authenticated() {
		return "", nil
	}
	ok, err := s.repo.HasAccepted(ctx, sess.UserID, providerID)
	if err != nil {
		return "", err
	}
	if ok {
		return StatusAccepted, nil
	}
	latest, err := s.repo.Latest(ctx, sess.UserID, providerID)
	if err != nil || latest == nil {
		return "", err
	}
	return latest.Status, nil
}
