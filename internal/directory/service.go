package directory

import (
	"context"

	"github.com/suPer8Hu/talent-market/internal/geo"
	"github.com/suPer8Hu/talent-market/internal/logging"
	"github.com/suPer8Hu/talent-market/internal/provider"
	"go.uber.org/zap"
)

// Source is the read side of the provider store.
type Source interface {
	GetAll(ctx context.Context) ([]provider.Provider, error)
	QueryBySkill(ctx context.Context, skill string) ([]provider.Provider, error)
}

type Service struct {
	src Source
	log *zap.Logger
}

func NewService(src Source, log *zap.Logger) *Service {
	return &Service{src: src, log: logging.OrNop(log)}
}

type Query struct {
	Filter
	Refinement
	// Locator is asked for the user's position when live location is on and
	// UserCoordinate was not supplied.
	Locator geo.Locator
}

type Result struct {
	Providers []provider.Provider `json:"providers"`
	// LiveLocationDisabled is set when the position could not be acquired and the
	// distance filter was switched off.
	LiveLocationDisabled bool            `json:"live_location_disabled"`
	UserCoordinate       *geo.Coordinate `json:"user_coordinate,omitempty"`
}

// Browse loads providers (pre-filtered by skill when one is given) and recomputes the
// listing from scratch.
func (s *Service) Browse(ctx context.Context, q Query) (*Result, error) {
	res := &Result{}
	if q.UseLiveLocation && q.UserCoordinate == nil {
		c, err := geo.Acquire(ctx, q.Locator)
		if err != nil {
			s.log.Info("live location unavailable, distance filter disabled", zap.Error(err))
			q.UseLiveLocation = false
			res.LiveLocationDisabled = true
		} else {
			q.UserCoordinate = c
		}
	}
	if q.UseLiveLocation {
		res.UserCoordinate = q.UserCoordinate
	}

	var (
		all []provider.Provider
		err error
	)
	if q.Skill != "" {
		all, err = s.src.QueryBySkill(ctx, q.Skill)
	} else {
		all, err = s.src.GetAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	out := Apply(all, q.Filter)
	if q.Refinement.Active() {
		out = Refine(out, q.Refinement)
	}
	res.Providers = out
	return res, nil
}

// AdminList returns every provider matching the moderation search term.
func (s *Service) AdminList(ctx context.Context, term string) ([]provider.Provider, error) {
	all, err := s.src.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return AdminSearch(all, term), nil
}
