package provider

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/suPer8Hu/talent-market/internal/auth"
	"github.com/suPer8Hu/talent-market/internal/geo"
	"gorm.io/datatypes"
)

type Service struct {
	repo *Repo
	now  func() time.Time
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo, now: time.Now}
}

type ProfileInput struct {
	Name         string   `json:"name"`
	Bio          string   `json:"bio"`
	Skills       []string `json:"skills"`
	City         string   `json:"city"`
	Area         string   `json:"area"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Pricing      string   `json:"pricing"`
	Availability string   `json:"availability"`
	Phone        string   `json:"phone"`
	Email        string   `json:"email"`
	WhatsApp     string   `json:"whatsapp"`
	ImageURL     *string  `json:"image_url"`
}

// NormalizeSkills trims tags and drops blanks and duplicates, keeping first-seen order.
func NormalizeSkills(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || slices.Contains(out, s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func validCity(city string) bool {
	return slices.Contains(Cities, city)
}

func (in *ProfileInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Skills = NormalizeSkills(in.Skills)
	switch {
	case in.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	case !validCity(in.City):
		return fmt.Errorf("%w: unknown city %q", ErrInvalidProfile, in.City)
	case len(in.Skills) == 0:
		return fmt.Errorf("%w: at least one skill is required", ErrInvalidProfile)
	case (in.Latitude == nil) != (in.Longitude == nil):
		return fmt.Errorf("%w: latitude and longitude go together", ErrInvalidProfile)
	}
	if in.Latitude != nil && !geo.Valid(geo.Coordinate{Latitude: *in.Latitude, Longitude: *in.Longitude}) {
		return fmt.Errorf("%w: coordinate out of range", ErrInvalidProfile)
	}
	return nil
}

// SaveProfile creates or merges the caller's provider record. Rating is not owner writable
// and survives the merge.
func (s *Service) SaveProfile(ctx context.Context, sess auth.Session, in ProfileInput) (*Provider, error) {
	if !sess.IsProvider() {
		return nil, ErrForbidden
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.Get(ctx, sess.UserID)
	switch {
	case errors.Is(err, ErrNotFound):
		p = &Provider{UserID: sess.UserID, CreatedAt: s.now()}
	case err != nil:
		return nil, err
	}

	p.Name = in.Name
	p.Bio = in.Bio
	p.Skills = datatypes.JSONSlice[string](in.Skills)
	p.Location = Location{City: in.City, Area: in.Area, Latitude: in.Latitude, Longitude: in.Longitude}
	p.Pricing = in.Pricing
	p.Availability = in.Availability
	p.Contact = ContactInfo{Phone: in.Phone, Email: in.Email, WhatsApp: in.WhatsApp}
	if in.ImageURL != nil {
		p.ImageURL = in.ImageURL
	}
	p.UpdatedAt = s.now()

	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("save provider %d: %w", sess.UserID, err)
	}
	return p, nil
}

func (s *Service) GetProfile(ctx context.Context, id uint64) (*Provider, error) {
	return s.repo.Get(ctx, id)
}

// DeleteProfile removes the provider row only; cards, requests and reviews are left behind.
func (s *Service) DeleteProfile(ctx context.Context, sess auth.Session, id uint64) error {
	if !sess.Owns(id) && !sess.IsAdmin() {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) TopRated(ctx context.Context, limit int) ([]Provider, error) {
	if limit <= 0 || limit > 50 {
		limit = 5
	}
	return s.repo.TopRated(ctx, limit)
}

type CardInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ImageURL    *string `json:"image_url"`
}

func (s *Service) AddCard(ctx context.Context, sess auth.Session, in CardInput) (*ServiceCard, error) {
	if !sess.IsProvider() {
		return nil, ErrForbidden
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidCard)
	}
	c := &ServiceCard{
		ID:          uuid.NewString(),
		ProviderID:  sess.UserID,
		Title:       in.Title,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		CreatedAt:   s.now(),
	}
	if err := s.repo.CreateCard(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) DeleteCard(ctx context.Context, sess auth.Session, cardID string) error {
	c, err := s.repo.GetCard(ctx, cardID)
	if err != nil {
		return err
	}
	if !sess.Owns(c.ProviderID) && !sess.IsAdmin() {
		return ErrForbidden
	}
	return s.repo.DeleteCard(ctx, cardID)
}

func (s *Service) ListCards(ctx context.Context, providerID uint64) ([]ServiceCard, error) {
	return s.repo.CardsByProvider(ctx, providerID)
}

func (s *Service) AddReview(ctx context.Context, sess auth.Session, providerID uint64, text string) (*Review, error) {
	if !sess.Authenticated() {
		return nil, ErrForbidden
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidReview)
	}
	if _, err := s.repo.Get(ctx, providerID); err != nil {
		return nil, err
	}
	rv := &Review{
		ID:         uuid.NewString(),
		ProviderID: providerID,
		AuthorID:   sess.UserID,
		AuthorName: sess.DisplayName,
		Text:       text,
		CreatedAt:  s.now(),
	}
	if err := s.repo.CreateReview(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *Service) ListReviews(ctx context.Context, providerID uint64) ([]Review, error) {
	return s.repo.ReviewsByProvider(ctx, providerID)
}

// LogProfileView records a view. Anonymous visitors and providers looking at their own
// profile are not logged.
func (s *Service) LogProfileView(ctx context.Context, providerID, viewerID uint64, at time.Time) error {
	if viewerID == 0 || viewerID == providerID {
		return nil
	}
	if at.IsZero() {
		at = s.now()
	}
	return s.repo.CreateView(ctx, &ProfileView{ProviderID: providerID, ViewerID: viewerID, ViewedAt: at})
}

// ViewCount is the number of logged profile views, shown on the provider dashboard.
func (s *Service) ViewCount(ctx context.Context, providerID uint64) (int64, error) {
	return s.repo.CountViews(ctx, providerID)
}
