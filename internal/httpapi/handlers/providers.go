package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/talent-market/internal/auth"
	"github.com/suPer8Hu/talent-market/internal/common"
	"github.com/suPer8Hu/talent-market/internal/directory"
	"github.com/suPer8Hu/talent-market/internal/events"
	"github.com/suPer8Hu/talent-market/internal/geo"
	"github.com/suPer8Hu/talent-market/internal/httpapi/middleware"
	"github.com/suPer8Hu/talent-market/internal/provider"
	"go.uber.org/zap"
)

// providerView is a provider as shown to one caller. Contact channels are blank
// unless ContactVisible.
type providerView struct {
	provider.Provider
	ContactVisible bool `json:"contact_visible"`
}

func present(p provider.Provider, visible bool) providerView {
	if !visible {
		p = p.Redacted()
	}
	return providerView{Provider: p, ContactVisible: visible}
}

// listing views only reveal contacts to the owner and admins; accepted customers see
// them on the profile page.
func presentList(sess auth.Session, ps []provider.Provider) []providerView {
	out := make([]providerView, 0, len(ps))
	for _, p := range ps {
		out = append(out, present(p, sess.Owns(p.UserID) || sess.IsAdmin()))
	}
	return out
}

type browseQuery struct {
	Q            string   `form:"q"`
	Skill        string   `form:"skill"`
	City         string   `form:"city"`
	Live         bool     `form:"live"`
	Lat          *float64 `form:"lat"`
	Lng          *float64 `form:"lng"`
	PriceMin     *float64 `form:"price_min"`
	PriceMax     *float64 `form:"price_max"`
	MinRating    float64  `form:"min_rating"`
	Availability string   `form:"availability"`
}

func splitTags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (h *Handler) BrowseProviders(c *gin.Context) {
	var bq browseQuery
	if err := c.ShouldBindQuery(&bq); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid query")
		return
	}
	if (bq.Lat == nil) != (bq.Lng == nil) {
		common.Fail(c, http.StatusBadRequest, 10002, "lat and lng go together")
		return
	}

	q := directory.Query{
		Filter: directory.Filter{
			SearchTerm:      bq.Q,
			Skill:           bq.Skill,
			City:            bq.City,
			UseLiveLocation: bq.Live,
		},
		Refinement: directory.Refinement{
			PriceMin:     bq.PriceMin,
			PriceMax:     bq.PriceMax,
			MinRating:    bq.MinRating,
			Availability: splitTags(bq.Availability),
		},
	}
	if bq.Live {
		if bq.Lat != nil {
			q.Locator = geo.Fixed{Latitude: *bq.Lat, Longitude: *bq.Lng}
		} else if h.LocatorFor != nil {
			q.Locator = h.LocatorFor(c.ClientIP())
		}
	}

	res, err := h.Directory.Browse(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, gin.H{
		"providers":              presentList(middleware.SessionFrom(c), res.Providers),
		"live_location_disabled": res.LiveLocationDisabled,
		"user_coordinate":        res.UserCoordinate,
	})
}

type topQuery struct {
	Limit int `form:"limit"`
}

func (h *Handler) TopProviders(c *gin.Context) {
	var tq topQuery
	_ = c.ShouldBindQuery(&tq)
	list, err := h.Providers.TopRated(c.Request.Context(), tq.Limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, presentList(middleware.SessionFrom(c), list))
}

// GetProvider is the profile page: the provider, the caller's request status with them,
// their cards and reviews. Viewing another provider's page emits a profile view.
func (h *Handler) GetProvider(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	sess := middleware.SessionFrom(c)

	p, err := h.Providers.GetProfile(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	visible, err := h.Requests.ContactAccess(ctx, sess, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	status, err := h.Requests.StatusFor(ctx, sess, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	cards, err := h.Providers.ListCards(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	reviews, err := h.Providers.ListReviews(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	if sess.Authenticated() && !sess.Owns(id) {
		e := events.Event{Type: events.ProfileViewed, ProviderID: id, UserID: sess.UserID, At: time.Now().UTC()}
		if err := h.Events.Publish(ctx, e); err != nil {
			h.Log.Warn("profile view not recorded", zap.Uint64("provider_id", id), zap.Error(err))
		}
	}

	common.OK(c, gin.H{
		"provider":       present(*p, visible),
		"request_status": status,
		"cards":          cards,
		"reviews":        reviews,
	})
}

func (h *Handler) SaveProfile(c *gin.Context) {
	var in provider.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	p, err := h.Providers.SaveProfile(c.Request.Context(), middleware.SessionFrom(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, present(*p, true))
}

func (h *Handler) DeleteProvider(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	sess := middleware.SessionFrom(c)
	if err := h.Providers.DeleteProfile(c.Request.Context(), sess, id); err != nil {
		h.fail(c, err)
		return
	}
	h.Log.Info("provider deleted", zap.Uint64("provider_id", id), zap.Uint64("by", sess.UserID))
	common.OK(c, gin.H{"deleted": id})
}

func (h *Handler) ListCards(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	cards, err := h.Providers.ListCards(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, cards)
}

func (h *Handler) AddCard(c *gin.Context) {
	var in provider.CardInput
	if err := c.ShouldBindJSON(&in); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	card, err := h.Providers.AddCard(c.Request.Context(), middleware.SessionFrom(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, card)
}

func (h *Handler) DeleteCard(c *gin.Context) {
	cardID := c.Param("card_id")
	if err := h.Providers.DeleteCard(c.Request.Context(), middleware.SessionFrom(c), cardID); err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, gin.H{"deleted": cardID})
}

func (h *Handler) ListReviews(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	reviews, err := h.Providers.ListReviews(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, reviews)
}

type reviewReq struct {
	Text string `json:"text"`
}

func (h *Handler) AddReview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req reviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	rv, err := h.Providers.AddReview(c.Request.Context(), middleware.SessionFrom(c), id, req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, rv)
}

type adminQuery struct {
	Q string `form:"q"`
}

func (h *Handler) AdminProviders(c *gin.Context) {
	var aq adminQuery
	_ = c.ShouldBindQuery(&aq)
	list, err := h.Directory.AdminList(c.Request.Context(), aq.Q)
	if err != nil {
		h.fail(c, err)
		return
	}
	common.OK(c, presentList(middleware.SessionFrom(c), list))
}
