package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gormsqlite "github.com/glebarez/sqlite"
	"github.com/suPer8Hu/talent-market/internal/auth"
	"github.com/suPer8Hu/talent-market/internal/chat"
	"github.com/suPer8Hu/talent-market/internal/config"
	"github.com/suPer8Hu/talent-market/internal/db"
	"github.com/suPer8Hu/talent-market/internal/events"
	"github.com/suPer8Hu/talent-market/internal/geo"
	"github.com/suPer8Hu/talent-market/internal/httpapi/handlers"
	"github.com/suPer8Hu/talent-market/internal/models"
	"github.com/suPer8Hu/talent-market/internal/provider"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() { gin.SetMode(gin.TestMode) }

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	cfg    config.Config
}

type deniedLocator struct{}

func (deniedLocator) Locate(ctx context.Context) (geo.Coordinate, error) {
	return geo.Coordinate{}, errors.New("permission denied")
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, config.Config{JWTSecret: "test-secret"})
}

func newTestEnvWith(t *testing.T, cfg config.Config) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := gorm.Open(gormsqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	log := zap.NewNop()

	provSvc := provider.NewService(provider.NewRepo(gdb))
	pub := events.Inline{D: &events.Dispatcher{Views: provSvc, Log: log}}
	h := handlers.NewHandler(gdb, cfg, chat.NewLocalStore(chat.NewMemoryBlobStore()), pub, log)
	h.LocatorFor = func(string) geo.Locator { return deniedLocator{} }

	return &testEnv{t: t, db: gdb, router: NewRouter(h, log), cfg: cfg}
}

func (e *testEnv) do(method, path, token string, body any) (int, envelope) {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			e.t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		e.t.Fatalf("%s %s: decode envelope: %v (%s)", method, path, err, w.Body.String())
	}
	return w.Code, env
}

func (e *testEnv) mustOK(method, path, token string, body any, out any) {
	e.t.Helper()
	code, env := e.do(method, path, token, body)
	if code != http.StatusOK || env.Code != 0 {
		e.t.Fatalf("%s %s: expected ok, got %d %+v", method, path, code, env)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			e.t.Fatalf("%s %s: decode data: %v", method, path, err)
		}
	}
}

func (e *testEnv) signup(email, name, userType string) (uint64, string) {
	e.t.Helper()
	var out struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	e.mustOK(http.MethodPost, "/users", "", map[string]string{
		"email": email, "display_name": name, "password": "secret1", "confirm_password": "secret1", "user_type": userType,
	}, &out)
	return out.User.ID, out.Token
}

func (e *testEnv) adminToken() string {
	e.t.Helper()
	admin := models.User{Email: "admin@example.com", DisplayName: "Admin", PasswordHash: "x", UserType: models.RoleAdmin}
	if err := e.db.Create(&admin).Error; err != nil {
		e.t.Fatalf("seed admin: %v", err)
	}
	tok, err := auth.SignJWT(auth.SessionFor(&admin), e.cfg.JWTSecret, time.Hour)
	if err != nil {
		e.t.Fatalf("sign: %v", err)
	}
	return tok
}

type providerView struct {
	ID             uint64 `json:"id"`
	Name           string `json:"name"`
	ContactVisible bool   `json:"contact_visible"`
	Contact        struct {
		Phone string `json:"phone"`
	} `json:"contact_info"`
}

type profilePage struct {
	Provider      providerView `json:"provider"`
	RequestStatus string       `json:"request_status"`
}

type contactRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (e *testEnv) seedProvider(email, name, city string, lat, lng float64) (uint64, string) {
	e.t.Helper()
	id, tok := e.signup(email, name, "provider")
	e.mustOK(http.MethodPut, "/me/profile", tok, map[string]any{
		"name": name, "skills": []string{"Home Cleaner", " Home Cleaner "}, "city": city, "area": "Clifton",
		"latitude": lat, "longitude": lng, "pricing": "PKR 2,000 per visit", "availability": "Weekends",
		"phone": "0300-1234567",
	}, nil)
	return id, tok
}

func TestSignupValidation(t *testing.T) {
	e := newTestEnv(t)
	code, _ := e.do(http.MethodPost, "/users", "", map[string]string{
		"email": "a@example.com", "display_name": "A", "password": "short", "confirm_password": "short",
	})
	if code != http.StatusBadRequest {
		t.Fatalf("short password: expected 400, got %d", code)
	}
	code, _ = e.do(http.MethodPost, "/users", "", map[string]string{
		"email": "a@example.com", "display_name": "A", "password": "secret1", "confirm_password": "secret2",
	})
	if code != http.StatusBadRequest {
		t.Fatalf("mismatch: expected 400, got %d", code)
	}

	e.signup("a@example.com", "A", "customer")
	code, env := e.do(http.MethodPost, "/login", "", map[string]string{"email": "A@example.com", "password": "secret1"})
	if code != http.StatusOK || env.Code != 0 {
		t.Fatalf("login: %d %+v", code, env)
	}
	code, _ = e.do(http.MethodPost, "/login", "", map[string]string{"email": "a@example.com", "password": "wrong"})
	if code != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401, got %d", code)
	}
}

// create, accept, then contact info and chat open up
func TestRequestLifecycleOverHTTP(t *testing.T) {
	e := newTestEnv(t)
	provID, provTok := e.seedProvider("sana@example.com", "Sana Cleaning", "Karachi", 24.8, 67.0)
	_, custTok := e.signup("ali@example.com", "Ali", "customer")

	var page profilePage
	e.mustOK(http.MethodGet, fmt.Sprintf("/providers/%d", provID), custTok, nil, &page)
	if page.Provider.ContactVisible || page.Provider.Contact.Phone != "" || page.RequestStatus != "" {
		t.Fatalf("contact must be hidden before any request: %+v", page)
	}

	var cr contactRequest
	e.mustOK(http.MethodPost, "/requests", custTok, map[string]any{"provider_id": provID, "message": "Need cleaning Saturday"}, &cr)
	if cr.Status != "pending" {
		t.Fatalf("expected pending, got %+v", cr)
	}
	code, _ := e.do(http.MethodPost, "/requests", custTok, map[string]any{"provider_id": provID, "message": "again"})
	if code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d", code)
	}
	code, _ = e.do(http.MethodPost, "/requests", provTok, map[string]any{"provider_id": provID})
	if code != http.StatusForbidden {
		t.Fatalf("provider creating request: expected 403, got %d", code)
	}

	var incoming struct {
		Requests []contactRequest `json:"requests"`
		Counts   map[string]int64 `json:"counts"`
		Views    int64            `json:"profile_views"`
	}
	e.mustOK(http.MethodGet, "/requests/incoming?status=pending", provTok, nil, &incoming)
	if len(incoming.Requests) != 1 || incoming.Requests[0].ID != cr.ID || incoming.Counts["pending"] != 1 || incoming.Views != 1 {
		t.Fatalf("unexpected incoming: %+v", incoming)
	}

	code, _ = e.do(http.MethodGet, "/requests/"+cr.ID+"/chat", custTok, nil)
	if code != http.StatusConflict {
		t.Fatalf("chat before accept: expected 409, got %d", code)
	}
	code, _ = e.do(http.MethodPost, "/requests/"+cr.ID+"/accept", custTok, nil)
	if code != http.StatusForbidden {
		t.Fatalf("customer accepting: expected 403, got %d", code)
	}

	e.mustOK(http.MethodPost, "/requests/"+cr.ID+"/accept", provTok, nil, &cr)
	if cr.Status != "accepted" {
		t.Fatalf("expected accepted, got %+v", cr)
	}
	code, _ = e.do(http.MethodPost, "/requests/"+cr.ID+"/reject", provTok, nil)
	if code != http.StatusConflict {
		t.Fatalf("reject after accept: expected 409, got %d", code)
	}

	e.mustOK(http.MethodGet, fmt.Sprintf("/providers/%d", provID), custTok, nil, &page)
	if !page.Provider.ContactVisible || page.Provider.Contact.Phone != "0300-1234567" || page.RequestStatus != "accepted" {
		t.Fatalf("contact must be visible after accept: %+v", page)
	}

	e.mustOK(http.MethodPost, "/requests/"+cr.ID+"/chat", provTok, map[string]string{"text": "See you at 10"}, nil)
	e.mustOK(http.MethodPost, "/requests/"+cr.ID+"/chat", custTok, map[string]string{"text": "Great"}, nil)
	var conv struct {
		Messages []chat.Message `json:"messages"`
	}
	e.mustOK(http.MethodGet, "/requests/"+cr.ID+"/chat", custTok, nil, &conv)
	if len(conv.Messages) != 3 {
		t.Fatalf("expected seed plus two messages, got %+v", conv.Messages)
	}
	if conv.Messages[0].Text != "Need cleaning Saturday" || conv.Messages[1].Sender != chat.SenderProvider {
		t.Fatalf("unexpected conversation: %+v", conv.Messages)
	}

	var views int64
	e.db.Model(&provider.ProfileView{}).Where("provider_id = ?", provID).Count(&views)
	if views != 2 {
		t.Fatalf("expected two recorded profile views, got %d", views)
	}
}

func TestBrowseOverHTTP(t *testing.T) {
	e := newTestEnv(t)
	e.seedProvider("k@example.com", "Karachi Clean", "Karachi", 24.8, 67.0)
	e.seedProvider("l@example.com", "Lahore Clean", "Lahore", 31.5, 74.3)

	var res struct {
		Providers            []providerView `json:"providers"`
		LiveLocationDisabled bool           `json:"live_location_disabled"`
	}
	e.mustOK(http.MethodGet, "/providers?live=true&lat=24.81&lng=67.01", "", nil, &res)
	if len(res.Providers) != 1 || res.Providers[0].Name != "Karachi Clean" {
		t.Fatalf("expected only the nearby provider, got %+v", res.Providers)
	}
	if res.Providers[0].Contact.Phone != "" {
		t.Fatalf("listing must redact contact for anonymous visitors")
	}

	e.mustOK(http.MethodGet, "/providers?live=true", "", nil, &res)
	if !res.LiveLocationDisabled || len(res.Providers) != 2 {
		t.Fatalf("denied location must disable the distance filter: %+v", res)
	}

	e.mustOK(http.MethodGet, "/providers?city=Lahore&price_max=5000&availability=weekend", "", nil, &res)
	if len(res.Providers) != 1 || res.Providers[0].Name != "Lahore Clean" {
		t.Fatalf("unexpected city/refinement result: %+v", res.Providers)
	}

	code, _ := e.do(http.MethodGet, "/providers?lat=1", "", nil)
	if code != http.StatusBadRequest {
		t.Fatalf("lat without lng: expected 400, got %d", code)
	}
}

// admin deletes a provider; the customer's request survives
func TestAdminDeleteLeavesRequests(t *testing.T) {
	e := newTestEnv(t)
	provID, _ := e.seedProvider("sana@example.com", "Sana Cleaning", "Karachi", 24.8, 67.0)
	_, custTok := e.signup("ali@example.com", "Ali", "customer")
	admin := e.adminToken()

	var cr contactRequest
	e.mustOK(http.MethodPost, "/requests", custTok, map[string]any{"provider_id": provID}, &cr)

	var listed []providerView
	e.mustOK(http.MethodGet, "/admin/providers?q=karachi", admin, nil, &listed)
	if len(listed) != 1 || !listed[0].ContactVisible {
		t.Fatalf("admin search by city: %+v", listed)
	}
	code, _ := e.do(http.MethodGet, "/admin/providers", custTok, nil)
	if code != http.StatusForbidden {
		t.Fatalf("customer on admin route: expected 403, got %d", code)
	}
	code, _ = e.do(http.MethodDelete, fmt.Sprintf("/providers/%d", provID), custTok, nil)
	if code != http.StatusForbidden {
		t.Fatalf("customer deleting: expected 403, got %d", code)
	}

	e.mustOK(http.MethodDelete, fmt.Sprintf("/providers/%d", provID), admin, nil, nil)

	var res struct {
		Providers []providerView `json:"providers"`
	}
	e.mustOK(http.MethodGet, "/providers", "", nil, &res)
	if len(res.Providers) != 0 {
		t.Fatalf("deleted provider still listed: %+v", res.Providers)
	}
	code, _ = e.do(http.MethodGet, fmt.Sprintf("/providers/%d", provID), custTok, nil)
	if code != http.StatusNotFound {
		t.Fatalf("deleted provider page: expected 404, got %d", code)
	}

	var mine []contactRequest
	e.mustOK(http.MethodGet, "/requests/mine", custTok, nil, &mine)
	if len(mine) != 1 || mine[0].ID != cr.ID {
		t.Fatalf("orphaned request must remain listed: %+v", mine)
	}
	e.mustOK(http.MethodGet, "/requests/"+cr.ID, custTok, nil, nil)
}

func TestCardsAndReviewsOverHTTP(t *testing.T) {
	e := newTestEnv(t)
	provID, provTok := e.seedProvider("sana@example.com", "Sana Cleaning", "Karachi", 24.8, 67.0)
	_, custTok := e.signup("ali@example.com", "Ali", "customer")

	var card struct {
		ID string `json:"id"`
	}
	e.mustOK(http.MethodPost, "/me/cards", provTok, map[string]string{"title": "Deep clean", "description": "3 rooms"}, &card)
	code, _ := e.do(http.MethodPost, "/me/cards", custTok, map[string]string{"title": "x"})
	if code != http.StatusForbidden {
		t.Fatalf("customer adding card: expected 403, got %d", code)
	}

	var cards []provider.ServiceCard
	e.mustOK(http.MethodGet, fmt.Sprintf("/providers/%d/cards", provID), "", nil, &cards)
	if len(cards) != 1 || cards[0].Title != "Deep clean" {
		t.Fatalf("unexpected cards: %+v", cards)
	}
	code, _ = e.do(http.MethodDelete, "/cards/"+card.ID, custTok, nil)
	if code != http.StatusForbidden {
		t.Fatalf("customer deleting card: expected 403, got %d", code)
	}
	e.mustOK(http.MethodDelete, "/cards/"+card.ID, provTok, nil, nil)

	code, _ = e.do(http.MethodPost, fmt.Sprintf("/providers/%d/reviews", provID), custTok, map[string]string{"text": "  "})
	if code != http.StatusBadRequest {
		t.Fatalf("empty review: expected 400, got %d", code)
	}
	e.mustOK(http.MethodPost, fmt.Sprintf("/providers/%d/reviews", provID), custTok, map[string]string{"text": "Spotless"}, nil)
	var reviews []provider.Review
	e.mustOK(http.MethodGet, fmt.Sprintf("/providers/%d/reviews", provID), "", nil, &reviews)
	if len(reviews) != 1 || reviews[0].AuthorName != "Ali" {
		t.Fatalf("unexpected reviews: %+v", reviews)
	}
}

func pingFrom(r *gin.Engine, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Forwarded-For", forwardedFor)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimit_ForwardedForNotTrustedByDefault(t *testing.T) {
	e := newTestEnvWith(t, config.Config{JWTSecret: "test-secret", RateLimitPerMin: 2})

	allowed := 0
	for i := 0; i < 50; i++ {
		if pingFrom(e.router, fmt.Sprintf("203.0.113.%d", i+1)) == http.StatusOK {
			allowed++
		}
	}
	if allowed != 2 {
		t.Fatalf("spoofed X-Forwarded-For must share the peer's bucket: %d allowed", allowed)
	}
}

func TestRateLimit_TrustedProxyForwardsClientIP(t *testing.T) {
	// httptest requests arrive from 192.0.2.1
	e := newTestEnvWith(t, config.Config{JWTSecret: "test-secret", RateLimitPerMin: 2, TrustedProxies: []string{"192.0.2.0/24"}})

	for i := 0; i < 2; i++ {
		if code := pingFrom(e.router, "203.0.113.7"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
	}
	if code := pingFrom(e.router, "203.0.113.7"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for the same client, got %d", code)
	}
	if code := pingFrom(e.router, "203.0.113.8"); code != http.StatusOK {
		t.Fatalf("another client behind the proxy has its own bucket, got %d", code)
	}
}

func TestUnknownRoute(t *testing.T) {
	e := newTestEnv(t)
	code, env := e.do(http.MethodGet, "/nope", "", nil)
	if code != http.StatusNotFound || env.Code != 40400 {
		t.Fatalf("expected 404 envelope, got %d %+v", code, env)
	}
}
