package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/talent-market/internal/common"
	"github.com/suPer8Hu/talent-market/internal/httpapi/handlers"
	"github.com/suPer8Hu/talent-market/internal/httpapi/middleware"
	"go.uber.org/zap"
)

func NewRouter(h *handlers.Handler, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	// ClientIP only honours X-Forwarded-For from these peers; the rate limiter keys on it
	if err := r.SetTrustedProxies(h.Cfg.TrustedProxies); err != nil {
		log.Warn("invalid TRUSTED_PROXIES, trusting none", zap.Strings("proxies", h.Cfg.TrustedProxies), zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.NewRateLimiter(h.Cfg.RateLimitPerMin, log).Middleware())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/ping", h.Ping)

	// users
	r.POST("/users", h.CreateUser)
	r.POST("/login", h.Login)

	// public reads; a token, when present, unlocks contact info and request status
	pub := r.Group("/")
	pub.Use(middleware.OptionalAuth(h.Cfg.JWTSecret))
	pub.GET("/providers", h.BrowseProviders)
	pub.GET("/providers/top", h.TopProviders)
	pub.GET("/providers/:id", h.GetProvider)
	pub.GET("/providers/:id/cards", h.ListCards)
	pub.GET("/providers/:id/reviews", h.ListReviews)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(h.Cfg.JWTSecret))
	authGroup.GET("/me", h.Me)
	authGroup.PUT("/me/profile", h.SaveProfile)
	authGroup.POST("/me/cards", h.AddCard)
	authGroup.DELETE("/cards/:card_id", h.DeleteCard)
	authGroup.DELETE("/providers/:id", h.DeleteProvider)
	authGroup.POST("/providers/:id/reviews", h.AddReview)

	// contact requests
	authGroup.POST("/requests", h.CreateRequest)
	authGroup.GET("/requests/mine", h.MyRequests)
	authGroup.GET("/requests/incoming", h.IncomingRequests)
	authGroup.GET("/requests/:id", h.GetRequest)
	authGroup.POST("/requests/:id/accept", h.AcceptRequest)
	authGroup.POST("/requests/:id/reject", h.RejectRequest)

	// chat (accepted requests only)
	authGroup.GET("/requests/:id/chat", h.ListChatMessages)
	authGroup.POST("/requests/:id/chat", h.SendChatMessage)

	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired(h.Cfg.JWTSecret), middleware.AdminOnly())
	admin.GET("/providers", h.AdminProviders)

	return r
}
