package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/talent-market/internal/auth"
	"github.com/suPer8Hu/talent-market/internal/common"
)

const (
	UserIDKey  = "user_id"
	SessionKey = "session"
)

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

func setSession(c *gin.Context, s auth.Session) {
	c.Set(SessionKey, s)
	c.Set(UserIDKey, s.UserID)
}

// AuthRequired rejects requests without a valid bearer token.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearerToken(c)
		if tok == "" {
			common.Abort(c, http.StatusUnauthorized, 40101, "missing bearer token")
			return
		}
		s, err := auth.ParseJWT(tok, secret)
		if err != nil {
			common.Abort(c, http.StatusUnauthorized, 40102, "invalid token")
			return
		}
		setSession(c, s)
		c.Next()
	}
}

// OptionalAuth attaches a session when a valid token is present and otherwise lets the
// request through as anonymous.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok := bearerToken(c); tok != "" {
			if s, err := auth.ParseJWT(tok, secret); err == nil {
				setSession(c, s)
			}
		}
		c.Next()
	}
}

// AdminOnly must run after AuthRequired.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !SessionFrom(c).IsAdmin() {
			common.Abort(c, http.StatusForbidden, 40301, "admin only")
			return
		}
		c.Next()
	}
}

// SessionFrom returns the caller's session, or the anonymous zero value.
func SessionFrom(c *gin.Context) auth.Session {
	v, ok := c.Get(SessionKey)
	if !ok {
		return auth.Session{}
	}
	s, _ := v.(auth.Session)
	return s
}
