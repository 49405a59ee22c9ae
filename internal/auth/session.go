package auth

import "github.com/suPer8Hu/talent-market/internal/models"

// Session is the authenticated caller handed to the domain services.
// The zero value is an anonymous visitor.
type Session struct {
	UserID      uint64
	DisplayName string
	Role        models.Role
}

func (s Session) Authenticated() bool { return s.UserID != 0 }

func (s Session) IsProvider() bool { return s.Authenticated() && s.Role == models.RoleProvider }

func (s Session) IsAdmin() bool { return s.Authenticated() && s.Role == models.RoleAdmin }

// Owns reports whether the session belongs to the provider keyed by providerID.
func (s Session) Owns(providerID uint64) bool {
	return s.Authenticated() && s.UserID == providerID
}

func SessionFor(u *models.User) Session {
	return Session{UserID: u.ID, DisplayName: u.DisplayName, Role: u.UserType}
}
