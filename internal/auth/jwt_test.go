package auth

import (
	"testing"
	"time"

	"github.com/suPer8Hu/talent-market/internal/models"
)

func TestSignAndParseJWT(t *testing.T) {
	in := Session{UserID: 42, DisplayName: "Ayesha", Role: models.RoleProvider}
	tok, err := SignJWT(in, "secret", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	out, err := ParseJWT(tok, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if out != in {
		t.Fatalf("session mismatch: got %+v want %+v", out, in)
	}
}

func TestParseJWT_Rejects(t *testing.T) {
	tok, err := SignJWT(Session{UserID: 1, Role: models.RoleCustomer}, "secret", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseJWT(tok, "other"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}

	expired, err := SignJWT(Session{UserID: 1}, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseJWT(expired, "secret"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(h, "hunter22") {
		t.Fatalf("expected password to match")
	}
	if CheckPassword(h, "hunter23") {
		t.Fatalf("expected wrong password to fail")
	}
}
