package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := NewToken("partner_1700000000000_k3f9x2", "p@example.com", "Pat", "partner", "secret", time.Hour)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}

	claims, err := Parse(token, "secret")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != "partner_1700000000000_k3f9x2" {
		t.Fatalf("wrong user id: %s", claims.UserID)
	}
	if claims.Role != "partner" || claims.Email != "p@example.com" {
		t.Fatalf("wrong claims: %+v", claims)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	token, err := NewToken("admin_1_x", "a@example.com", "A", "admin", "secret", time.Hour)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	if _, err := Parse(token, "other-secret"); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParse_ExpiredToken(t *testing.T) {
	token, err := NewToken("admin_1_x", "a@example.com", "A", "admin", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	if _, err := Parse(token, "secret"); err == nil {
		t.Fatal("expected expiry error")
	}
}
