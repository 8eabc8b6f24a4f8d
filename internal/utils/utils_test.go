package utils

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("s3cret", Identity{UserID: 42, Role: "ADMIN", Name: "admin_teste"}, 5)
	if err != nil {
		t.Fatal(err)
	}
	id, err := ParseAccessToken("s3cret", tok.Token)
	if err != nil {
		t.Fatal(err)
	}
	if id.UserID != 42 || id.Role != "ADMIN" || id.Name != "admin_teste" {
		t.Fatalf("identity = %+v", id)
	}
	if _, err := ParseAccessToken("other", tok.Token); err != ErrInvalidToken {
		t.Fatalf("wrong secret: got %v", err)
	}
}

func TestExpiredAccessToken(t *testing.T) {
	tok, err := NewAccessToken("s3cret", Identity{UserID: 1, Role: "USER"}, -1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseAccessToken("s3cret", tok.Token); err != ErrInvalidToken {
		t.Fatalf("expired token accepted: %v", err)
	}
}

func TestRefreshTokenHash(t *testing.T) {
	rt, err := NewRefreshToken(7)
	if err != nil {
		t.Fatal(err)
	}
	if len(rt.Raw) != 96 {
		t.Fatalf("raw length = %d", len(rt.Raw))
	}
	h := HashRefreshRaw(rt.Raw)
	if len(h) != 64 || h != HashRefreshRaw(rt.Raw) || strings.Contains(h, rt.Raw) {
		t.Fatalf("unexpected hash %q", h)
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("senha123", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyPassword(hash, "senha123") || VerifyPassword(hash, "senha124") {
		t.Fatal("password verification broken")
	}
	if _, err := HashPassword("123", bcrypt.MinCost); err != ErrWeakPassword {
		t.Fatalf("short password: got %v", err)
	}
}
