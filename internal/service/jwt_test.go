package service

import (
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	InitJWT("test-secret")

	token, err := GenerateJWT("user-1", "user@example.com", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	id, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if id.UserID != "user-1" {
		t.Fatalf("UserID = %q", id.UserID)
	}
	if id.Email != "user@example.com" {
		t.Fatalf("Email = %q", id.Email)
	}
}

func TestJWTExpired(t *testing.T) {
	InitJWT("test-secret")

	token, err := GenerateJWT("user-1", "user@example.com", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ParseJWT(token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestJWTGarbage(t *testing.T) {
	InitJWT("test-secret")
	if _, err := ParseJWT("not.a.token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestJWTWrongSecret(t *testing.T) {
	InitJWT("secret-a")
	token, err := GenerateJWT("user-1", "", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	InitJWT("secret-b")
	if _, err := ParseJWT(token); err == nil {
		t.Fatal("expected error for token signed with another secret")
	}
}
