package auth

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken(secret, "user-123")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	uid, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if uid != "user-123" {
		t.Fatalf("user id = %q, want user-123", uid)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken([]byte("secret-a"), "user-123")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseToken([]byte("secret-b"), token); err == nil {
		t.Fatal("token accepted with the wrong secret")
	}
}

func TestTokenGarbage(t *testing.T) {
	if _, err := ParseToken([]byte("secret"), "not.a.token"); err == nil {
		t.Fatal("garbage token accepted")
	}
}
