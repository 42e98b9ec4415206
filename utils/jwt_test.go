package utils

import (
	"strings"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret")
	if err != nil {
		t.Fatal(err)
	}
	token, exp, err := issuer.GenerateToken("user-1", "ada@example.com", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(exp) <= 0 {
		t.Fatal("expiry in the past")
	}
	sub, email, err := issuer.ValidateToken(token)
	if err != nil || sub != "user-1" || email != "ada@example.com" {
		t.Fatalf("got %q %q %v", sub, email, err)
	}

	other, _ := NewTokenIssuer("another-secret")
	if _, _, err := other.ValidateToken(token); err == nil {
		t.Fatal("token accepted with the wrong secret")
	}

	expired, _, _ := issuer.GenerateToken("user-1", "", -time.Minute)
	if _, _, err := issuer.ValidateToken(expired); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	if _, err := NewTokenIssuer(""); err == nil {
		t.Fatal("empty secret accepted")
	}
}

func TestHashTokenStable(t *testing.T) {
	if HashToken("abc") != HashToken("abc") || HashToken("abc") == HashToken("abd") {
		t.Fatal("HashToken is not a stable digest")
	}
	if len(HashToken("abc")) != 64 {
		t.Fatal("expected hex sha256")
	}
}

func TestIDs(t *testing.T) {
	if id := NewOrderID(); !strings.HasPrefix(id, "order_") || len(id) != len("order_")+27 {
		t.Fatalf("unexpected order id %q", id)
	}
	if NewUserID() == NewUserID() {
		t.Fatal("user ids collide")
	}
	code, err := GenerateNumericCode(6)
	if err != nil {
		t.Fatal(err)
	}
	if len(code) != 6 || strings.Trim(code, "0123456789") != "" {
		t.Fatalf("bad code %q", code)
	}
}
