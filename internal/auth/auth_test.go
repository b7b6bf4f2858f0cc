package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "correct horse battery staple") {
		t.Fatal("expected password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatal("wrong password must not verify")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tok, err := MakeToken("user-1", "secret")
	if err != nil {
		t.Fatalf("make token: %v", err)
	}

	claims, err := ParseToken(tok, "secret")
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("expected uid user-1, got %s", claims.UserID)
	}

	// expiry should sit ~15 minutes out
	until := time.Until(claims.ExpiresAt.Time)
	if until < 14*time.Minute || until > 16*time.Minute {
		t.Fatalf("unexpected expiry window: %v", until)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	tok, err := MakeToken("user-1", "secret")
	if err != nil {
		t.Fatalf("make token: %v", err)
	}
	if _, err := ParseToken(tok, "other-secret"); err == nil {
		t.Fatal("expected parse to fail with the wrong secret")
	}
}

func TestTokenGarbage(t *testing.T) {
	if _, err := ParseToken("not-a-jwt", "secret"); err == nil {
		t.Fatal("expected parse to fail on garbage input")
	}
}

func TestTokenAlgorithmConfusion(t *testing.T) {
	// a token signed with "none" must be rejected outright
	c := Claims{UserID: "user-1"}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, c).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign unsecured token: %v", err)
	}
	if _, err := ParseToken(tok, "secret"); err == nil {
		t.Fatal("expected unsecured token to be rejected")
	}
}

func TestTokenExpired(t *testing.T) {
	c := Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-16 * time.Minute)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := ParseToken(tok, "secret"); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestGenerateRefreshToken(t *testing.T) {
	raw, hash, err := GenerateRefreshToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(raw) != 64 {
		t.Fatalf("expected 64 char raw token, got %d", len(raw))
	}
	if hash == raw {
		t.Fatal("hash must differ from the raw token")
	}
	if HashRefreshToken(raw) != hash {
		t.Fatal("HashRefreshToken must reproduce the stored hash")
	}
	if strings.ContainsAny(raw, "ghijklmnopqrstuvwxyz") {
		t.Fatal("raw token should be hex encoded")
	}

	// two tokens never collide
	raw2, _, err := GenerateRefreshToken()
	if err != nil {
		t.Fatalf("generate second: %v", err)
	}
	if raw == raw2 {
		t.Fatal("tokens must be unique")
	}
}
