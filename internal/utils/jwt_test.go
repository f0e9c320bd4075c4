package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken(testSecret, "user-1", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tok.ID == "" {
		t.Fatal("expected a jti")
	}
	claims, err := ParseAccessToken(testSecret, tok.Token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID() != "user-1" {
		t.Errorf("subject = %q", claims.UserID())
	}
	if claims.ID != tok.ID {
		t.Errorf("jti = %q, want %q", claims.ID, tok.ID)
	}
}

func TestAccessTokenDefaultTTLIsSevenDays(t *testing.T) {
	tok, err := NewAccessToken(testSecret, "u", 0)
	if err != nil {
		t.Fatal(err)
	}
	got := time.Until(tok.Exp)
	if got < 7*24*time.Hour-time.Minute || got > 7*24*time.Hour {
		t.Fatalf("expiry in %v, want about 7 days", got)
	}
}

func TestParseAccessTokenRejects(t *testing.T) {
	valid, _ := NewAccessToken(testSecret, "u", time.Hour)

	expiredClaims := Claims{jwt.RegisteredClaims{
		Subject:   "u",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}
	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims).SignedString([]byte(testSecret))

	noExpClaims := Claims{jwt.RegisteredClaims{Subject: "u"}}
	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, noExpClaims).SignedString([]byte(testSecret))

	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{jwt.RegisteredClaims{
		Subject:   "u",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}).SignedString([]byte(testSecret))

	cases := map[string]struct {
		secret, raw string
	}{
		"wrong secret":    {"other", valid.Token},
		"tampered":        {testSecret, valid.Token + "x"},
		"garbage":         {testSecret, "not.a.jwt"},
		"empty":           {testSecret, ""},
		"expired":         {testSecret, expired},
		"missing exp":     {testSecret, noExp},
		"other algorithm": {testSecret, hs512},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseAccessToken(tc.secret, tc.raw); err != ErrInvalidToken {
				t.Fatalf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}
