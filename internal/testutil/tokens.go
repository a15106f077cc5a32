// Package testutil mints bearer tokens for tests.
package testutil

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var signingKey = []byte("litelist-test-signing-key-0123456789abcdef")

// Token returns an HS256 token for subject that expires at exp.
func Token(tb testing.TB, subject string, exp time.Time) string {
	tb.Helper()

	jti := uuid.New().String()
	claims := &jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(exp.Add(-15 * time.Minute)),
		ExpiresAt: jwt.NewNumericDate(exp),
		ID:        jti,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		tb.Fatalf("sign token: %v", err)
	}
	return token
}

// TokenExpiringIn returns a token with d left before expiry relative to now.
func TokenExpiringIn(tb testing.TB, subject string, now time.Time, d time.Duration) string {
	tb.Helper()
	return Token(tb, subject, now.Add(d))
}

// RawToken assembles a token from an arbitrary JSON payload and a fixed header.
func RawToken(payload string) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	return header + "." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".c2lnbmF0dXJl"
}
