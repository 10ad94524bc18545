// Package jwttest mints compact id tokens for tests.
package jwttest

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const signingKey = "jwttest-signing-key"

// Mint signs claims with HS256. The edge never verifies signatures, the
// key only makes the token well formed.
func Mint(t testing.TB, claims map[string]any) string {
	t.Helper()

	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims(claims)).SignedString([]byte(signingKey))
	if err != nil {
		t.Fatalf("jwttest: sign token: %v", err)
	}
	return token
}

// IDTokenClaims returns a valid claim set for issuer/audience at now.
func IDTokenClaims(issuer, audience, subject string, now time.Time) map[string]any {
	return map[string]any{
		"iss":   issuer + "/",
		"aud":   audience,
		"sub":   subject,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
		"email": subject + "@example.com",
		"name":  "Test User",
	}
}
