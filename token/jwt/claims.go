package jwt

import (
	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of the id token payload that is validated before a
// session is created. Aud accepts a single string or an array.
type Claims struct {
	Issuer    string              `json:"iss"`
	Audience  jwtlib.ClaimStrings `json:"aud"`
	Subject   string              `json:"sub"`
	IssuedAt  *jwtlib.NumericDate `json:"iat"`
	ExpiresAt *jwtlib.NumericDate `json:"exp"`
}
