package auth

import (
	"slices"
	"strings"
	"time"

	autherrors "github.com/jrsteele09/go-edge-auth/internal/errors"
	"github.com/jrsteele09/go-edge-auth/token/jwt"
)

// Validator checks decoded id token claims against the provider registration.
type Validator struct {
	issuer      string
	clientID    string
	maxTokenAge time.Duration
}

// NewValidator creates a Validator expecting issuer (the provider domain as
// configured) and audience clientID. Tokens issued more than maxTokenAge
// ago are rejected.
func NewValidator(issuer, clientID string, maxTokenAge time.Duration) *Validator {
	return &Validator{
		issuer:      issuer,
		clientID:    clientID,
		maxTokenAge: maxTokenAge,
	}
}

// Validate returns nil for acceptable claims, otherwise an ErrClaimInvalid
// carrying the reason. The reason is for logs only.
func (v *Validator) Validate(claims *jwt.Claims, now time.Time) error {
	if claims == nil {
		return autherrors.Wrapf(autherrors.ErrClaimInvalid, "no claims")
	}

	// The iss claim may carry a single trailing slash the configured domain lacks
	iss := strings.TrimSuffix(claims.Issuer, "/")
	if iss != v.issuer {
		return autherrors.Wrapf(autherrors.ErrClaimInvalid, "token iss value (%s) doesn't match provider domain (%s)", iss, v.issuer)
	}

	if !v.audienceMatches(claims.Audience) {
		return autherrors.Wrapf(autherrors.ErrClaimInvalid, "token aud value (%s) doesn't match client id (%s)", strings.Join(claims.Audience, ","), v.clientID)
	}

	nowSecs := now.Unix()
	if claims.ExpiresAt == nil || claims.ExpiresAt.Unix() < nowSecs {
		return autherrors.Wrapf(autherrors.ErrClaimInvalid, "token exp value is before current time")
	}

	oldest := now.Add(-v.maxTokenAge).Unix()
	if claims.IssuedAt == nil || claims.IssuedAt.Unix() < oldest {
		return autherrors.Wrapf(autherrors.ErrClaimInvalid, "token was issued more than %s ago", v.maxTokenAge)
	}

	return nil
}

// Valid reports whether claims pass Validate.
func (v *Validator) Valid(claims *jwt.Claims, now time.Time) bool {
	return v.Validate(claims, now) == nil
}

func (v *Validator) audienceMatches(aud []string) bool {
	switch len(aud) {
	case 0:
		return false
	case 1:
		return aud[0] == v.clientID
	default:
		return slices.Contains(aud, v.clientID)
	}
}
