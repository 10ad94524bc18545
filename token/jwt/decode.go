package jwt

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"unicode/utf8"

	autherrors "github.com/jrsteele09/go-edge-auth/internal/errors"
	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/charmap"
)

// DecodePayload returns the claims segment of a compact token as text.
// The signature is NOT verified: callers trust the token because it came
// straight from the provider's token endpoint over TLS.
func DecodePayload(ctx context.Context, rawToken string) (string, error) {
	segments := strings.Split(rawToken, ".")
	if len(segments) != 3 {
		return "", autherrors.Wrapf(autherrors.ErrMalformedToken, "expected 3 segments, got %d", len(segments))
	}

	payload := strings.NewReplacer("-", "+", "_", "/").Replace(segments[1])
	switch len(payload) % 4 {
	case 0:
	case 2:
		payload += "=="
	case 3:
		payload += "="
	default:
		return "", autherrors.Wrapf(autherrors.ErrMalformedToken, "illegal base64url string")
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", autherrors.Wrapf(autherrors.ErrMalformedToken, "base64 decode: %v", err)
	}

	if utf8.Valid(decoded) {
		return string(decoded), nil
	}

	// Not UTF-8: fall back to one code point per byte rather than failing.
	zerolog.Ctx(ctx).Warn().Msg("token payload is not valid UTF-8, decoding as ISO-8859-1")
	latin1, err := charmap.ISO8859_1.NewDecoder().Bytes(decoded)
	if err != nil {
		return string(decoded), nil
	}
	return string(latin1), nil
}

// ParseClaims decodes the typed claims used for validation.
func ParseClaims(ctx context.Context, rawToken string) (*Claims, error) {
	payload, err := DecodePayload(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	var claims Claims
	if err := json.Unmarshal([]byte(payload), &claims); err != nil {
		return nil, autherrors.Wrapf(autherrors.ErrMalformedToken, "claims json: %v", err)
	}
	return &claims, nil
}

// UserInfo decodes the full claims payload as a generic map.
func UserInfo(ctx context.Context, rawToken string) (map[string]any, error) {
	payload, err := DecodePayload(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	var info map[string]any
	if err := json.Unmarshal([]byte(payload), &info); err != nil {
		return nil, autherrors.Wrapf(autherrors.ErrMalformedToken, "claims json: %v", err)
	}
	return info, nil
}
