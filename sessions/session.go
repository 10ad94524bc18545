// Package sessions persists authenticated sessions and encodes the cookie
// that points at them.
package sessions

import (
	"encoding/json"

	autherrors "github.com/jrsteele09/go-edge-auth/internal/errors"
	"github.com/jrsteele09/go-edge-auth/oauth2"
)

// Session is a stored provider token response. Raw holds the body exactly
// as the provider returned it; the typed fields are decoded from Raw.
type Session struct {
	oauth2.TokenResponse
	Raw json.RawMessage
}

// Parse decodes a stored token response. access_token and id_token are
// required; anything else is ErrSessionCorrupt.
func Parse(raw []byte) (*Session, error) {
	var tokens oauth2.TokenResponse
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return nil, autherrors.Wrapf(autherrors.ErrSessionCorrupt, "decode session: %v", err)
	}
	if tokens.AccessToken == "" || tokens.IDToken == "" {
		return nil, autherrors.Wrapf(autherrors.ErrSessionCorrupt, "session is missing access_token or id_token")
	}

	return &Session{
		TokenResponse: tokens,
		Raw:           append(json.RawMessage(nil), raw...),
	}, nil
}
