package sessions

import (
	"net/http"
	"time"
)

// DefaultCookieName is used when no name is configured.
const DefaultCookieName = "AUTH-SESSION"

// CookieCodec reads and writes the session cookie.
type CookieCodec struct {
	name string
}

// NewCookieCodec creates a codec for the named cookie
func NewCookieCodec(name string) CookieCodec {
	if name == "" {
		name = DefaultCookieName
	}
	return CookieCodec{name: name}
}

// Name returns the cookie name.
func (c CookieCodec) Name() string {
	return c.name
}

// SessionID returns the session id carried by r, or "" when there is none.
func (c CookieCodec) SessionID(r *http.Request) string {
	cookie, err := r.Cookie(c.name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SessionCookie issues sessionID until expiresAt.
func (c CookieCodec) SessionCookie(sessionID string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     c.name,
		Value:    sessionID,
		Path:     "/",
		Expires:  expiresAt.UTC(),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie empties the session cookie and expires it immediately.
func (c CookieCodec) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
