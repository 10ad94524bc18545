package server

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/jrsteele09/go-edge-auth/auth"
	"github.com/rs/zerolog"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyAuthorization stores the *auth.Authorization of an authenticated request
const ContextKeyAuthorization ContextKey = "authorization"

// AuthorizationFromContext returns the authorization the gate attached, or nil.
func AuthorizationFromContext(r *http.Request) *auth.Authorization {
	a, _ := r.Context().Value(ContextKeyAuthorization).(*auth.Authorization)
	return a
}

// NewUpstreamProxy forwards to target. Authenticated requests carry the
// access token as a bearer credential; any Authorization header a client
// sent without a session is removed.
func NewUpstreamProxy(target *url.URL) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Host = pr.In.Host
			if a := AuthorizationFromContext(pr.In); a != nil {
				pr.Out.Header.Set("Authorization", "Bearer "+a.AccessToken)
			} else {
				pr.Out.Header.Del("Authorization")
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Upstream request failed")
			w.WriteHeader(http.StatusBadGateway)
		},
	}
}
