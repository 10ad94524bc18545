package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-edge-auth/auth"
	"github.com/rs/zerolog"
)

// EdgeHandler gates every request. The callback and logout paths are
// answered here; everything else is proxied upstream, or redirected to the
// provider login when the path is protected and there is no session.
func (s *Server) EdgeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		decision, err := s.auth.Authorize(ctx, r)
		if err != nil {
			renderError(w, r, err)
			return
		}

		switch r.URL.Path {
		case s.callbackPath:
			s.handleCallback(w, r)
			return
		case s.logoutPath:
			if decision.Authorized && s.handleLogout(w, r, decision) {
				return
			}
		}

		if !decision.Authorized {
			if s.protected.Protected(r.URL.Path) {
				http.Redirect(w, r, decision.RedirectURL, http.StatusFound)
				return
			}
			s.upstream.ServeHTTP(w, r)
			return
		}

		ctx = context.WithValue(ctx, ContextKeyAuthorization, decision.Authorization)
		s.upstream.ServeHTTP(w, r.WithContext(ctx))
	}
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	result, err := s.auth.HandleRedirect(r.Context(), r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	// A callback this server did not start
	if result == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if result.Cookie != nil {
		http.SetCookie(w, result.Cookie)
	}
	switch result.Status {
	case 0:
		w.WriteHeader(http.StatusOK)
	case http.StatusFound:
		w.Header().Set("Location", result.Location)
		w.WriteHeader(http.StatusFound)
	default:
		http.Error(w, http.StatusText(result.Status), result.Status)
	}
}

// handleLogout reports whether the response was written.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, decision *auth.Decision) bool {
	out, err := s.auth.Logout(r.Context(), r)
	if err != nil {
		renderError(w, r, err)
		return true
	}
	if out == nil {
		return false
	}

	http.SetCookie(w, out.Cookie)
	http.Redirect(w, r, decision.LogoutURL, http.StatusFound)
	return true
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Error rendering route")
	http.Error(w, "Error rendering route: "+err.Error(), http.StatusInternalServerError)
}
