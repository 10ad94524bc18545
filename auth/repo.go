package auth

import (
	"github.com/jrsteele09/go-edge-auth/auth/authflow"
	"github.com/jrsteele09/go-edge-auth/sessions"
)

// Repos holds all repository dependencies for the AuthorizationService
type Repos struct {
	States   authflow.Repo // Pending authorizations keyed by CSRF state
	Sessions sessions.Repo // Authenticated sessions keyed by derived session id
}
