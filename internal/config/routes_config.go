package config

import "strings"

type RoutesConfig interface {
	GetCallbackPath() string
	GetLogoutPath() string
	GetProtectedRoutes() []string
}

type Routes struct {
	CallbackPath    string `env:"CALLBACK_PATH" envDefault:"/auth"`
	LogoutPath      string `env:"LOGOUT_PATH" envDefault:"/logout"`
	ProtectedRoutes string `env:"PROTECTED_ROUTES"`
}

var _ RoutesConfig = Routes{}

func (r Routes) GetCallbackPath() string {
	return r.CallbackPath
}

func (r Routes) GetLogoutPath() string {
	return r.LogoutPath
}

// GetProtectedRoutes returns the regular expressions of paths that require a
// session. PROTECTED_ROUTES is whitespace separated, so patterns may contain
// commas.
func (r Routes) GetProtectedRoutes() []string {
	return strings.Fields(r.ProtectedRoutes)
}
