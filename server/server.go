package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-edge-auth/auth"
	"github.com/jrsteele09/go-edge-auth/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Authorizer is the authentication flow the edge drives on every request.
type Authorizer interface {
	Authorize(ctx context.Context, r *http.Request) (*auth.Decision, error)
	HandleRedirect(ctx context.Context, r *http.Request) (*auth.RedirectResult, error)
	Logout(ctx context.Context, r *http.Request) (*auth.LogoutResult, error)
}

type Server struct {
	env          string // Environment (e.g., "DEV", "PROD")
	mux          *http.ServeMux
	routes       []string
	auth         Authorizer
	protected    *RouteMatcher
	upstream     http.Handler
	callbackPath string
	logoutPath   string
	gatherer     prometheus.Gatherer
	logger       zerolog.Logger
}

// ServerOption defines a function type to modify the Server instance.
type ServerOption func(*Server)

// WithGatherer serves metrics from g instead of the default registry
func WithGatherer(g prometheus.Gatherer) ServerOption {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithUpstream replaces the reverse proxy built from UPSTREAM_URL
func WithUpstream(h http.Handler) ServerOption {
	return func(s *Server) {
		s.upstream = h
	}
}

// WithLogger sets the base logger attached to every request context
func WithLogger(l zerolog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = l
	}
}

func New(cfg config.Config, authorizer Authorizer, opts ...ServerOption) (*Server, error) {
	if authorizer == nil {
		return nil, fmt.Errorf("[Server New] authorizer is required")
	}

	protected, err := NewRouteMatcher(cfg.GetProtectedRoutes())
	if err != nil {
		return nil, fmt.Errorf("[Server New] %w", err)
	}

	s := &Server{
		env:          cfg.GetEnv(),
		mux:          http.NewServeMux(),
		auth:         authorizer,
		protected:    protected,
		callbackPath: cfg.GetCallbackPath(),
		logoutPath:   cfg.GetLogoutPath(),
		gatherer:     prometheus.DefaultGatherer,
		logger:       log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.upstream == nil {
		target, err := url.Parse(cfg.GetUpstreamURL())
		if err != nil {
			return nil, fmt.Errorf("[Server New] invalid upstream url: %w", err)
		}
		s.upstream = NewUpstreamProxy(target)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "", route
		}
		s.logger.Info().Msgf("[%-19s] %s", colourMethod(method), path)
	}
}
