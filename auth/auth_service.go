package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-edge-auth/auth/authflow"
	"github.com/jrsteele09/go-edge-auth/internal/config"
	autherrors "github.com/jrsteele09/go-edge-auth/internal/errors"
	"github.com/jrsteele09/go-edge-auth/internal/metrics"
	"github.com/jrsteele09/go-edge-auth/internal/random"
	"github.com/jrsteele09/go-edge-auth/oauth2"
	"github.com/jrsteele09/go-edge-auth/sessions"
	"github.com/jrsteele09/go-edge-auth/token/jwt"
	"github.com/rs/zerolog"
)

// IdentityProvider is the part of the provider client the flow depends on.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	LogoutURL() string
	Exchange(ctx context.Context, code string) (*oauth2.TokenResponse, []byte, error)
}

// Config is the configuration the AuthorizationService reads.
type Config interface {
	config.ProviderConfig
	config.SessionConfig
}

// Authorization is what an authenticated request carries downstream.
type Authorization struct {
	AccessToken string
	IDToken     string
	UserInfo    map[string]any
}

// Decision is the result of the authorization gate. When Authorized is
// false, RedirectURL points at the provider login.
type Decision struct {
	Authorized    bool
	Authorization *Authorization
	LogoutURL     string
	RedirectURL   string
}

// RedirectResult is the response to a provider callback. A zero Status
// means an empty 200 response.
type RedirectResult struct {
	Status   int
	Location string
	Cookie   *http.Cookie
}

// LogoutResult carries the cookie that clears the session.
type LogoutResult struct {
	Cookie *http.Cookie
}

// AuthorizationService runs the authorization code flow at the edge. It
// holds no per-request state; everything lives in Repos.
type AuthorizationService struct {
	repos      Repos
	provider   IdentityProvider
	validator  *Validator
	cookies    sessions.CookieCodec
	random     random.Source
	metrics    *metrics.Metrics
	salt       string
	sessionTTL time.Duration
	nowTime    func() time.Time // nowTime function (injectable for testing)
}

// AuthorizationServiceOption defines a function type to modify the AuthorizationService instance.
type AuthorizationServiceOption func(*AuthorizationService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.nowTime = nowFunc
	}
}

// WithRandomSource replaces the default crypto/rand state token source
func WithRandomSource(src random.Source) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.random = src
	}
}

// WithMetrics records flow outcomes on m
func WithMetrics(m *metrics.Metrics) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.metrics = m
	}
}

// NewAuthorizationService initializes a new AuthorizationService with required dependencies.
func NewAuthorizationService(cfg Config, repos Repos, provider IdentityProvider, opts ...AuthorizationServiceOption) (*AuthorizationService, error) {
	if repos.States == nil || repos.Sessions == nil {
		return nil, errors.New("state and session repositories are required")
	}
	if provider == nil {
		return nil, errors.New("identity provider is required")
	}
	if cfg.GetSalt() == "" {
		return nil, errors.New("session salt is required")
	}

	as := &AuthorizationService{
		repos:      repos,
		provider:   provider,
		validator:  NewValidator(cfg.GetProviderDomain(), cfg.GetClientID(), cfg.GetMaxTokenAge()),
		cookies:    sessions.NewCookieCodec(cfg.GetCookieName()),
		random:     random.CryptoSource{},
		salt:       cfg.GetSalt(),
		sessionTTL: cfg.GetSessionTTL(),
		nowTime:    time.Now,
	}
	for _, opt := range opts {
		opt(as)
	}
	return as, nil
}

// Authorize decides whether r carries a live session. A request without a
// session cookie is unauthorized and gets a fresh login URL; a cookie that
// points at nothing is an error.
func (as *AuthorizationService) Authorize(ctx context.Context, r *http.Request) (*Decision, error) {
	decision, err := as.authorize(ctx, r)
	switch {
	case err != nil:
		as.metrics.Authorization(metrics.ResultError)
	case decision.Authorized:
		as.metrics.Authorization(metrics.ResultAuthorized)
	default:
		as.metrics.Authorization(metrics.ResultUnauthorized)
	}
	return decision, err
}

func (as *AuthorizationService) authorize(ctx context.Context, r *http.Request) (*Decision, error) {
	if sessionID := as.cookies.SessionID(r); sessionID != "" {
		session, err := as.repos.Sessions.Get(ctx, sessionID)
		if err != nil {
			return nil, err
		}

		userInfo, err := jwt.UserInfo(ctx, session.IDToken)
		if err != nil {
			return nil, autherrors.Wrapf(err, "decode stored id token")
		}

		return &Decision{
			Authorized: true,
			Authorization: &Authorization{
				AccessToken: session.AccessToken,
				IDToken:     session.IDToken,
				UserInfo:    userInfo,
			},
			LogoutURL: as.provider.LogoutURL(),
		}, nil
	}

	state, err := as.random.String(ctx)
	if err != nil {
		return nil, err
	}
	if err := as.repos.States.Put(ctx, state, authflow.AuthFlowState{OriginalPath: r.URL.Path}); err != nil {
		return nil, autherrors.Wrapf(err, "store authorization state")
	}

	return &Decision{RedirectURL: as.provider.AuthCodeURL(state)}, nil
}

// HandleRedirect completes the flow on the callback path. A nil result
// means the request was not a callback this server started. The session is
// written only after the id token claims validate.
func (as *AuthorizationService) HandleRedirect(ctx context.Context, r *http.Request) (*RedirectResult, error) {
	logger := zerolog.Ctx(ctx)
	query := r.URL.Query()

	state := query.Get("state")
	if state == "" {
		as.metrics.Callback(metrics.OutcomeNoop)
		return nil, nil
	}

	// Protect against CSRF by ensuring the request originated from this server
	authState, err := as.repos.States.Get(ctx, state)
	if err != nil {
		if errors.Is(err, autherrors.ErrStoreUnavailable) {
			as.metrics.Callback(metrics.OutcomeError)
			return nil, err
		}
		logger.Warn().Err(err).Msg("Callback: unreadable authorization state")
		authState = nil
	}
	if authState == nil {
		as.metrics.Callback(metrics.OutcomeNoop)
		return nil, nil
	}

	// One-time use: a replayed callback finds nothing
	if err := as.repos.States.Delete(ctx, state); err != nil {
		as.metrics.Callback(metrics.OutcomeError)
		return nil, autherrors.Wrapf(err, "delete authorization state")
	}

	code := query.Get("code")
	if code == "" {
		logger.Info().Str("error", query.Get("error")).Msg("Callback: no authorization code returned")
		as.metrics.Callback(metrics.OutcomeCancelled)
		return &RedirectResult{}, nil
	}

	result, err := as.exchangeAndPersist(ctx, code, authState.OriginalPath)
	if err != nil {
		as.metrics.Callback(metrics.OutcomeError)
		return nil, err
	}
	if result.Status == http.StatusUnauthorized {
		as.metrics.Callback(metrics.OutcomeRejected)
	} else {
		as.metrics.Callback(metrics.OutcomeSuccess)
	}
	return result, nil
}

func (as *AuthorizationService) exchangeAndPersist(ctx context.Context, code, originalPath string) (*RedirectResult, error) {
	tokens, raw, err := as.provider.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	claims, err := jwt.ParseClaims(ctx, tokens.IDToken)
	if err != nil {
		return nil, autherrors.Wrapf(err, "decode id token")
	}

	now := as.nowTime()
	if err := as.validator.Validate(claims, now); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Callback: id token rejected")
		return &RedirectResult{Status: http.StatusUnauthorized}, nil
	}
	if claims.Subject == "" {
		zerolog.Ctx(ctx).Warn().Msg("Callback: id token has no sub claim")
		return &RedirectResult{Status: http.StatusUnauthorized}, nil
	}

	sessionID := sessions.DeriveID(as.salt, claims.Subject)
	if err := as.repos.Sessions.Put(ctx, sessionID, raw); err != nil {
		return nil, autherrors.Wrapf(err, "store session")
	}

	return &RedirectResult{
		Status:   http.StatusFound,
		Location: redirectPath(originalPath),
		Cookie:   as.cookies.SessionCookie(sessionID, now.Add(as.sessionTTL)),
	}, nil
}

// Logout destroys the session named by the cookie. Without a cookie there
// is nothing to do and the result is nil.
func (as *AuthorizationService) Logout(ctx context.Context, r *http.Request) (*LogoutResult, error) {
	sessionID := as.cookies.SessionID(r)
	if sessionID == "" {
		return nil, nil
	}

	if err := as.repos.Sessions.Delete(ctx, sessionID); err != nil {
		return nil, autherrors.Wrapf(err, "delete session")
	}
	as.metrics.Logout()

	return &LogoutResult{Cookie: as.cookies.ClearCookie()}, nil
}

// redirectPath keeps post-login redirects on this origin.
func redirectPath(path string) string {
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") || strings.HasPrefix(path, "/\\") {
		return "/"
	}
	return path
}
