package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jrsteele09/go-edge-auth/auth"
	"github.com/jrsteele09/go-edge-auth/auth/authflow"
	"github.com/jrsteele09/go-edge-auth/internal/config"
	autherrors "github.com/jrsteele09/go-edge-auth/internal/errors"
	"github.com/jrsteele09/go-edge-auth/kvstore"
	"github.com/jrsteele09/go-edge-auth/oauth2"
	"github.com/jrsteele09/go-edge-auth/sessions"
	"github.com/jrsteele09/go-edge-auth/token/jwt/jwttest"
	"github.com/stretchr/testify/require"
)

const (
	testDomain   = "https://tenant.auth0.com"
	testClientID = "client-1"
	testSubject  = "auth0|user-1"
	testSalt     = "pepper"
	testState    = "state-token-1"
)

var serviceNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeProvider struct {
	tokens   *oauth2.TokenResponse
	raw      []byte
	err      error
	codes    []string
	authURLs []string
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	u := testDomain + "/authorize?state=" + url.QueryEscape(state)
	p.authURLs = append(p.authURLs, u)
	return u
}

func (p *fakeProvider) LogoutURL() string {
	return testDomain + "/v2/logout?client_id=" + testClientID
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (*oauth2.TokenResponse, []byte, error) {
	p.codes = append(p.codes, code)
	if p.err != nil {
		return nil, nil, p.err
	}
	return p.tokens, p.raw, nil
}

// issue sets the token response the fake returns from Exchange.
func (p *fakeProvider) issue(t *testing.T, claims map[string]any) {
	t.Helper()
	p.tokens = &oauth2.TokenResponse{
		AccessToken: "access-token-1",
		IDToken:     jwttest.Mint(t, claims),
		TokenType:   "Bearer",
		ExpiresIn:   86400,
	}
	raw, err := json.Marshal(p.tokens)
	require.NoError(t, err)
	p.raw = raw
}

type fixedSource string

func (s fixedSource) String(context.Context) (string, error) { return string(s), nil }

type failingSource struct{}

func (failingSource) String(context.Context) (string, error) {
	return "", autherrors.ErrRandomUnavailable
}

type fixture struct {
	store    *kvstore.Memory
	states   *authflow.KVRepo
	sessions *sessions.KVRepo
	provider *fakeProvider
	service  *auth.AuthorizationService
}

func newFixture(t *testing.T, opts ...auth.AuthorizationServiceOption) *fixture {
	t.Helper()

	cfg := mustConfig(t)
	f := &fixture{
		store:    kvstore.NewMemory().WithClock(func() time.Time { return serviceNow }),
		provider: &fakeProvider{},
	}
	f.states = authflow.NewKVRepo(f.store, cfg.GetStateTTL())
	f.sessions = sessions.NewKVRepo(f.store, cfg.GetSessionTTL())

	opts = append([]auth.AuthorizationServiceOption{
		auth.WithNowTime(func() time.Time { return serviceNow }),
		auth.WithRandomSource(fixedSource(testState)),
	}, opts...)

	var err error
	f.service, err = auth.NewAuthorizationService(cfg, auth.Repos{States: f.states, Sessions: f.sessions}, f.provider, opts...)
	require.NoError(t, err)
	return f
}

func callbackRequest(query url.Values) *http.Request {
	return httptest.NewRequest(http.MethodGet, "/auth?"+query.Encode(), nil)
}

func withSession(r *http.Request, id string) *http.Request {
	r.AddCookie(&http.Cookie{Name: sessions.DefaultCookieName, Value: id})
	return r
}

func TestNewAuthorizationService_RequiresDependencies(t *testing.T) {
	f := newFixture(t)
	cfg := mustConfig(t)

	_, err := auth.NewAuthorizationService(cfg, auth.Repos{States: f.states}, f.provider)
	require.Error(t, err)

	_, err = auth.NewAuthorizationService(cfg, auth.Repos{States: f.states, Sessions: f.sessions}, nil)
	require.Error(t, err)
}

func TestAuthorize_FirstVisit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	decision, err := f.service.Authorize(ctx, httptest.NewRequest(http.MethodGet, "/reports/q3", nil))
	require.NoError(t, err)
	require.False(t, decision.Authorized)
	require.Nil(t, decision.Authorization)
	require.Equal(t, testDomain+"/authorize?state="+testState, decision.RedirectURL)

	state, err := f.states.Get(ctx, testState)
	require.NoError(t, err)
	require.NotNil(t, state)
	require.Equal(t, "/reports/q3", state.OriginalPath)
}

func TestAuthorize_RandomSourceFailure(t *testing.T) {
	f := newFixture(t, auth.WithRandomSource(failingSource{}))

	_, err := f.service.Authorize(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.ErrorIs(t, err, autherrors.ErrRandomUnavailable)
	require.Zero(t, f.store.Len())
}

func TestAuthorize_UnknownSession(t *testing.T) {
	f := newFixture(t)

	r := withSession(httptest.NewRequest(http.MethodGet, "/", nil), "nope")
	_, err := f.service.Authorize(context.Background(), r)
	require.ErrorIs(t, err, autherrors.ErrSessionNotFound)
	require.Equal(t, "unable to find authorization data", err.Error())
}

func TestAuthorize_CorruptSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.store.Put(ctx, "broken", []byte("{not json"), time.Hour))

	r := withSession(httptest.NewRequest(http.MethodGet, "/", nil), "broken")
	_, err := f.service.Authorize(ctx, r)
	require.ErrorIs(t, err, autherrors.ErrSessionCorrupt)
}

func TestHandleRedirect_FullFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.provider.issue(t, jwttest.IDTokenClaims(testDomain, testClientID, testSubject, serviceNow))

	// First visit stores the pending authorization
	_, err := f.service.Authorize(ctx, httptest.NewRequest(http.MethodGet, "/reports/q3", nil))
	require.NoError(t, err)

	result, err := f.service.HandleRedirect(ctx, callbackRequest(url.Values{"state": {testState}, "code": {"code-1"}}))
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, http.StatusFound, result.Status)
	require.Equal(t, "/reports/q3", result.Location)
	require.Equal(t, []string{"code-1"}, f.provider.codes)

	sessionID := sessions.DeriveID(testSalt, testSubject)
	require.NotNil(t, result.Cookie)
	require.Equal(t, sessions.DefaultCookieName, result.Cookie.Name)
	require.Equal(t, sessionID, result.Cookie.Value)
	require.Equal(t, serviceNow.Add(24*time.Hour), result.Cookie.Expires)

	// State is single use
	state, err := f.states.Get(ctx, testState)
	require.NoError(t, err)
	require.Nil(t, state)

	stored, err := f.sessions.Get(ctx, sessionID)
	require.NoError(t, err)
	require.JSONEq(t, string(f.provider.raw), string(stored.Raw))

	t.Run("authorized request", func(t *testing.T) {
		r := withSession(httptest.NewRequest(http.MethodGet, "/reports/q3", nil), sessionID)
		decision, err := f.service.Authorize(ctx, r)
		require.NoError(t, err)
		require.True(t, decision.Authorized)
		require.Equal(t, "access-token-1", decision.Authorization.AccessToken)
		require.Equal(t, f.provider.tokens.IDToken, decision.Authorization.IDToken)
		require.Equal(t, testSubject, decision.Authorization.UserInfo["sub"])
		require.Equal(t, testSubject+"@example.com", decision.Authorization.UserInfo["email"])
		require.Equal(t, f.provider.LogoutURL(), decision.LogoutURL)
		require.Empty(t, decision.RedirectURL)
	})

	t.Run("replayed callback", func(t *testing.T) {
		result, err := f.service.HandleRedirect(ctx, callbackRequest(url.Values{"state": {testState}, "code": {"code-1"}}))
		require.NoError(t, err)
		require.Nil(t, result)
		require.Len(t, f.provider.codes, 1)
	})

	t.Run("logout", func(t *testing.T) {
		r := withSession(httptest.NewRequest(http.MethodGet, "/logout", nil), sessionID)
		out, err := f.service.Logout(ctx, r)
		require.NoError(t, err)
		require.NotNil(t, out)
		require.Equal(t, "", out.Cookie.Value)
		require.True(t, out.Cookie.Expires.Equal(time.Unix(0, 0)))

		_, err = f.sessions.Get(ctx, sessionID)
		require.ErrorIs(t, err, autherrors.ErrSessionNotFound)

		_, err = f.service.Authorize(ctx, withSession(httptest.NewRequest(http.MethodGet, "/", nil), sessionID))
		require.ErrorIs(t, err, autherrors.ErrSessionNotFound)
	})
}

func TestHandleRedirect_NotACallback(t *testing.T) {
	ctx := context.Background()

	t.Run("no state parameter", func(t *testing.T) {
		f := newFixture(t)
		result, err := f.service.HandleRedirect(ctx, callbackRequest(url.Values{"code": {"code-1"}}))
		require.NoError(t, err)
		require.Nil(t, result)
		require.Empty(t, f.provider.codes)
	})

	t.Run("unknown state", func(t *testing.T) {
		f := newFixture(t)
		result, err := f.service.HandleRedirect(ctx, callbackRequest(url.Values{"state": {"forged"}, "code": {"code-1"}}))
		require.NoError(t, err)
		require.Nil(t, result)
		require.Empty(t, f.provider.codes)
	})

	t.Run("unreadable state record", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.Put(ctx, "state-"+testState, []byte("garbage"), time.Hour))

		result, err := f.service.HandleRedirect(ctx, callbackRequest(url.Values{"state": {testState}, "code": {"code-1"}}))
		require.NoError(t, err)
		require.Nil(t, result)
		require.Empty(t, f.provider.codes)
	})
}

func TestHandleRedirect_Cancelled(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.states.Put(ctx, testState, authflow.AuthFlowState{OriginalPath: "/x"}))

	result, err := f.service.HandleRedirect(ctx, callbackRequest(url.Values{"state": {testState}, "error": {"access_denied"}}))
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Zero(t, result.Status)
	require.Nil(t, result.Cookie)
	require.Empty(t, f.provider.codes)

	state, err := f.states.Get(ctx, testState)
	require.NoError(t, err)
	require.Nil(t, state)
}

func TestHandleRedirect_RejectedClaims(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"wrong issuer", func(c map[string]any) { c["iss"] = "https://evil.example.com/" }},
		{"wrong audience", func(c map[string]any) { c["aud"] = "someone-else" }},
		{"expired", func(c map[string]any) { c["exp"] = serviceNow.Add(-time.Second).Unix() }},
		{"issued too long ago", func(c map[string]any) { c["iat"] = serviceNow.Add(-25 * time.Hour).Unix() }},
		{"no subject", func(c map[string]any) { delete(c, "sub") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			require.NoError(t, f.states.Put(ctx, testState, authflow.AuthFlowState{OriginalPath: "/"}))

			claims := jwttest.IDTokenClaims(testDomain, testClientID, testSubject, serviceNow)
			tt.mutate(claims)
			f.provider.issue(t, claims)

			result, err := f.service.HandleRedirect(ctx, callbackRequest(url.Values{"state": {testState}, "code": {"code-1"}}))
			require.NoError(t, err)
			require.NotNil(t, result)
			require.Equal(t, http.StatusUnauthorized, result.Status)
			require.Nil(t, result.Cookie)

			// Nothing but the consumed state ever touched the store
			require.Zero(t, f.store.Len())
		})
	}
}

func TestHandleRedirect_AudienceArray(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.states.Put(ctx, testState, authflow.AuthFlowState{OriginalPath: "/"}))

	claims := jwttest.IDTokenClaims(testDomain, testClientID, testSubject, serviceNow)
	claims["aud"] = []string{"https://api.example.com", testClientID}
	f.provider.issue(t, claims)

	result, err := f.service.HandleRedirect(ctx, callbackRequest(url.Values{"state": {testState}, "code": {"code-1"}}))
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, result.Status)
}

func TestHandleRedirect_ExchangeFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.states.Put(ctx, testState, authflow.AuthFlowState{OriginalPath: "/"}))
	f.provider.err = autherrors.Wrapf(autherrors.ErrTokenExchangeFailed, "invalid_grant")

	result, err := f.service.HandleRedirect(ctx, callbackRequest(url.Values{"state": {testState}, "code": {"bad"}}))
	require.ErrorIs(t, err, autherrors.ErrTokenExchangeFailed)
	require.Nil(t, result)
	require.Zero(t, f.store.Len())
}

func TestHandleRedirect_UnsafeOriginalPath(t *testing.T) {
	for _, path := range []string{"", "//evil.example.com", "/\\evil.example.com", "relative"} {
		t.Run(path, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			require.NoError(t, f.states.Put(ctx, testState, authflow.AuthFlowState{OriginalPath: path}))
			f.provider.issue(t, jwttest.IDTokenClaims(testDomain, testClientID, testSubject, serviceNow))

			result, err := f.service.HandleRedirect(ctx, callbackRequest(url.Values{"state": {testState}, "code": {"code-1"}}))
			require.NoError(t, err)
			require.Equal(t, "/", result.Location)
		})
	}
}

type brokenStore struct{}

func (brokenStore) Put(context.Context, string, []byte, time.Duration) error {
	return autherrors.ErrStoreUnavailable
}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, autherrors.ErrStoreUnavailable
}

func (brokenStore) Delete(context.Context, string) error {
	return autherrors.ErrStoreUnavailable
}

func TestAuthorizationService_StoreUnavailable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	store := brokenStore{}
	service, err := auth.NewAuthorizationService(mustConfig(t),
		auth.Repos{States: authflow.NewKVRepo(store, time.Hour), Sessions: sessions.NewKVRepo(store, time.Hour)},
		f.provider, auth.WithRandomSource(fixedSource(testState)))
	require.NoError(t, err)

	_, err = service.Authorize(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.True(t, errors.Is(err, autherrors.ErrStoreUnavailable))

	_, err = service.Authorize(ctx, withSession(httptest.NewRequest(http.MethodGet, "/", nil), "id"))
	require.ErrorIs(t, err, autherrors.ErrStoreUnavailable)

	_, err = service.HandleRedirect(ctx, callbackRequest(url.Values{"state": {testState}, "code": {"code-1"}}))
	require.ErrorIs(t, err, autherrors.ErrStoreUnavailable)

	_, err = service.Logout(ctx, withSession(httptest.NewRequest(http.MethodGet, "/logout", nil), "id"))
	require.ErrorIs(t, err, autherrors.ErrStoreUnavailable)
}

func TestLogout_NoCookie(t *testing.T) {
	f := newFixture(t)

	out, err := f.service.Logout(context.Background(), httptest.NewRequest(http.MethodGet, "/logout", nil))
	require.NoError(t, err)
	require.Nil(t, out)
}

func mustConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load(map[string]string{
		"AUTH0_DOMAIN":        testDomain,
		"AUTH0_CLIENT_ID":     testClientID,
		"AUTH0_CLIENT_SECRET": "secret-1",
		"AUTH0_CALLBACK_URL":  "https://app.example.com/auth",
		"AUTH0_LOGOUT_URL":    "https://app.example.com/",
		"SALT":                testSalt,
		"UPSTREAM_URL":        "http://localhost:3000",
	})
	require.NoError(t, err)
	return cfg
}
