// Package idp talks to the identity provider: it builds the login and
// logout URLs and exchanges authorization codes for tokens.
package idp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-edge-auth/internal/config"
	autherrors "github.com/jrsteele09/go-edge-auth/internal/errors"
	"github.com/jrsteele09/go-edge-auth/oauth2"
	xoauth2 "golang.org/x/oauth2"
)

const (
	authorizePath = "/authorize"
	tokenPath     = "/oauth/token"
	userInfoPath  = "/userinfo"
	logoutPath    = "/v2/logout"

	maxTokenResponseSize = 1 << 20
)

// Client is an Auth0-style provider client.
type Client struct {
	domain          string
	oauthConfig     *xoauth2.Config
	logoutReturnURL string
	httpClient      *http.Client
}

// New creates a provider client. A nil httpClient gets one with the
// configured timeout; no retries are performed.
func New(cfg config.ProviderConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.GetHTTPClientTimeout()}
	}

	domain := cfg.GetProviderDomain()
	endpoint := providerMetadata(domain).NewProvider(context.Background()).Endpoint()
	endpoint.AuthStyle = xoauth2.AuthStyleInParams

	return &Client{
		domain: domain,
		oauthConfig: &xoauth2.Config{
			ClientID:     cfg.GetClientID(),
			ClientSecret: cfg.GetClientSecret(),
			RedirectURL:  cfg.GetCallbackURL(),
			Endpoint:     endpoint,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		logoutReturnURL: cfg.GetLogoutReturnURL(),
		httpClient:      httpClient,
	}
}

// providerMetadata is the fixed Auth0 endpoint layout under domain. The
// issuer carries the trailing slash Auth0 puts in the iss claim.
func providerMetadata(domain string) *oidc.ProviderConfig {
	return &oidc.ProviderConfig{
		IssuerURL:   domain + "/",
		AuthURL:     domain + authorizePath,
		TokenURL:    domain + tokenPath,
		UserInfoURL: domain + userInfoPath,
	}
}

// Endpoint returns the provider's OAuth2 endpoints.
func (c *Client) Endpoint() xoauth2.Endpoint {
	return c.oauthConfig.Endpoint
}

// AuthCodeURL returns the provider login URL that round-trips state.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauthConfig.AuthCodeURL(state)
}

// LogoutURL returns the provider logout URL, which sends the browser back
// to the configured logout target.
func (c *Client) LogoutURL() string {
	v := url.Values{
		"client_id": {c.oauthConfig.ClientID},
		"returnTo":  {c.logoutReturnURL},
	}
	return c.domain + logoutPath + "?" + v.Encode()
}

// Exchange trades an authorization code for tokens. It returns the decoded
// response together with the body exactly as received. Any failure,
// including a timeout, wraps ErrTokenExchangeFailed.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.TokenResponse, []byte, error) {
	reqBody, err := json.Marshal(oauth2.TokenRequest{
		GrantType:    oauth2.AuthorizationCodeGrant,
		ClientID:     c.oauthConfig.ClientID,
		ClientSecret: c.oauthConfig.ClientSecret,
		Code:         code,
		RedirectURI:  c.oauthConfig.RedirectURL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("idp: marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.oauthConfig.Endpoint.TokenURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, nil, fmt.Errorf("idp: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, autherrors.Wrapf(autherrors.ErrTokenExchangeFailed, "post %s: %v", tokenPath, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenResponseSize))
	if err != nil {
		return nil, nil, autherrors.Wrapf(autherrors.ErrTokenExchangeFailed, "read token response: %v", err)
	}

	var errResp oauth2.ErrorResponse
	_ = json.Unmarshal(body, &errResp)
	if errResp.Error != "" || resp.StatusCode < 200 || resp.StatusCode > 299 {
		retrieveErr := &xoauth2.RetrieveError{
			Response:         resp,
			Body:             body,
			ErrorCode:        errResp.Error,
			ErrorDescription: errResp.ErrorDescription,
			ErrorURI:         errResp.ErrorURI,
		}
		return nil, nil, fmt.Errorf("%w: %w", autherrors.ErrTokenExchangeFailed, retrieveErr)
	}

	var tokens oauth2.TokenResponse
	if err := json.Unmarshal(body, &tokens); err != nil {
		return nil, nil, autherrors.Wrapf(autherrors.ErrTokenExchangeFailed, "decode token response: %v", err)
	}
	if strings.TrimSpace(tokens.IDToken) == "" {
		return nil, nil, autherrors.Wrapf(autherrors.ErrTokenExchangeFailed, "token response has no id_token")
	}

	return &tokens, body, nil
}
