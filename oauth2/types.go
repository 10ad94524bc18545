package oauth2

// ResponseType represents the OAuth 2.0 response type requested at the
// provider's authorization endpoint.
type ResponseType string

const (
	// CodeResponseType indicates the authorization code flow.
	// Example: /authorize?response_type=code&client_id=...
	CodeResponseType ResponseType = "code"
)

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	// Token request includes: code, client_id, client_secret, redirect_uri
	AuthorizationCodeGrant GrantType = "authorization_code"
)

// TokenRequest is the JSON body posted to the provider's /oauth/token endpoint.
type TokenRequest struct {
	GrantType GrantType `json:"grant_type"`

	// ClientID identifies this edge application at the provider.
	ClientID string `json:"client_id"`

	// ClientSecret is the confidential client credential.
	// Security: Never log or expose this value
	ClientSecret string `json:"client_secret"`

	// Code is the authorization code received on the callback path.
	// Usage: Exchanged once for tokens, then becomes invalid
	Code string `json:"code"`

	// RedirectURI must match the redirect_uri used at /authorize.
	RedirectURI string `json:"redirect_uri"`
}
