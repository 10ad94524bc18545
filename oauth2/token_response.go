package oauth2

// TokenResponse represents the provider's token endpoint response.
// This is the standard OAuth2 token endpoint response format as defined in
// RFC 6749, plus the OpenID Connect id_token.
type TokenResponse struct {
	// AccessToken is forwarded upstream as "Authorization: Bearer <access_token>".
	AccessToken string `json:"access_token"`

	// IDToken is the OpenID Connect ID token containing user identity information.
	// Only present: When "openid" scope was requested
	IDToken string `json:"id_token"`

	// TokenType indicates how to use the access token, normally "Bearer".
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the lifetime in seconds of the access token.
	ExpiresIn int `json:"expires_in,omitempty"`

	// RefreshToken is only returned when offline_access was requested. It is
	// stored with the session but never used.
	RefreshToken string `json:"refresh_token,omitempty"`

	// Scope indicates the access token's granted permissions.
	// Example: "openid profile email"
	Scope string `json:"scope,omitempty"`
}

// ErrorResponse is the RFC 6749 section 5.2 error body.
type ErrorResponse struct {
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
	ErrorURI         string `json:"error_uri,omitempty"`
}
