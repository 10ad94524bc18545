package config

import "time"

const (
	RandomSourceCrypto = "crypto"
	RandomSourceHTTP   = "http"
)

type ProviderConfig interface {
	GetProviderDomain() string
	GetClientID() string
	GetClientSecret() string
	GetCallbackURL() string
	GetLogoutReturnURL() string
	GetHTTPClientTimeout() time.Duration
	GetRandomSource() string
	GetRandomSourceURL() string
}

// Provider holds the identity provider registration. Domain includes the
// scheme, e.g. https://tenant.eu.auth0.com, and is used verbatim as the
// expected issuer.
type Provider struct {
	Domain            string        `env:"AUTH0_DOMAIN,required"`
	ClientID          string        `env:"AUTH0_CLIENT_ID,required"`
	ClientSecret      string        `env:"AUTH0_CLIENT_SECRET,required"`
	CallbackURL       string        `env:"AUTH0_CALLBACK_URL,required"`
	LogoutReturnURL   string        `env:"AUTH0_LOGOUT_URL,required"`
	HTTPClientTimeout time.Duration `env:"HTTP_CLIENT_TIMEOUT" envDefault:"10s"`
	RandomSource      string        `env:"RANDOM_SOURCE" envDefault:"crypto"`
	RandomSourceURL   string        `env:"RANDOM_SOURCE_URL" envDefault:"https://csprng.xyz/v1/api"`
}

var _ ProviderConfig = Provider{}

func (p Provider) GetProviderDomain() string {
	return p.Domain
}

func (p Provider) GetClientID() string {
	return p.ClientID
}

func (p Provider) GetClientSecret() string {
	return p.ClientSecret
}

func (p Provider) GetCallbackURL() string {
	return p.CallbackURL
}

func (p Provider) GetLogoutReturnURL() string {
	return p.LogoutReturnURL
}

func (p Provider) GetHTTPClientTimeout() time.Duration {
	return p.HTTPClientTimeout
}

func (p Provider) GetRandomSource() string {
	return p.RandomSource
}

func (p Provider) GetRandomSourceURL() string {
	return p.RandomSourceURL
}
