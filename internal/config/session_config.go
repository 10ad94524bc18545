package config

import "time"

type SessionConfig interface {
	GetSalt() string
	GetCookieName() string
	GetSessionTTL() time.Duration
	GetStateTTL() time.Duration
	GetMaxTokenAge() time.Duration
}

type Session struct {
	Salt       string `env:"SALT,required"`
	CookieName string `env:"COOKIE_NAME" envDefault:"AUTH-SESSION"`
}

var _ SessionConfig = Session{}

// GetSalt returns the secret mixed into session id derivation. Never log it.
func (s Session) GetSalt() string {
	return s.Salt
}

func (s Session) GetCookieName() string {
	return s.CookieName
}

func (Session) GetSessionTTL() time.Duration {
	return 24 * time.Hour
}

func (Session) GetStateTTL() time.Duration {
	return 24 * time.Hour
}

// GetMaxTokenAge bounds how long ago an id token may have been issued.
func (Session) GetMaxTokenAge() time.Duration {
	return 24 * time.Hour
}
