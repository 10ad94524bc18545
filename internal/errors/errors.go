package errors

import (
	"errors"
	"fmt"
)

// Error taxonomy of the edge authentication flow
var (
	// Session errors
	ErrSessionNotFound = errors.New("unable to find authorization data")
	ErrSessionCorrupt  = errors.New("unable to parse stored authorization data")

	// Token errors
	ErrMalformedToken      = errors.New("malformed token")
	ErrTokenExchangeFailed = errors.New("token exchange failed")
	ErrClaimInvalid        = errors.New("invalid token claims")

	// Infrastructure errors
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrRandomUnavailable = errors.New("random source unavailable")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
