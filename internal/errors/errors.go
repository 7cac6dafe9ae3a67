package errors

import (
	"errors"
	"fmt"
)

// Common error types for the consent bridge
var (
	// Authorization request errors
	ErrInvalidRequest     = errors.New("invalid request")
	ErrMalformedStateBlob = errors.New("malformed state payload")

	// Upstream provider errors
	ErrUpstreamExchange = errors.New("upstream token exchange failed")
	ErrUpstreamDenied   = errors.New("upstream authorization denied")
	ErrInvalidIDToken   = errors.New("invalid ID token")
	ErrInvalidNonce     = errors.New("invalid nonce")

	// General errors
	ErrInternal = errors.New("internal error")
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
