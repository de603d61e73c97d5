package errors

import (
	"errors"
	"fmt"
)

// Common error types for the mikupost server
var (
	// Configuration errors
	ErrConfigIncomplete = errors.New("required configuration is missing")

	// Authorization flow errors
	ErrProviderAuth        = errors.New("provider returned an authorization error")
	ErrAuthCodeMissing     = errors.New("authorization code missing from callback")
	ErrSessionInvalid      = errors.New("authorization session invalid or expired")
	ErrTokenExchangeFailed = errors.New("token exchange failed")

	// Persistence errors
	ErrStoreUnavailable   = errors.New("session store unavailable")
	ErrPersistenceFailure = errors.New("no persistence backend accepted the write")

	// Posting errors
	ErrNotConnected = errors.New("no connected account")
	ErrValidation   = errors.New("validation failed")
	ErrNetwork      = errors.New("network error")
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
