package token

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/yenikoza/tablet-dashboard/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// ExpiresAt decodes the payload segment of a compact JWT and returns its exp
// claim. The signature is not verified; the backend does that on every call.
func ExpiresAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.ErrEmptyToken
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}, errors.Wrapf(errors.ErrMalformed, "[ExpiresAt] %v", err)
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, errors.Wrapf(errors.ErrMalformed, "[ExpiresAt] exp claim: %v", err)
	}
	if exp == nil {
		return time.Time{}, errors.ErrMissingExpiry
	}
	return exp.Time, nil
}

// IsValidAt reports whether raw carries an exp claim strictly after now.
// Comparison is done in whole seconds. Any decode failure is reported as
// invalid, never as a panic or error.
func IsValidAt(raw string, now time.Time) (valid bool) {
	defer func() {
		if recover() != nil {
			valid = false
		}
	}()

	exp, err := ExpiresAt(raw)
	if err != nil {
		return false
	}
	return exp.Unix() > now.Unix()
}

// IsValid is IsValidAt against NowTimeFunc.
func IsValid(raw string) bool {
	return IsValidAt(raw, NowTimeFunc())
}
