// Package tokentest builds unsigned compact JWTs for tests.
package tokentest

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Unsigned returns a token carrying claims with the "none" algorithm. The
// client never verifies signatures, so this is enough to exercise expiry.
func Unsigned(claims jwtlib.MapClaims) string {
	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, claims).SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	if err != nil {
		panic(err)
	}
	return raw
}

// ExpiringAt is an unsigned token for subject "1" expiring at exp.
func ExpiringAt(exp time.Time) string {
	return Unsigned(jwtlib.MapClaims{"sub": "1", "username": "admin", "exp": exp.Unix()})
}
