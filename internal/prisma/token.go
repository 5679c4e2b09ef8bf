package prisma

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry is returned for a decodable token without an exp claim.
var ErrNoExpiry = errors.New("token carries no expiry")

// Token is the bearer credential returned by login and refresh. It is a JWT
// whose payload carries the expiry; the signature is never checked here.
type Token string

// ExpiresAt decodes the exp claim from the token payload.
func (t Token) ExpiresAt() (time.Time, error) {
	if t == "" {
		return time.Time{}, ErrNoToken
	}

	claims := &jwt.RegisteredClaims{}
	// Claims are decoded before the alg header is looked up, so an
	// unrecognised signing method still leaves exp readable.
	_, _, err := jwt.NewParser().ParseUnverified(string(t), claims)
	if err != nil && !errors.Is(err, jwt.ErrTokenUnverifiable) {
		return time.Time{}, fmt.Errorf("decoding token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("decoding token expiry: %w", err)
	}
	if exp == nil {
		return time.Time{}, ErrNoExpiry
	}
	return exp.Time, nil
}

// ExpiredAt reports whether the token is unusable at now. Tokens that cannot
// be decoded or carry no expiry count as expired.
func (t Token) ExpiredAt(now time.Time) bool {
	exp, err := t.ExpiresAt()
	if err != nil {
		return true
	}
	return !exp.After(now)
}
