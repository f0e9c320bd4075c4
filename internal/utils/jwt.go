package utils // package utils provides helpers for password hashing and token handling

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the lifetime of an access token when none is configured.
const DefaultTokenTTL = 7 * 24 * time.Hour

// ErrInvalidToken is returned for every token that cannot be trusted:
// malformed, tampered, signed with another algorithm or expired.  Callers
// are deliberately not told which.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the claim set carried by access tokens.  The subject holds the
// user ID and the token ID (jti) allows individual tokens to be revoked.
type Claims struct {
	jwt.RegisteredClaims
}

// UserID returns the authenticated user's ID.
func (c *Claims) UserID() string { return c.Subject }

// AccessToken is a signed JWT together with its identifier and expiry.
type AccessToken struct {
	Token string    // serialized JWT
	ID    string    // jti claim
	Exp   time.Time // UTC expiration time
}

// NewAccessToken signs an HS256 token for userID valid for ttl.  A zero or
// negative ttl uses DefaultTokenTTL.
func NewAccessToken(secret, userID string, ttl time.Duration) (AccessToken, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := Claims{jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, ID: claims.ID, Exp: exp}, nil
}

// ParseAccessToken verifies the signature and expiry of raw and returns its
// claims.  Any failure is reported as ErrInvalidToken.
func ParseAccessToken(secret, raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
