package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the access-token lifetime used when the configuration
// does not override it.
const DefaultTokenTTL = 70 * time.Minute

// Verification failures. Signature integrity is checked before expiry, and
// claims are never read from a token that failed signature verification.
var (
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenMalformed   = errors.New("token is malformed")
)

// TokenConfig carries the signing key and token lifetime. The key is
// injected at construction so tests can run with distinct keys; rotating it
// invalidates all previously issued tokens.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
}

// Tokens issues and verifies HS256-signed bearer tokens. The signing key is
// immutable for the lifetime of the instance.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens returns a Tokens instance backed by the given config.
func NewTokens(cfg TokenConfig) *Tokens {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{
		secret: cfg.Secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a signed token asserting the given subject, valid for the
// configured TTL.
func (t *Tokens) Issue(subject string) (string, error) {
	return t.IssueWithTTL(subject, t.ttl)
}

// IssueWithTTL creates a signed token with an explicit lifetime.
func (t *Tokens) IssueWithTTL(subject string, ttl time.Duration) (string, error) {
	now := t.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify parses and validates a token and returns its subject. Tokens signed
// with another key or a non-HMAC method fail with ErrInvalidSignature,
// expired tokens with ErrTokenExpired, and anything unparseable with
// ErrTokenMalformed.
func (t *Tokens) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return t.now().UTC() }))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrTokenExpired
		default:
			return "", ErrTokenMalformed
		}
	}
	if !token.Valid || claims.Subject == "" {
		return "", ErrTokenMalformed
	}
	return claims.Subject, nil
}
