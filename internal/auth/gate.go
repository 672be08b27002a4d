package auth

import (
	"context"

	"inkwell/internal/models"
)

// Authentication failures surfaced by the gate.
var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password, so callers cannot enumerate registered usernames.
	ErrInvalidCredentials = models.NewUnauthorizedError("Incorrect username or password")

	// ErrUnauthenticated covers missing, invalid or expired tokens, and
	// tokens whose subject no longer resolves to a live account.
	ErrUnauthenticated = models.NewUnauthorizedError("Could not validate credentials")
)

// UserSource is the credential lookup the gate needs from the storage layer.
// GetByUsername returns (nil, nil) when no such user exists.
type UserSource interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// Gate resolves caller identity from credentials or bearer tokens and
// enforces resource ownership.
type Gate struct {
	users  UserSource
	tokens *Tokens
}

// NewGate returns a Gate backed by the given user source and token verifier.
func NewGate(users UserSource, tokens *Tokens) *Gate {
	return &Gate{users: users, tokens: tokens}
}

// Tokens exposes the token issuer bound to this gate.
func (g *Gate) Tokens() *Tokens {
	return g.tokens
}

// Authenticate verifies a username/password pair and returns the matching
// user. Unknown usernames and wrong passwords both yield
// ErrInvalidCredentials.
func (g *Gate) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := g.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !CheckPassword(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ResolveUser verifies a bearer token and resolves its subject to a live
// account. A valid token whose subject has since disappeared still fails:
// tokens are not proof of continued existence.
func (g *Gate) ResolveUser(ctx context.Context, tokenString string) (*models.User, error) {
	subject, err := g.tokens.Verify(tokenString)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	user, err := g.users.GetByUsername(ctx, subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// AuthorizeOwner reports whether the user owns the post. Callers surface
// 403 Forbidden on false, distinct from 401.
func (g *Gate) AuthorizeOwner(user *models.User, post *models.Post) bool {
	return user != nil && post != nil && post.UserID == user.ID
}
