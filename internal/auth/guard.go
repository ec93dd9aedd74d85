package auth

import (
	"context"
	"errors"

	"github.com/anonto42/blogi/backend/internal/apperrors"
	"github.com/anonto42/blogi/backend/internal/models"
	"github.com/anonto42/blogi/backend/internal/repositories"
)

const credentialsMessage = "Could not validate credentials"

// UserLookup resolves a token subject to a stored user.
type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Identity is the authenticated caller of a request.
type Identity struct {
	ID       uint
	Username string
}

// Out returns the identity in its public user shape.
func (i *Identity) Out() *models.UserOut {
	return &models.UserOut{ID: i.ID, Username: i.Username}
}

// Guard authenticates bearer tokens and enforces resource ownership.
type Guard struct {
	tokens *TokenService
	users  UserLookup
}

// NewGuard creates a Guard
func NewGuard(tokens *TokenService, users UserLookup) *Guard {
	return &Guard{tokens: tokens, users: users}
}

// Authenticate validates token and resolves its subject. Invalid tokens and
// subjects that no longer exist fail identically; store failures are internal.
func (g *Guard) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := g.tokens.Validate(token)
	if err != nil {
		return nil, apperrors.Unauthenticated(credentialsMessage)
	}

	user, err := g.users.GetUserByUsername(ctx, claims.Subject)
	if errors.Is(err, repositories.ErrNotFound) || (err == nil && user == nil) {
		return nil, apperrors.Unauthenticated(credentialsMessage)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to resolve user", err)
	}
	return &Identity{ID: user.ID, Username: user.Username}, nil
}

// AuthorizeOwnership fails with Forbidden unless identity owns the resource.
func (g *Guard) AuthorizeOwnership(identity *Identity, ownerID uint, action string) error {
	if identity == nil || identity.ID != ownerID {
		return apperrors.Forbidden("Not authorized to " + action + " this post")
	}
	return nil
}
