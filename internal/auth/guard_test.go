package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anonto42/blogi/backend/internal/apperrors"
	"github.com/anonto42/blogi/backend/internal/models"
	"github.com/anonto42/blogi/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookupFunc func(ctx context.Context, username string) (*models.User, error)

func (f lookupFunc) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return f(ctx, username)
}

func usersByName(users ...models.User) lookupFunc {
	return func(_ context.Context, username string) (*models.User, error) {
		for i := range users {
			if users[i].Username == username {
				return &users[i], nil
			}
		}
		return nil, repositories.ErrNotFound
	}
}

func TestAuthenticate(t *testing.T) {
	tokens, err := NewTokenService("guard-secret", time.Hour)
	require.NoError(t, err)
	guard := NewGuard(tokens, usersByName(models.User{ID: 1, Username: "alice"}))

	token, err := tokens.Issue("alice")
	require.NoError(t, err)

	id, err := guard.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, &Identity{ID: 1, Username: "alice"}, id)
}

func TestAuthenticateFailuresAreUniform(t *testing.T) {
	tokens, err := NewTokenService("guard-secret", time.Hour)
	require.NoError(t, err)
	guard := NewGuard(tokens, usersByName(models.User{ID: 1, Username: "alice"}))

	vanished, err := tokens.Issue("carol")
	require.NoError(t, err)

	var messages []string
	for _, token := range []string{"garbage", vanished} {
		id, err := guard.Authenticate(context.Background(), token)
		assert.Nil(t, id)
		assert.True(t, apperrors.Is(err, apperrors.KindUnauthenticated))
		messages = append(messages, err.Error())
	}
	assert.Equal(t, messages[0], messages[1])
}

func TestAuthenticateStoreFailure(t *testing.T) {
	tokens, err := NewTokenService("guard-secret", time.Hour)
	require.NoError(t, err)
	cause := errors.New("connection refused")
	guard := NewGuard(tokens, lookupFunc(func(context.Context, string) (*models.User, error) {
		return nil, cause
	}))

	token, err := tokens.Issue("alice")
	require.NoError(t, err)

	_, err = guard.Authenticate(context.Background(), token)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	assert.ErrorIs(t, err, cause)
}

func TestAuthorizeOwnership(t *testing.T) {
	guard := NewGuard(nil, nil)
	alice := &Identity{ID: 1, Username: "alice"}

	assert.NoError(t, guard.AuthorizeOwnership(alice, 1, "update"))

	err := guard.AuthorizeOwnership(alice, 2, "delete")
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))
	assert.Equal(t, "Not authorized to delete this post", err.Error())

	assert.True(t, apperrors.Is(guard.AuthorizeOwnership(nil, 1, "update"), apperrors.KindForbidden))
}
