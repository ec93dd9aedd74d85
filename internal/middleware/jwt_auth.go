package middleware

import (
	"context"
	"strings"

	"github.com/anonto42/blogi/backend/internal/apperrors"
	"github.com/anonto42/blogi/backend/internal/auth"
	"github.com/labstack/echo/v4"
)

const identityKey = "identity"

// Authenticator resolves a bearer token to the calling identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Identity, error)
}

// JWTAuthMiddleware requires a valid bearer token and stores the resolved
// identity in the echo context.
func JWTAuthMiddleware(guard Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return apperrors.Unauthenticated("Not authenticated")
			}

			identity, err := guard.Authenticate(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(identityKey, identity)
			return next(c)
		}
	}
}

// CurrentIdentity returns the identity stored by JWTAuthMiddleware.
func CurrentIdentity(c echo.Context) (*auth.Identity, bool) {
	identity, ok := c.Get(identityKey).(*auth.Identity)
	return identity, ok && identity != nil
}

// Expecting "Bearer <token>"
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
