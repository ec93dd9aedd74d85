package services

import (
	"context"
	"errors"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/blogi/backend/internal/apperrors"
	"github.com/anonto42/blogi/backend/internal/auth"
	"github.com/anonto42/blogi/backend/internal/models"
	"github.com/anonto42/blogi/backend/internal/repositories"
	"github.com/google/uuid"
)

const (
	tokenType         = "bearer"
	incorrectLogin    = "Incorrect username or password"
	usernameTaken     = "Username already registered"
	firebaseNamespace = "firebase:"
)

// FirebaseVerifier verifies Firebase ID tokens. *auth.Client from the
// Firebase Admin SDK satisfies it.
type FirebaseVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// UserService handles registration, login and user lookup.
type UserService struct {
	users     repositories.UserRepository
	creds     *auth.Credentials
	tokens    *auth.TokenService
	firebase  FirebaseVerifier
	dummyHash string
}

// NewUserService creates a UserService. firebase may be nil, in which case
// FirebaseLogin is unavailable.
func NewUserService(users repositories.UserRepository, creds *auth.Credentials, tokens *auth.TokenService, firebase FirebaseVerifier) (*UserService, error) {
	// Compared against when the username is unknown so both login
	// failures cost one bcrypt comparison.
	dummy, err := creds.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}
	return &UserService{
		users:     users,
		creds:     creds,
		tokens:    tokens,
		firebase:  firebase,
		dummyHash: dummy,
	}, nil
}

// FirebaseEnabled reports whether Firebase login is configured.
func (s *UserService) FirebaseEnabled() bool { return s.firebase != nil }

// Register creates a user with a hashed password.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.UserOut, error) {
	if strings.TrimSpace(username) == "" {
		return nil, apperrors.Validation("username is required")
	}
	if password == "" {
		return nil, apperrors.Validation("password is required")
	}
	if len(password) > auth.MaxPasswordBytes {
		return nil, apperrors.Validation("password must be at most 72 bytes")
	}
	if strings.HasPrefix(username, firebaseNamespace) {
		return nil, apperrors.Validation("username prefix " + firebaseNamespace + " is reserved")
	}

	_, err := s.users.GetUserByUsername(ctx, username)
	if err == nil {
		return nil, apperrors.Conflict(usernameTaken)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.Internal("failed to look up user", err)
	}

	hashed, err := s.creds.Hash(password)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password", err)
	}

	user := &models.User{Username: username, HashedPassword: hashed}
	if err := s.users.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.Conflict(usernameTaken)
		}
		return nil, apperrors.Internal("failed to create user", err)
	}
	return user.Out(), nil
}

// Login checks the credentials and issues an access token. Unknown
// usernames and wrong passwords fail with the same error.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.TokenResponse, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.Internal("failed to look up user", err)
	}
	if user == nil {
		s.creds.Verify(password, s.dummyHash)
		return nil, apperrors.Unauthenticated(incorrectLogin)
	}
	if !s.creds.Verify(password, user.HashedPassword) {
		return nil, apperrors.Unauthenticated(incorrectLogin)
	}
	return s.issue(user)
}

// GetByUsername returns the public profile of a user.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.UserOut, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to look up user", err)
	}
	return user.Out(), nil
}

// FirebaseLogin exchanges a verified Firebase ID token for a local access
// token, creating the local user "firebase:<uid>" on first sign in.
func (s *UserService) FirebaseLogin(ctx context.Context, idToken string) (*models.TokenResponse, error) {
	if s.firebase == nil {
		return nil, apperrors.NotFound("Firebase login is not enabled")
	}
	token, err := s.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, apperrors.Unauthenticated("Invalid Firebase ID token")
	}

	username := firebaseNamespace + token.UID
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		user, err = s.createFederated(ctx, username)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to resolve firebase user", err)
	}
	return s.issue(user)
}

// createFederated stores a user whose password is random and never disclosed,
// so it can only sign in through Firebase.
func (s *UserService) createFederated(ctx context.Context, username string) (*models.User, error) {
	hashed, err := s.creds.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}
	user := &models.User{Username: username, HashedPassword: hashed}
	err = s.users.CreateUser(ctx, user)
	if errors.Is(err, repositories.ErrDuplicate) {
		return s.users.GetUserByUsername(ctx, username)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) issue(user *models.User) (*models.TokenResponse, error) {
	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, apperrors.Internal("failed to issue token", err)
	}
	return &models.TokenResponse{AccessToken: token, TokenType: tokenType}, nil
}
