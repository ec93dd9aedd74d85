package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestTokens(t *testing.T, clock *fakeClock) *TokenService {
	t.Helper()
	s, err := NewTokenService("test-secret", 30*time.Minute)
	require.NoError(t, err)
	return s.WithClock(clock.Now)
}

func TestIssueValidate(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	tokens := newTestTokens(t, clock)

	token, err := tokens.Issue("alice")
	require.NoError(t, err)

	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, clock.t.Add(30*time.Minute).Unix(), claims.ExpiresAt.Unix())
}

func TestValidateExpired(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	tokens := newTestTokens(t, clock)

	token, err := tokens.IssueWithTTL("alice", time.Minute)
	require.NoError(t, err)

	clock.t = clock.t.Add(59 * time.Second)
	_, err = tokens.Validate(token)
	assert.NoError(t, err)

	// exp == now is already expired
	clock.t = clock.t.Add(time.Second)
	_, err = tokens.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	clock.t = clock.t.Add(time.Hour)
	_, err = tokens.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejects(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	tokens := newTestTokens(t, clock)

	good, err := tokens.Issue("alice")
	require.NoError(t, err)

	other, err := NewTokenService("other-secret", time.Hour)
	require.NoError(t, err)
	foreign, err := other.Issue("alice")
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "alice",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	cases := map[string]string{
		"wrong secret":    foreign,
		"alg none":        noneToken,
		"missing exp":     noExp,
		"missing subject": noSubject,
		"other algorithm": hs512,
		"tampered":        tampered,
		"malformed":       "not.a.jwt",
		"empty":           "",
		"two segments":    parts[0] + "." + parts[1],
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			claims, err := tokens.Validate(token)
			assert.Nil(t, claims)
			assert.Equal(t, ErrInvalidToken, err)
		})
	}
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService("", time.Minute)
	assert.Error(t, err)

	_, err = NewTokenService("s", 0)
	assert.Error(t, err)
}
