package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, c claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, c).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims(sub string, roles ...string) claims {
	now := time.Now()
	return claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    "idp",
			Audience:  jwt.ClaimStrings{"pulse-reader"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func newVerifier() *Verifier {
	return NewVerifier(Config{Secret: secret, Issuer: "idp", Audience: []string{"pulse-reader"}})
}

func TestVerify_OK(t *testing.T) {
	t.Parallel()

	uid := uuid.New()
	tok := sign(t, jwt.SigningMethodHS256, []byte(secret), validClaims(uid.String(), "admin"))

	id, err := newVerifier().Verify(tok)
	require.NoError(t, err)
	require.Equal(t, uid, id.UserID)
	require.True(t, id.HasRole("admin"))
	require.False(t, id.HasRole("editor"))
}

func TestVerify_Failures(t *testing.T) {
	t.Parallel()

	uid := uuid.New().String()

	expired := validClaims(uid)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	wrongIss := validClaims(uid)
	wrongIss.Issuer = "other"

	wrongAud := validClaims(uid)
	wrongAud.Audience = jwt.ClaimStrings{"other"}

	tests := []struct {
		name string
		tok  string
		want error
	}{
		{"expired", sign(t, jwt.SigningMethodHS256, []byte(secret), expired), ErrTokenExpired},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("nope"), validClaims(uid)), ErrInvalidToken},
		{"wrong issuer", sign(t, jwt.SigningMethodHS256, []byte(secret), wrongIss), ErrInvalidToken},
		{"wrong audience", sign(t, jwt.SigningMethodHS256, []byte(secret), wrongAud), ErrInvalidToken},
		{"sub not uuid", sign(t, jwt.SigningMethodHS256, []byte(secret), validClaims("user-1")), ErrInvalidToken},
		{"wrong alg", sign(t, jwt.SigningMethodHS512, []byte(secret), validClaims(uid)), ErrInvalidToken},
		{"garbage", "not.a.token", ErrInvalidToken},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := newVerifier().Verify(tt.tok)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestContext_IntoFrom(t *testing.T) {
	t.Parallel()

	require.Nil(t, From(context.Background()))

	id := &Identity{UserID: uuid.New()}
	require.Same(t, id, From(Into(context.Background(), id)))

	var anon *Identity
	require.False(t, anon.HasRole("admin"))
}
