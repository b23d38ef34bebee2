// auth проверяет bearer-токены внешнего identity-провайдера.
// Сервис токены не выпускает: только валидирует подпись и claims.
package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken — подпись, issuer/audience или sub не прошли проверку.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired — токен просрочен.
	ErrTokenExpired = errors.New("token expired")
)

// Identity — проверенная личность вызывающего.
type Identity struct {
	UserID uuid.UUID
	Roles  []string
}

// HasRole сообщает, есть ли у пользователя роль.
func (i *Identity) HasRole(role string) bool {
	return i != nil && slices.Contains(i.Roles, role)
}

type claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Config — параметры проверки токенов.
type Config struct {
	Secret   string
	Issuer   string
	Audience []string
}

// Verifier проверяет HS256-токены.
type Verifier struct {
	cfg Config
}

func NewVerifier(cfg Config) *Verifier {
	return &Verifier{cfg: cfg}
}

// Verify валидирует токен и извлекает sub (UUID) и roles.
func (v *Verifier) Verify(tokenStr string) (*Identity, error) {
	const op = "auth.Verifier.Verify"

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5 * time.Second),
	}
	if v.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.cfg.Issuer))
	}
	if len(v.cfg.Audience) > 0 {
		opts = append(opts, jwt.WithAudience(v.cfg.Audience...))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &claims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}

			return []byte(v.cfg.Secret), nil
		},
		opts...,
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	uid, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return &Identity{UserID: uid, Roles: c.Roles}, nil
}

type ctxKey struct{}

// Into кладёт личность в контекст.
func Into(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// From достаёт личность из контекста. nil — анонимный вызов.
func From(ctx context.Context) *Identity {
	id, _ := ctx.Value(ctxKey{}).(*Identity)
	return id
}
