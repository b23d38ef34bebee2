package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pribylovaa/pulse-reader/internal/auth"
	apierrors "github.com/pribylovaa/pulse-reader/internal/errors"
	"github.com/pribylovaa/pulse-reader/internal/pkg/log"
	"github.com/pribylovaa/pulse-reader/internal/pkg/redact"
)

// TokenVerifier проверяет bearer-токен.
type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

// Authenticate извлекает Bearer-токен из Authorization и кладёт проверенную
// личность в контекст (auth.Into).
//
// Поведение:
//   - заголовка нет — запрос анонимный, пропускаем дальше;
//   - схема не Bearer или токен пустой — 401;
//   - токен не прошёл проверку — 401 (детали только в логе).
func Authenticate(v TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				apierrors.WriteError(w, r, apierrors.ErrUnauthenticated)
				return
			}

			identity, err := v.Verify(token)
			if err != nil {
				log.From(r.Context()).Warn("token_rejected",
					slog.String("token", redact.Token()),
					log.Err(err),
				)
				apierrors.WriteError(w, r, err)
				return
			}

			ctx := auth.Into(r.Context(), identity)
			ctx = log.With(ctx, slog.String("user_id", identity.UserID.String()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole пропускает только аутентифицированных пользователей с ролью role.
// Анонимный запрос — 401, чужая роль — 403.
func RequireRole(role string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := auth.From(r.Context())
			if identity == nil {
				apierrors.WriteError(w, r, fmt.Errorf("role %q: %w", role, apierrors.ErrUnauthenticated))
				return
			}

			if !identity.HasRole(role) {
				log.From(r.Context()).Warn("role_required", slog.String("role", role))
				apierrors.WriteError(w, r, apierrors.ErrPermissionDenied)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
