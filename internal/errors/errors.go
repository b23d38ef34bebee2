// errors стандартизирует ответы об ошибках HTTP-слоя pulse-reader.
// На вход он принимает ошибку сервисного слоя (сентинелы service.*),
// а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей хранилища;
//   - details по полям для ошибок валидации.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/pribylovaa/pulse-reader/internal/auth"
	"github.com/pribylovaa/pulse-reader/internal/service"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

var (
	// ErrUnauthenticated — токен есть, но не прошёл проверку.
	ErrUnauthenticated = stderrors.New("unauthenticated")
	// ErrPermissionDenied — у пользователя нет нужной роли.
	ErrPermissionDenied = stderrors.New("permission denied")
	// ErrBadRequest — тело запроса не разбирается как JSON нужной формы.
	ErrBadRequest = stderrors.New("malformed request body")
)

// FieldDetail — причина отказа по одному полю.
type FieldDetail struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string        `json:"code"`
	Message   string        `json:"message"`
	RequestID string        `json:"request_id,omitempty"`
	Details   []FieldDetail `json:"details,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

func response(code, msg string) ErrorResponse {
	return ErrorResponse{Error: APIError{Code: code, Message: msg}}
}

// ToHTTP конвертирует ошибку сервисного слоя в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil - это программная ошибка вызова: возвращаем 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не маскировать баг;
//   - *service.ValidationError - 400 с details по полям;
//   - предусловия персонализации - 401 auth_required / 412 profile_required;
//   - неизвестная ошибка - 500/internal (без утечки деталей).
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusInternalServerError, response("internal", "internal error")
	}

	var verr *service.ValidationError
	if stderrors.As(err, &verr) {
		resp := response("invalid_argument", "invalid argument")
		for _, f := range verr.Fields {
			resp.Error.Details = append(resp.Error.Details, FieldDetail{Field: f.Field, Reason: f.Reason})
		}

		return http.StatusBadRequest, resp
	}

	switch {
	case stderrors.Is(err, service.ErrInvalidArgument), stderrors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, response("invalid_argument", "invalid argument")
	case stderrors.Is(err, service.ErrAuthRequired):
		return http.StatusUnauthorized, response("auth_required", "authentication required")
	case stderrors.Is(err, service.ErrProfileRequired):
		return http.StatusPreconditionFailed, response("profile_required", "personalization profile required")
	case stderrors.Is(err, service.ErrPrecondition):
		return http.StatusPreconditionFailed, response("failed_precondition", "failed precondition")
	case stderrors.Is(err, ErrUnauthenticated),
		stderrors.Is(err, auth.ErrInvalidToken),
		stderrors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized, response("unauthenticated", "unauthenticated")
	case stderrors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden, response("permission_denied", "permission denied")
	case stderrors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, response("not_found", "not found")
	case stderrors.Is(err, service.ErrAlreadyExists):
		return http.StatusConflict, response("already_exists", "already exists")
	case stderrors.Is(err, service.ErrReferenced):
		return http.StatusConflict, response("referenced", "resource is still referenced")
	case stderrors.Is(err, service.ErrUnavailable):
		return http.StatusServiceUnavailable, response("unavailable", "service unavailable")
	case stderrors.Is(err, context.Canceled):
		return StatusClientClosedRequest, response("canceled", "canceled")
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, response("deadline_exceeded", "deadline exceeded")
	default:
		return http.StatusInternalServerError, response("internal", "internal error")
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
