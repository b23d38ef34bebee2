package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
)

// HeaderRequestID — заголовок корреляции запросов.
const HeaderRequestID = "X-Request-Id"

// maxRequestIDLen ограничивает входящий id, чтобы не тащить мусор в логи.
const maxRequestIDLen = 128

// RequestID обеспечивает наличие X-Request-Id:
//  1. берёт входящий заголовок, если он есть и не длиннее 128 символов;
//  2. иначе генерирует hex id из 16 случайных байт;
//  3. выставляет id в заголовок ответа и в заголовок запроса (его читают Logging и errors.WriteError).
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderRequestID)
			if id == "" || len(id) > maxRequestIDLen {
				id = genID()
				r.Header.Set(HeaderRequestID, id)
			}

			w.Header().Set(HeaderRequestID, id)
			next.ServeHTTP(w, r)
		})
	}
}

func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
