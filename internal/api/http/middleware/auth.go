package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"notes-app/internal/converter"
	"notes-app/internal/model"
)

const (
	// authorizationHeader - имя заголовка авторизации
	authorizationHeader = "Authorization"
	// bearerPrefix - ожидаемый префикс значения заголовка
	bearerPrefix = "Bearer "
)

// sessionKey - ключ сессии в контексте запроса
type sessionKey struct{}

// SessionLookup проверяет bearer токен и возвращает сессию
type SessionLookup func(token string) (model.Session, error)

// Auth проверяет наличие и валидность bearer токена в заголовке Authorization.
// Токен должен быть передан в формате "Bearer <token>". Если токен отсутствует
// или невалиден, возвращается 401 без вызова следующего обработчика.
// Валидная сессия кладется в контекст запроса (см. SessionFromContext).
func Auth(next http.Handler, lookup SessionLookup) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get(authorizationHeader)
		if authHeader == "" {
			unauthorized(w, "authorization header not provided")
			return
		}

		// Проверяем формат токена (должен начинаться с "Bearer ")
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			unauthorized(w, "invalid authorization header format")
			return
		}

		// Извлекаем токен (часть после "Bearer ")
		token := strings.TrimPrefix(authHeader, bearerPrefix)

		session, err := lookup(token)
		if err != nil {
			unauthorized(w, "invalid token")
			return
		}

		// Токен валиден, пропускаем запрос дальше с сессией в контексте
		ctx := context.WithValue(r.Context(), sessionKey{}, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromContext возвращает сессию, положенную Auth middleware в контекст запроса
func SessionFromContext(ctx context.Context) (model.Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(model.Session)
	return session, ok
}

// unauthorized пишет 401 с JSON телом ошибки
func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(converter.ErrorResponse{Error: message})
}
