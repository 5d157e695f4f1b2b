package rest

import (
	"context"
	"fmt"
	"net/http"

	"notes-app/internal/backend"
	"notes-app/internal/converter"
	"notes-app/internal/model"
)

var _ backend.AuthService = (*Auth)(nil)

// Auth - SDK клиент Auth Service поверх HTTP/JSON API
type Auth struct {
	client *Client
}

// NewAuth создает клиент Auth Service на общем SDK клиенте
func NewAuth(client *Client) *Auth {
	return &Auth{client: client}
}

// SignIn выполняет вход и запоминает выданный bearer токен в общем SDK клиенте,
// так что последующие запросы Data и Storage клиентов идут от имени этой сессии
func (a *Auth) SignIn(ctx context.Context, username, password string) (model.Session, error) {
	req := converter.SignInRequest{Username: username, Password: password}

	var resp converter.SessionResponse
	if err := a.client.doJSON(ctx, http.MethodPost, "/api/auth/signin", req, &resp); err != nil {
		return model.Session{}, fmt.Errorf("sign in: %w", err)
	}

	session := converter.SessionToModel(resp)
	a.client.SetToken(session.Token)

	return session, nil
}

// CurrentSession возвращает текущую сессию пользователя
// или ErrUnauthenticated, если сессия не установлена
func (a *Auth) CurrentSession(ctx context.Context) (model.Session, error) {
	if a.client.Token() == "" {
		return model.Session{}, backend.ErrUnauthenticated
	}

	var resp converter.SessionResponse
	if err := a.client.doJSON(ctx, http.MethodGet, "/api/auth/session", nil, &resp); err != nil {
		return model.Session{}, fmt.Errorf("current session: %w", err)
	}

	session := converter.SessionToModel(resp)
	if session.Token == "" {
		session.Token = a.client.Token()
	}

	return session, nil
}
