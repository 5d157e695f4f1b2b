package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"notes-app/internal/backend"
	"notes-app/internal/converter"
)

// Client - общий HTTP клиент SDK для всех сервисов управляемого бэкенда.
// Хранит базовый адрес и bearer токен текущей сессии; токен устанавливается
// при входе (Auth.SignIn) и дальше подставляется во все запросы.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient создает новый SDK клиент для бэкенда по указанному адресу.
// Если httpClient == nil, используется клиент с таймаутом по умолчанию.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// SetToken устанавливает bearer токен сессии для последующих запросов
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token возвращает текущий bearer токен сессии
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// doJSON выполняет запрос с JSON телом (или без тела) и декодирует JSON ответ в out.
// Если out == nil, тело ответа игнорируется.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	resp, err := c.do(ctx, method, path, body, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}

	return nil
}

// do выполняет запрос с произвольным телом и возвращает ответ без декодирования.
// Вызывающий обязан закрыть тело ответа.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	return resp, nil
}

// StatusError описывает неуспешный HTTP статус ответа бэкенда
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Code, e.Message)
}

// IsStatus проверяет, является ли ошибка StatusError с указанным кодом
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Code == code
}

// checkStatus конвертирует неуспешный HTTP статус в ошибку.
// 401 отображается на backend.ErrUnauthenticated, остальные статусы
// возвращаются как *StatusError - сервисные клиенты сами отображают 404
// на свою sentinel ошибку (ErrNoteNotFound или ErrObjectNotFound).
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Пытаемся извлечь сообщение об ошибке из тела ответа
	message := resp.Status
	var errResp converter.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&errResp); err == nil && errResp.Error != "" {
		message = errResp.Error
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", backend.ErrUnauthenticated, message)
	}

	return &StatusError{Code: resp.StatusCode, Message: message}
}
