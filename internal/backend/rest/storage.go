package rest

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"

	"notes-app/internal/backend"
	"notes-app/internal/converter"
)

var _ backend.StorageService = (*Storage)(nil)

// Storage - SDK клиент Storage Service поверх HTTP/JSON API
type Storage struct {
	client *Client
}

// NewStorage создает клиент Storage Service на общем SDK клиенте
func NewStorage(client *Client) *Storage {
	return &Storage{client: client}
}

// Upload загружает содержимое объекта по ключу.
// Возвращает управление только после подтверждения сохранения бэкендом.
func (s *Storage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	resp, err := s.client.do(ctx, http.MethodPut, "/api/storage/objects/"+url.PathEscape(key), bytes.NewReader(data), contentType)
	if err != nil {
		return fmt.Errorf("upload object %s: %w", key, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("upload object %s: %w", key, err)
	}

	return nil
}

// SignedURL возвращает временную подписанную ссылку на объект
func (s *Storage) SignedURL(ctx context.Context, key string) (string, error) {
	req := converter.SignRequest{Key: key}

	var signResp converter.SignResponse
	if err := s.client.doJSON(ctx, http.MethodPost, "/api/storage/sign", req, &signResp); err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return "", backend.ErrObjectNotFound
		}
		return "", fmt.Errorf("sign url for %s: %w", key, err)
	}

	return signResp.URL, nil
}

// Remove удаляет объект по ключу
func (s *Storage) Remove(ctx context.Context, key string) error {
	err := s.client.doJSON(ctx, http.MethodDelete, "/api/storage/objects/"+url.PathEscape(key), nil, nil)
	if err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return backend.ErrObjectNotFound
		}
		return fmt.Errorf("remove object %s: %w", key, err)
	}

	return nil
}
