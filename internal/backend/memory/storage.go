package memory

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"notes-app/internal/backend"
)

var _ backend.StorageService = (*Storage)(nil)

// object хранит содержимое одного загруженного объекта
type object struct {
	data        []byte
	contentType string
}

// Storage реализует StorageService в памяти и выдает временные подписанные ссылки.
// Подпись - HMAC-SHA256 от пары "ключ|срок действия" на секрете из конфигурации,
// проверяется HTTP-слоем эмулятора при скачивании объекта.
type Storage struct {
	mu      sync.RWMutex
	objects map[string]object

	baseURL string
	secret  []byte
	ttl     time.Duration

	// now вынесено в поле для тестов истечения срока действия
	now func() time.Time
}

// NewStorage создает новый экземпляр in-memory Storage Service.
// baseURL - внешний адрес эмулятора (например, "http://localhost:8080"),
// secret - секрет для подписи ссылок, ttl - срок действия подписанной ссылки.
func NewStorage(baseURL string, secret string, ttl time.Duration) *Storage {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Storage{
		objects: make(map[string]object),
		baseURL: baseURL,
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Upload сохраняет содержимое объекта по ключу
func (s *Storage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return fmt.Errorf("storage key cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Копируем данные, чтобы не зависеть от буфера вызывающего
	stored := make([]byte, len(data))
	copy(stored, data)
	s.objects[key] = object{data: stored, contentType: contentType}

	return nil
}

// SignedURL возвращает временную подписанную ссылку на объект
func (s *Storage) SignedURL(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	_, exists := s.objects[key]
	s.mu.RUnlock()
	if !exists {
		return "", backend.ErrObjectNotFound
	}

	expires := s.now().Add(s.ttl).Unix()
	sig := s.sign(key, expires)

	return fmt.Sprintf("%s/api/storage/objects/%s?expires=%d&sig=%s",
		s.baseURL, url.PathEscape(key), expires, sig), nil
}

// Remove удаляет объект по ключу
func (s *Storage) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.objects[key]; !exists {
		return backend.ErrObjectNotFound
	}

	delete(s.objects, key)

	return nil
}

// Get возвращает содержимое и content type объекта.
// Используется HTTP-слоем эмулятора для отдачи объекта по подписанной ссылке.
func (s *Storage) Get(key string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, exists := s.objects[key]
	if !exists {
		return nil, "", backend.ErrObjectNotFound
	}

	return obj.data, obj.contentType, nil
}

// Verify проверяет подпись и срок действия подписанной ссылки
func (s *Storage) Verify(key string, expiresRaw string, sig string) error {
	expires, err := strconv.ParseInt(expiresRaw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid expires parameter: %w", err)
	}

	if s.now().Unix() > expires {
		return fmt.Errorf("signed url expired")
	}

	expected := s.sign(key, expires)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return fmt.Errorf("invalid signature")
	}

	return nil
}

// sign вычисляет HMAC-SHA256 подпись для пары ключ|срок действия
func (s *Storage) sign(key string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s|%d", key, expires)
	return hex.EncodeToString(mac.Sum(nil))
}
