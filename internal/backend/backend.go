package backend

import (
	"context"
	"errors"

	"notes-app/internal/model"
)

// ErrNoteNotFound возвращается, когда заметка не найдена в Data Service
var ErrNoteNotFound = errors.New("note not found")

// ErrObjectNotFound возвращается, когда объект не найден в Storage Service
var ErrObjectNotFound = errors.New("object not found")

// ErrUnauthenticated возвращается, когда сессия отсутствует или токен невалиден
var ErrUnauthenticated = errors.New("unauthenticated")

// DataService интерфейс внешнего управляемого сервиса хранения заметок
type DataService interface {
	// List возвращает все заметки текущей сессии
	List(ctx context.Context) ([]model.Note, error)

	// Create создает новую заметку и возвращает созданную заметку с присвоенным ID
	Create(ctx context.Context, note model.Note) (model.Note, error)

	// Delete удаляет заметку по ID
	Delete(ctx context.Context, id string) error
}

// StorageService интерфейс внешнего управляемого объектного хранилища
type StorageService interface {
	// Upload загружает содержимое объекта по указанному ключу.
	// Возвращает управление только после того, как байты сохранены.
	Upload(ctx context.Context, key string, data []byte, contentType string) error

	// SignedURL возвращает временную подписанную ссылку на объект
	SignedURL(ctx context.Context, key string) (string, error)

	// Remove удаляет объект по ключу (best-effort очистка)
	Remove(ctx context.Context, key string) error
}

// AuthService интерфейс внешнего сервиса аутентификации
type AuthService interface {
	// CurrentSession возвращает текущую сессию пользователя
	// или ErrUnauthenticated, если сессия не установлена
	CurrentSession(ctx context.Context) (model.Session, error)
}
