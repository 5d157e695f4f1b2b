package model

import (
	"errors"
	"strings"
	"time"
)

// Note представляет заметку (доменная модель, владелец - Data Service)
type Note struct {
	ID          string    // UUID заметки, присваивается Data Service при создании
	Name        string    // Название заметки (обязательное поле)
	Description string    // Описание заметки (опционально, по умолчанию пустая строка)
	ImageKey    string    // Ключ вложенного изображения в Storage Service (пустой, если вложения нет)
	CreatedAt   time.Time // Дата создания
	UpdatedAt   time.Time // Дата последнего обновления
}

// DisplayNote представляет заметку для отображения: Note плюс разрешенный URL изображения.
// Никогда не сохраняется — пересоздается заново при каждой синхронизации списка.
type DisplayNote struct {
	Note

	// ImageURL - временная подписанная ссылка на изображение.
	// Пустая строка, если ImageKey пуст или разрешение URL не удалось.
	ImageURL string
}

// Session представляет текущую сессию пользователя, выданную Auth Service
type Session struct {
	UserID   string // UUID пользователя
	Username string // Имя пользователя
	Token    string // Bearer токен сессии
}

// Validate проверяет валидность заметки
func (n *Note) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return errors.New("name cannot be empty")
	}
	return nil
}

// IsEmpty проверяет, пуста ли заметка
func (n *Note) IsEmpty() bool {
	return n.ID == "" && n.Name == "" && n.Description == "" && n.ImageKey == ""
}

// HasImage проверяет, есть ли у заметки вложенное изображение
func (n *Note) HasImage() bool {
	return n.ImageKey != ""
}
