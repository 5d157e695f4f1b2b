package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"notes-app/internal/backend"
	"notes-app/internal/model"

	"github.com/google/uuid"
)

var _ backend.DataService = (*Data)(nil)

// Data реализует DataService в памяти на основе map.
// Используется эмулятором управляемого бэкенда и тестами.
type Data struct {
	mu    sync.RWMutex
	notes map[string]model.Note
}

// NewData создает новый экземпляр in-memory Data Service
func NewData() *Data {
	return &Data{
		notes: make(map[string]model.Note),
	}
}

// Create создает новую заметку и возвращает созданную заметку с ID
func (d *Data) Create(ctx context.Context, note model.Note) (model.Note, error) {
	if err := note.Validate(); err != nil {
		return model.Note{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// Генерируем UUID если не передан
	if note.ID == "" {
		note.ID = uuid.New().String()
	}

	// Устанавливаем временные метки
	now := time.Now()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	note.UpdatedAt = now

	// Сохраняем заметку
	d.notes[note.ID] = note

	return note, nil
}

// List возвращает список всех заметок, упорядоченный по времени создания
func (d *Data) List(ctx context.Context) ([]model.Note, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	notes := make([]model.Note, 0, len(d.notes))
	for _, note := range d.notes {
		notes = append(notes, note)
	}

	// Стабильный порядок: по времени создания, затем по ID
	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].CreatedAt.Equal(notes[j].CreatedAt) {
			return notes[i].CreatedAt.Before(notes[j].CreatedAt)
		}
		return notes[i].ID < notes[j].ID
	})

	return notes, nil
}

// Delete удаляет заметку по ID
func (d *Data) Delete(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Проверяем существование заметки
	_, exists := d.notes[id]
	if !exists {
		return backend.ErrNoteNotFound
	}

	delete(d.notes, id)

	return nil
}
