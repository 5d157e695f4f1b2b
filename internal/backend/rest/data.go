package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"notes-app/internal/backend"
	"notes-app/internal/converter"
	"notes-app/internal/model"
)

var _ backend.DataService = (*Data)(nil)

// Data - SDK клиент Data Service поверх HTTP/JSON API
type Data struct {
	client *Client
}

// NewData создает клиент Data Service на общем SDK клиенте
func NewData(client *Client) *Data {
	return &Data{client: client}
}

// List возвращает все заметки текущей сессии.
// Разные версии API бэкенда возвращают коллекцию в поле "items" или "data" -
// принимаем оба варианта; если не заполнено ни одно, считаем список пустым.
func (d *Data) List(ctx context.Context) ([]model.Note, error) {
	var resp converter.ListNotesResponse
	if err := d.client.doJSON(ctx, http.MethodGet, "/api/notes", nil, &resp); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	// Нормализация формы ответа: items имеет приоритет, затем data, иначе пусто
	wireNotes := resp.Items
	if wireNotes == nil {
		wireNotes = resp.Data
	}
	if wireNotes == nil {
		return []model.Note{}, nil
	}

	return converter.WiresToModels(wireNotes), nil
}

// Create создает новую заметку и возвращает созданную заметку с присвоенным ID
func (d *Data) Create(ctx context.Context, note model.Note) (model.Note, error) {
	req := converter.CreateNoteRequest{
		Name:        note.Name,
		Description: note.Description,
		ImageKey:    note.ImageKey,
	}

	var resp converter.CreateNoteResponse
	if err := d.client.doJSON(ctx, http.MethodPost, "/api/notes", req, &resp); err != nil {
		return model.Note{}, fmt.Errorf("create note: %w", err)
	}

	return converter.WireToModel(resp.Note), nil
}

// Delete удаляет заметку по ID
func (d *Data) Delete(ctx context.Context, id string) error {
	err := d.client.doJSON(ctx, http.MethodDelete, "/api/notes/"+url.PathEscape(id), nil, nil)
	if err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return backend.ErrNoteNotFound
		}
		return fmt.Errorf("delete note %s: %w", id, err)
	}

	return nil
}
