package converter

import (
	"time"

	"notes-app/internal/model"
)

// Note - JSON представление заметки на проводе между клиентом и Data Service
type Note struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageKey    string    `json:"image_key,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListNotesResponse - ответ операции list Data Service.
// В зависимости от версии SDK коллекция приходит в поле "items" или "data",
// клиент обязан принимать оба варианта (нормализация на границе - в rest клиенте).
type ListNotesResponse struct {
	Items []Note `json:"items,omitempty"`
	Data  []Note `json:"data,omitempty"`
}

// CreateNoteRequest - запрос операции create Data Service
type CreateNoteRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageKey    string `json:"image_key,omitempty"`
}

// CreateNoteResponse - ответ операции create Data Service
type CreateNoteResponse struct {
	Note Note `json:"note"`
}

// SignRequest - запрос подписанной ссылки у Storage Service
type SignRequest struct {
	Key string `json:"key"`
}

// SignResponse - ответ с временной подписанной ссылкой
type SignResponse struct {
	URL string `json:"url"`
}

// SignInRequest - запрос входа в Auth Service
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionResponse - ответ Auth Service с данными сессии
type SessionResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Token    string `json:"token,omitempty"`
}

// ErrorResponse - тело ответа при ошибке
type ErrorResponse struct {
	Error string `json:"error"`
}

// WireToModel конвертирует проводное представление заметки в domain модель
func WireToModel(wireNote Note) model.Note {
	return model.Note{
		ID:          wireNote.ID,
		Name:        wireNote.Name,
		Description: wireNote.Description,
		ImageKey:    wireNote.ImageKey,
		CreatedAt:   wireNote.CreatedAt,
		UpdatedAt:   wireNote.UpdatedAt,
	}
}

// ModelToWire конвертирует domain модель Note в проводное представление
func ModelToWire(note model.Note) Note {
	return Note{
		ID:          note.ID,
		Name:        note.Name,
		Description: note.Description,
		ImageKey:    note.ImageKey,
		CreatedAt:   note.CreatedAt,
		UpdatedAt:   note.UpdatedAt,
	}
}

// WiresToModels конвертирует слайс проводных заметок в слайс domain моделей
func WiresToModels(wireNotes []Note) []model.Note {
	if wireNotes == nil {
		return nil
	}

	notes := make([]model.Note, len(wireNotes))
	for i, wireNote := range wireNotes {
		notes[i] = WireToModel(wireNote)
	}

	return notes
}

// ModelsToWires конвертирует слайс domain моделей в слайс проводных заметок
func ModelsToWires(notes []model.Note) []Note {
	if notes == nil {
		return nil
	}

	wireNotes := make([]Note, len(notes))
	for i, note := range notes {
		wireNotes[i] = ModelToWire(note)
	}

	return wireNotes
}

// SessionToModel конвертирует проводное представление сессии в domain модель
func SessionToModel(resp SessionResponse) model.Session {
	return model.Session{
		UserID:   resp.UserID,
		Username: resp.Username,
		Token:    resp.Token,
	}
}
