package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"notes-app/internal/api/http/middleware"
	"notes-app/internal/backend"
	"notes-app/internal/backend/memory"
	"notes-app/internal/converter"
	"notes-app/internal/model"
)

// maxUploadSize - максимальный размер загружаемого объекта (10 MiB)
const maxUploadSize = 10 << 20

// Handler реализует HTTP API эмулятора управляемого бэкенда:
// заметки Data Service, объекты и подписанные ссылки Storage Service,
// вход и сессии Auth Service.
type Handler struct {
	data    backend.DataService
	storage *memory.Storage
	auth    *memory.Auth
}

// NewHandler создает новый экземпляр HTTP хэндлера эмулятора
func NewHandler(data backend.DataService, storage *memory.Storage, auth *memory.Auth) *Handler {
	return &Handler{
		data:    data,
		storage: storage,
		auth:    auth,
	}
}

// Register регистрирует маршруты API на mux.
// Вход и скачивание по подписанной ссылке доступны без авторизации,
// остальные маршруты защищены Auth middleware.
func (h *Handler) Register(mux *http.ServeMux) {
	withAuth := func(handlerFunc http.HandlerFunc) http.Handler {
		return middleware.Auth(handlerFunc, h.auth.SessionByToken)
	}

	mux.HandleFunc("POST /api/auth/signin", h.SignIn)
	mux.Handle("GET /api/auth/session", withAuth(h.Session))

	mux.Handle("GET /api/notes", withAuth(h.ListNotes))
	mux.Handle("POST /api/notes", withAuth(h.CreateNote))
	mux.Handle("DELETE /api/notes/{id}", withAuth(h.DeleteNote))

	mux.Handle("PUT /api/storage/objects/{key}", withAuth(h.UploadObject))
	mux.Handle("DELETE /api/storage/objects/{key}", withAuth(h.RemoveObject))
	mux.Handle("POST /api/storage/sign", withAuth(h.SignURL))
	// Скачивание защищено подписью в самой ссылке, а не сессией
	mux.HandleFunc("GET /api/storage/objects/{key}", h.GetObject)
}

// SignIn проверяет учетные данные и открывает новую сессию
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req converter.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.auth.SignIn(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, converter.SessionResponse{
		UserID:   session.UserID,
		Username: session.Username,
		Token:    session.Token,
	})
}

// Session возвращает сессию текущего запроса
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	// Токен клиенту уже известен, обратно не возвращаем
	writeJSON(w, http.StatusOK, converter.SessionResponse{
		UserID:   session.UserID,
		Username: session.Username,
	})
}

// ListNotes возвращает список всех заметок.
// Коллекция отдается в поле "items" (актуальная форма ответа API).
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.data.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, converter.ListNotesResponse{
		Items: converter.ModelsToWires(notes),
	})
}

// CreateNote создает новую заметку
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req converter.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	note := model.Note{
		Name:        req.Name,
		Description: req.Description,
		ImageKey:    req.ImageKey,
	}
	if err := note.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.data.Create(r.Context(), note)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, converter.CreateNoteResponse{
		Note: converter.ModelToWire(created),
	})
}

// DeleteNote удаляет заметку по ID
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id cannot be empty")
		return
	}

	if err := h.data.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadObject загружает содержимое объекта в хранилище
func (h *Handler) UploadObject(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key cannot be empty")
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxUploadSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(data) > maxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("object exceeds %d bytes", maxUploadSize))
		return
	}

	contentType := r.Header.Get("Content-Type")
	if err := h.storage.Upload(r.Context(), key, data, contentType); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// SignURL выдает временную подписанную ссылку на объект
func (h *Handler) SignURL(w http.ResponseWriter, r *http.Request) {
	var req converter.SignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Key) == "" {
		writeError(w, http.StatusBadRequest, "key cannot be empty")
		return
	}

	signedURL, err := h.storage.SignedURL(r.Context(), req.Key)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, converter.SignResponse{URL: signedURL})
}

// GetObject отдает содержимое объекта по подписанной ссылке.
// Подпись и срок действия проверяются до обращения к хранилищу.
func (h *Handler) GetObject(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	query := r.URL.Query()

	if err := h.storage.Verify(key, query.Get("expires"), query.Get("sig")); err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}

	data, contentType, err := h.storage.Get(key)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("[HTTP] write object %s: %v", key, err)
	}
}

// RemoveObject удаляет объект из хранилища
func (h *Handler) RemoveObject(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key cannot be empty")
		return
	}

	if err := h.storage.Remove(r.Context(), key); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError отображает ошибки сервисов на HTTP статусы
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, backend.ErrNoteNotFound):
		writeError(w, http.StatusNotFound, "note not found")
	case errors.Is(err, backend.ErrObjectNotFound):
		writeError(w, http.StatusNotFound, "object not found")
	case errors.Is(err, backend.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	default:
		log.Printf("[HTTP] internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// writeJSON пишет ответ с JSON телом и указанным статусом
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[HTTP] encode response: %v", err)
	}
}

// writeError пишет ответ с JSON телом ошибки
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, converter.ErrorResponse{Error: message})
}
