package notelist

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"notes-app/internal/backend"
	"notes-app/internal/model"
)

// mockData - mock Data Service с перехватом вызовов
type mockData struct {
	mu          sync.Mutex
	listCalls   int
	createCalls int
	deleteCalls int

	listFunc   func(ctx context.Context) ([]model.Note, error)
	createFunc func(ctx context.Context, note model.Note) (model.Note, error)
	deleteFunc func(ctx context.Context, id string) error
}

func (m *mockData) List(ctx context.Context) ([]model.Note, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockData) Create(ctx context.Context, note model.Note) (model.Note, error) {
	m.mu.Lock()
	m.createCalls++
	m.mu.Unlock()
	if m.createFunc != nil {
		return m.createFunc(ctx, note)
	}
	note.ID = "generated-id"
	return note, nil
}

func (m *mockData) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	m.deleteCalls++
	m.mu.Unlock()
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockData) calls() (list, create, del int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls, m.createCalls, m.deleteCalls
}

// mockStorage - mock Storage Service с перехватом вызовов
type mockStorage struct {
	mu          sync.Mutex
	uploadCalls int
	signCalls   int
	removeCalls int

	uploadFunc func(ctx context.Context, key string, data []byte, contentType string) error
	signFunc   func(ctx context.Context, key string) (string, error)
	removeFunc func(ctx context.Context, key string) error
}

func (m *mockStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	m.uploadCalls++
	m.mu.Unlock()
	if m.uploadFunc != nil {
		return m.uploadFunc(ctx, key, data, contentType)
	}
	return nil
}

func (m *mockStorage) SignedURL(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	m.signCalls++
	m.mu.Unlock()
	if m.signFunc != nil {
		return m.signFunc(ctx, key)
	}
	return "https://signed.example/" + key, nil
}

func (m *mockStorage) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	m.removeCalls++
	m.mu.Unlock()
	if m.removeFunc != nil {
		return m.removeFunc(ctx, key)
	}
	return nil
}

func (m *mockStorage) calls() (upload, sign, remove int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploadCalls, m.signCalls, m.removeCalls
}

// Проверяем, что mock'и реализуют интерфейсы
var _ backend.DataService = (*mockData)(nil)
var _ backend.StorageService = (*mockStorage)(nil)

func TestController_FetchNotes_ResolvesImageURLs(t *testing.T) {
	ctx := context.Background()

	notes := []model.Note{
		{ID: "1", Name: "first", ImageKey: "key-1"},
		{ID: "2", Name: "second"},
		{ID: "3", Name: "third", ImageKey: "broken-key"},
	}

	data := &mockData{
		listFunc: func(ctx context.Context) ([]model.Note, error) {
			return notes, nil
		},
	}
	storage := &mockStorage{
		signFunc: func(ctx context.Context, key string) (string, error) {
			if key == "broken-key" {
				return "", errors.New("sign failure")
			}
			return "https://signed.example/" + key, nil
		},
	}

	controller := New(data, storage)

	if err := controller.FetchNotes(ctx); err != nil {
		t.Fatalf("FetchNotes returned error: %v", err)
	}

	got := controller.Notes()
	if len(got) != len(notes) {
		t.Fatalf("expected %d notes, got %d", len(notes), len(got))
	}

	// Порядок ID совпадает с порядком Data Service
	for i, note := range notes {
		if got[i].ID != note.ID {
			t.Errorf("position %d: expected id %s, got %s", i, note.ID, got[i].ID)
		}
	}

	if got[0].ImageURL != "https://signed.example/key-1" {
		t.Errorf("expected resolved url for key-1, got %q", got[0].ImageURL)
	}
	// Без ImageKey ссылка не запрашивается
	if got[1].ImageURL != "" {
		t.Errorf("expected empty url for note without image, got %q", got[1].ImageURL)
	}
	// Сбой разрешения одной заметки не прерывает остальные
	if got[2].ImageURL != "" {
		t.Errorf("expected empty url for failed resolution, got %q", got[2].ImageURL)
	}

	_, sign, _ := storage.calls()
	if sign != 2 {
		t.Errorf("expected 2 sign calls (only notes with image keys), got %d", sign)
	}
}

func TestController_FetchNotes_Idempotent(t *testing.T) {
	ctx := context.Background()

	data := &mockData{
		listFunc: func(ctx context.Context) ([]model.Note, error) {
			return []model.Note{
				{ID: "a", Name: "alpha", Description: "one", ImageKey: "k"},
				{ID: "b", Name: "beta"},
			}, nil
		},
	}
	controller := New(data, &mockStorage{})

	if err := controller.FetchNotes(ctx); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	first := controller.Notes()

	if err := controller.FetchNotes(ctx); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	second := controller.Notes()

	if len(first) != len(second) {
		t.Fatalf("fetches disagree on length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Note != second[i].Note {
			t.Errorf("position %d: notes differ between fetches: %+v vs %+v", i, first[i].Note, second[i].Note)
		}
	}
}

func TestController_FetchNotes_ListErrorPropagates(t *testing.T) {
	ctx := context.Background()

	listErr := errors.New("backend down")
	data := &mockData{
		listFunc: func(ctx context.Context) ([]model.Note, error) {
			return nil, listErr
		},
	}
	controller := New(data, &mockStorage{})

	err := controller.FetchNotes(ctx)
	if !errors.Is(err, listErr) {
		t.Fatalf("expected list error to propagate, got %v", err)
	}
	if controller.Loading() {
		t.Error("loading flag must be cleared after a failed fetch")
	}
}

func TestController_FetchNotes_StaleResultDiscarded(t *testing.T) {
	ctx := context.Background()

	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})

	var fetchCount int
	var mu sync.Mutex

	data := &mockData{}
	data.listFunc = func(ctx context.Context) ([]model.Note, error) {
		mu.Lock()
		fetchCount++
		current := fetchCount
		mu.Unlock()

		if current == 1 {
			close(firstStarted)
			// Первый fetch зависает до завершения второго
			<-releaseFirst
			return []model.Note{{ID: "stale", Name: "stale"}}, nil
		}
		return []model.Note{{ID: "fresh", Name: "fresh"}}, nil
	}

	controller := New(data, &mockStorage{})

	done := make(chan error, 1)
	go func() {
		done <- controller.FetchNotes(ctx)
	}()
	<-firstStarted

	// Второй fetch стартует и завершается, пока первый еще висит
	if err := controller.FetchNotes(ctx); err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	close(releaseFirst)
	if err := <-done; err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	got := controller.Notes()
	if len(got) != 1 || got[0].ID != "fresh" {
		t.Fatalf("stale fetch overwrote the list: %+v", got)
	}
}

func TestController_CreateNote_EmptyName_NoCalls(t *testing.T) {
	ctx := context.Background()

	data := &mockData{}
	storage := &mockStorage{}
	controller := New(data, storage)

	for _, name := range []string{"", "   ", "\t\n"} {
		if err := controller.CreateNote(ctx, CreateInput{Name: name, Description: "ignored"}); err != nil {
			t.Fatalf("empty name %q must be a silent no-op, got %v", name, err)
		}
	}

	list, create, del := data.calls()
	if list != 0 || create != 0 || del != 0 {
		t.Errorf("expected zero data service calls, got list=%d create=%d delete=%d", list, create, del)
	}
	upload, sign, remove := storage.calls()
	if upload != 0 || sign != 0 || remove != 0 {
		t.Errorf("expected zero storage service calls, got upload=%d sign=%d remove=%d", upload, sign, remove)
	}
}

func TestController_CreateNote_NoImage(t *testing.T) {
	ctx := context.Background()

	var createdNote model.Note
	data := &mockData{
		createFunc: func(ctx context.Context, note model.Note) (model.Note, error) {
			createdNote = note
			note.ID = "new-id"
			return note, nil
		},
	}
	storage := &mockStorage{}
	controller := New(data, storage)

	err := controller.CreateNote(ctx, CreateInput{Name: "  groceries  ", Description: " milk "})
	if err != nil {
		t.Fatalf("CreateNote returned error: %v", err)
	}

	if createdNote.Name != "groceries" {
		t.Errorf("expected trimmed name, got %q", createdNote.Name)
	}
	if createdNote.Description != "milk" {
		t.Errorf("expected trimmed description, got %q", createdNote.Description)
	}
	if createdNote.ImageKey != "" {
		t.Errorf("expected empty image key, got %q", createdNote.ImageKey)
	}

	upload, sign, remove := storage.calls()
	if upload != 0 || sign != 0 || remove != 0 {
		t.Errorf("expected zero storage calls for file-less create, got upload=%d sign=%d remove=%d", upload, sign, remove)
	}

	// Успешное создание перезапрашивает список
	list, _, _ := data.calls()
	if list != 1 {
		t.Errorf("expected 1 list call after create, got %d", list)
	}
}

func TestController_CreateNote_UploadBeforeCreate(t *testing.T) {
	ctx := context.Background()

	var mu sync.Mutex
	var sequence []string
	var uploadedKey string
	var createdKey string

	data := &mockData{
		createFunc: func(ctx context.Context, note model.Note) (model.Note, error) {
			mu.Lock()
			sequence = append(sequence, "create")
			createdKey = note.ImageKey
			mu.Unlock()
			note.ID = "new-id"
			return note, nil
		},
	}
	storage := &mockStorage{
		uploadFunc: func(ctx context.Context, key string, payload []byte, contentType string) error {
			mu.Lock()
			sequence = append(sequence, "upload")
			uploadedKey = key
			mu.Unlock()
			if string(payload) != "image-bytes" {
				t.Errorf("unexpected upload payload %q", payload)
			}
			if contentType != "image/png" {
				t.Errorf("unexpected content type %q", contentType)
			}
			return nil
		},
	}
	controller := New(data, storage)

	err := controller.CreateNote(ctx, CreateInput{
		Name: "with image",
		Image: &ImageUpload{
			FileName:    "cat.png",
			ContentType: "image/png",
			Data:        []byte("image-bytes"),
		},
	})
	if err != nil {
		t.Fatalf("CreateNote returned error: %v", err)
	}

	if len(sequence) < 2 || sequence[0] != "upload" || sequence[1] != "create" {
		t.Fatalf("upload must strictly precede create, got sequence %v", sequence)
	}
	if uploadedKey != createdKey {
		t.Errorf("created record references key %q, but %q was uploaded", createdKey, uploadedKey)
	}
	if !strings.HasSuffix(uploadedKey, "-cat.png") {
		t.Errorf("key must end with the original file name, got %q", uploadedKey)
	}
}

func TestController_CreateNote_UploadFailureSkipsCreate(t *testing.T) {
	ctx := context.Background()

	uploadErr := errors.New("upload failed")
	data := &mockData{}
	storage := &mockStorage{
		uploadFunc: func(ctx context.Context, key string, payload []byte, contentType string) error {
			return uploadErr
		},
	}
	controller := New(data, storage)

	err := controller.CreateNote(ctx, CreateInput{
		Name:  "doomed",
		Image: &ImageUpload{FileName: "x.png", Data: []byte("x")},
	})
	if !errors.Is(err, uploadErr) {
		t.Fatalf("expected upload error to propagate, got %v", err)
	}

	_, create, _ := data.calls()
	if create != 0 {
		t.Errorf("create must not be called after a failed upload, got %d calls", create)
	}
	if controller.Creating() {
		t.Error("creating flag must be cleared on the error path")
	}
}

func TestController_DeleteNote_OptimisticRemoval(t *testing.T) {
	ctx := context.Background()

	target := model.DisplayNote{Note: model.Note{ID: "doomed", Name: "doomed"}}
	other := model.DisplayNote{Note: model.Note{ID: "kept", Name: "kept"}}

	var visibleDuringDelete []model.DisplayNote
	var controller *Controller

	data := &mockData{
		deleteFunc: func(ctx context.Context, id string) error {
			// Снимок списка в момент сетевого вызова: удаление уже должно быть видно
			visibleDuringDelete = controller.Notes()
			return nil
		},
	}
	controller = New(data, &mockStorage{})
	seedNotes(controller, other, target)

	if err := controller.DeleteNote(ctx, target); err != nil {
		t.Fatalf("DeleteNote returned error: %v", err)
	}

	if len(visibleDuringDelete) != 1 || visibleDuringDelete[0].ID != "kept" {
		t.Errorf("note must disappear before the delete call responds, saw %+v", visibleDuringDelete)
	}
}

func TestController_DeleteNote_StorageCleanupFailureIgnored(t *testing.T) {
	ctx := context.Background()

	target := model.DisplayNote{Note: model.Note{ID: "n1", Name: "with image", ImageKey: "img-key"}}

	data := &mockData{}
	storage := &mockStorage{
		removeFunc: func(ctx context.Context, key string) error {
			return errors.New("storage unavailable")
		},
	}
	controller := New(data, storage)
	seedNotes(controller, target)

	if err := controller.DeleteNote(ctx, target); err != nil {
		t.Fatalf("storage cleanup failure must not affect the outcome, got %v", err)
	}

	_, _, remove := storage.calls()
	if remove != 1 {
		t.Errorf("expected 1 remove attempt, got %d", remove)
	}
}

func TestController_DeleteNote_FailureTriggersResync(t *testing.T) {
	ctx := context.Background()

	target := model.DisplayNote{Note: model.Note{ID: "survivor", Name: "survivor", ImageKey: "img"}}

	data := &mockData{
		deleteFunc: func(ctx context.Context, id string) error {
			return errors.New("delete rejected")
		},
		listFunc: func(ctx context.Context) ([]model.Note, error) {
			// Запись на сервере все еще существует
			return []model.Note{target.Note}, nil
		},
	}
	storage := &mockStorage{}
	controller := New(data, storage)
	seedNotes(controller, target)

	if err := controller.DeleteNote(ctx, target); err != nil {
		t.Fatalf("delete failure is reconciled, not surfaced: got %v", err)
	}

	got := controller.Notes()
	if len(got) != 1 || got[0].ID != "survivor" {
		t.Fatalf("reconciling fetch must restore the note, got %+v", got)
	}

	// Объект в хранилище не трогается, пока запись жива
	_, _, remove := storage.calls()
	if remove != 0 {
		t.Errorf("expected no storage remove after failed delete, got %d", remove)
	}
}

func TestController_Mount_FetchesExactlyOnce(t *testing.T) {
	ctx := context.Background()

	data := &mockData{}
	controller := New(data, &mockStorage{})

	if err := controller.Mount(ctx); err != nil {
		t.Fatalf("first mount: %v", err)
	}
	if err := controller.Mount(ctx); err != nil {
		t.Fatalf("second mount: %v", err)
	}

	list, _, _ := data.calls()
	if list != 1 {
		t.Errorf("mount must sync exactly once, got %d list calls", list)
	}
}

// seedNotes наполняет список контроллера без обращения к сервисам
func seedNotes(c *Controller, notes ...model.DisplayNote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = append([]model.DisplayNote(nil), notes...)
}
