package notelist

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"notes-app/internal/backend"
	"notes-app/internal/model"

	"github.com/google/uuid"
)

// ImageUpload - вложенный файл изображения для создаваемой заметки
type ImageUpload struct {
	FileName    string // Оригинальное имя файла
	ContentType string // Заявленный content type
	Data        []byte // Содержимое файла
}

// CreateInput - входные данные операции создания заметки
type CreateInput struct {
	Name        string
	Description string
	Image       *ImageUpload // nil, если вложения нет
}

// Controller управляет списком заметок текущего пользователя:
// синхронизация с Data Service с разрешением подписанных ссылок на изображения,
// создание заметки (загрузка вложения строго до создания записи) и
// оптимистичное удаление с пересинхронизацией при сбое.
//
// Список в памяти заменяется только целиком (fetch) или фильтруется (оптимистичное
// удаление), никогда не мутируется по полям - читатели всегда видят согласованный снимок.
type Controller struct {
	data    backend.DataService
	storage backend.StorageService

	mu       sync.RWMutex
	notes    []model.DisplayNote
	loading  bool
	creating bool
	mounted  bool

	// fetchGen - поколение последнего запущенного FetchNotes.
	// Устаревший fetch, переживший более новый, не заменяет список.
	fetchGen atomic.Uint64
}

// New создает новый контроллер списка заметок
func New(data backend.DataService, storage backend.StorageService) *Controller {
	return &Controller{
		data:    data,
		storage: storage,
	}
}

// Mount выполняет ровно одну автоматическую синхронизацию списка за время жизни
// контроллера. Повторные вызовы - no-op; все последующие обновления запускаются
// явно (refresh, после создания, после неудачного удаления).
func (c *Controller) Mount(ctx context.Context) error {
	c.mu.Lock()
	if c.mounted {
		c.mu.Unlock()
		return nil
	}
	c.mounted = true
	c.mu.Unlock()

	return c.FetchNotes(ctx)
}

// FetchNotes загружает все заметки текущей сессии, разрешает подписанную ссылку
// на изображение для каждой заметки и атомарно заменяет список в памяти результатом.
//
// Все разрешения ссылок выполняются конкурентно; операция завершается только когда
// каждое разрешение завершилось (успехом или изолированным сбоем). Сбой разрешения
// одной заметки оставляет ее ImageURL пустым и не прерывает остальные.
// Сбой самого вызова list не перехватывается и возвращается вызывающему.
func (c *Controller) FetchNotes(ctx context.Context) error {
	gen := c.fetchGen.Add(1)

	c.setLoading(true)
	defer c.setLoading(false)

	notes, err := c.data.List(ctx)
	if err != nil {
		return fmt.Errorf("fetch notes: %w", err)
	}

	display := make([]model.DisplayNote, len(notes))
	var wg sync.WaitGroup
	for i, note := range notes {
		display[i] = model.DisplayNote{Note: note}
		if !note.HasImage() {
			continue
		}

		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			signedURL, err := c.storage.SignedURL(ctx, key)
			if err != nil {
				// Изолированный сбой: заметка остается без ссылки, остальные не страдают
				log.Printf("resolve image url for %s: %v", key, err)
				return
			}
			display[i].ImageURL = signedURL
		}(i, note.ImageKey)
	}
	// Барьер: список заменяется только после завершения всех разрешений
	wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Если за время работы стартовал более новый fetch, этот снимок устарел
	if c.fetchGen.Load() != gen {
		return nil
	}
	c.notes = display

	return nil
}

// CreateNote создает заметку: при наличии вложения сначала загружает файл в
// Storage Service под уникальным ключом, затем создает запись в Data Service
// со ссылкой на ключ, затем полностью пересинхронизирует список.
//
// Запись никогда не создается со ссылкой на незавершенную загрузку -
// загрузка и создание строго последовательны.
// Пустое (после trim) имя - молчаливый no-op без единого вызова сервисов.
func (c *Controller) CreateNote(ctx context.Context, input CreateInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		// Флаг creating на этом пути не трогается вовсе
		return nil
	}

	c.setCreating(true)
	defer c.setCreating(false)

	note := model.Note{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
	}

	if input.Image != nil {
		// Уникальный ключ: случайный идентификатор плюс оригинальное имя файла
		key := uuid.New().String() + "-" + input.Image.FileName
		if err := c.storage.Upload(ctx, key, input.Image.Data, input.Image.ContentType); err != nil {
			return fmt.Errorf("upload image: %w", err)
		}
		note.ImageKey = key
	}

	if _, err := c.data.Create(ctx, note); err != nil {
		return fmt.Errorf("create note: %w", err)
	}

	return c.FetchNotes(ctx)
}

// DeleteNote оптимистично убирает заметку из видимого списка, затем удаляет запись
// из Data Service и, при наличии вложения, объект из Storage Service.
//
// Оптимистичное удаление происходит до любых сетевых вызовов - список отражает
// удаление мгновенно. Сбой удаления записи не откатывается точечно: выполняется
// полная пересинхронизация со списком сервера, которая вернет заметку, если запись
// еще существует. Сбой удаления объекта из хранилища полностью проглатывается.
func (c *Controller) DeleteNote(ctx context.Context, note model.DisplayNote) error {
	// Оптимистичное удаление: фильтруем список по ID до любых сетевых вызовов
	c.mu.Lock()
	filtered := make([]model.DisplayNote, 0, len(c.notes))
	for _, existing := range c.notes {
		if existing.ID != note.ID {
			filtered = append(filtered, existing)
		}
	}
	c.notes = filtered
	c.mu.Unlock()

	if err := c.data.Delete(ctx, note.ID); err != nil {
		// Сверка с сервером: полная пересинхронизация вместо частичной повторной вставки,
		// чтобы исключить расхождение клиента с сервером. Сама ошибка удаления
		// пользователю как блокирующая не поднимается.
		log.Printf("delete note %s failed, resyncing list: %v", note.ID, err)
		if fetchErr := c.FetchNotes(ctx); fetchErr != nil {
			return fmt.Errorf("resync after failed delete: %w", fetchErr)
		}
		return nil
	}

	if note.HasImage() {
		// Best-effort очистка хранилища: сбой не влияет на исход операции
		if err := c.storage.Remove(ctx, note.ImageKey); err != nil {
			log.Printf("remove image %s: %v", note.ImageKey, err)
		}
	}

	return nil
}

// Notes возвращает снимок текущего списка заметок
func (c *Controller) Notes() []model.DisplayNote {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := make([]model.DisplayNote, len(c.notes))
	copy(snapshot, c.notes)

	return snapshot
}

// Loading сообщает, выполняется ли сейчас синхронизация списка
func (c *Controller) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Creating сообщает, выполняется ли сейчас создание заметки.
// Используется для блокировки повторной отправки формы.
func (c *Controller) Creating() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.creating
}

func (c *Controller) setLoading(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = v
}

func (c *Controller) setCreating(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creating = v
}
