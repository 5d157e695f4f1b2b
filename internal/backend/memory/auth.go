package memory

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"notes-app/internal/backend"
	"notes-app/internal/model"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
)

const (
	argonMemory     = 64 * 1024
	argonIterations = 3
	argonThreads    = 1
	argonSaltLength = 16
	argonKeyLength  = 32

	tokenLength = 32
)

var _ backend.AuthService = (*Auth)(nil)

// user хранит учетные данные одного пользователя эмулятора
type user struct {
	id           string
	passwordHash string
}

// Auth реализует AuthService в памяти: таблица пользователей с argon2id хэшами паролей
// и активные сессии по bearer токенам. SignIn запоминает последнюю сессию как текущую,
// так что в процессе-клиенте CurrentSession отражает выполненный вход.
type Auth struct {
	mu       sync.RWMutex
	users    map[string]user          // username -> учетные данные
	sessions map[string]model.Session // token -> сессия
	current  model.Session
	signedIn bool
}

// NewAuth создает новый экземпляр in-memory Auth Service
func NewAuth() *Auth {
	return &Auth{
		users:    make(map[string]user),
		sessions: make(map[string]model.Session),
	}
}

// AddUser регистрирует пользователя с указанным паролем (пароль хэшируется argon2id)
func (a *Auth) AddUser(username, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password for %q: %w", username, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.users[username] = user{id: uuid.New().String(), passwordHash: hash}

	return nil
}

// SignIn проверяет учетные данные и открывает новую сессию с bearer токеном
func (a *Auth) SignIn(ctx context.Context, username, password string) (model.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	u, exists := a.users[username]
	if !exists {
		return model.Session{}, backend.ErrUnauthenticated
	}
	if !verifyPassword(password, u.passwordHash) {
		return model.Session{}, backend.ErrUnauthenticated
	}

	token, err := newToken()
	if err != nil {
		return model.Session{}, fmt.Errorf("generate session token: %w", err)
	}

	session := model.Session{
		UserID:   u.id,
		Username: username,
		Token:    token,
	}
	a.sessions[token] = session
	a.current = session
	a.signedIn = true

	return session, nil
}

// SignOut закрывает сессию по токену
func (a *Auth) SignOut(ctx context.Context, token string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.sessions, token)
	if a.current.Token == token {
		a.current = model.Session{}
		a.signedIn = false
	}
}

// CurrentSession возвращает последнюю открытую сессию
// или ErrUnauthenticated, если вход не выполнялся
func (a *Auth) CurrentSession(ctx context.Context) (model.Session, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.signedIn {
		return model.Session{}, backend.ErrUnauthenticated
	}

	return a.current, nil
}

// SessionByToken возвращает сессию по bearer токену.
// Используется HTTP-слоем эмулятора для проверки авторизации запросов.
func (a *Auth) SessionByToken(token string) (model.Session, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	session, exists := a.sessions[token]
	if !exists {
		return model.Session{}, backend.ErrUnauthenticated
	}

	return session, nil
}

// HashPassword хэширует пароль в формате PHC ($argon2id$...)
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	salt := make([]byte, argonSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	sum := argon2.IDKey([]byte(password), salt, argonIterations, argonMemory, argonThreads, argonKeyLength)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		argonMemory,
		argonIterations,
		argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// verifyPassword сверяет пароль с PHC хэшем в константное время
func verifyPassword(password, phc string) bool {
	parts := strings.Split(phc, "$")
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != "v=19" {
		return false
	}

	var m uint32
	var t uint32
	var p uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	sum, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	candidate := argon2.IDKey([]byte(password), salt, t, m, p, uint32(len(sum)))
	return subtle.ConstantTimeCompare(candidate, sum) == 1
}

// newToken генерирует случайный bearer токен сессии
func newToken() (string, error) {
	raw := make([]byte, tokenLength)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
