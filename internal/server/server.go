package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	apihttp "notes-app/internal/api/http"
	"notes-app/internal/api/http/middleware"
	"notes-app/internal/backend/memory"
	"notes-app/internal/config"

	"github.com/rs/cors"
)

// Server представляет HTTP сервер эмулятора управляемого бэкенда
type Server struct {
	Mux      *http.ServeMux
	HTTPAddr string
	Config   *config.Config

	httpServer *http.Server

	// Сервисы эмулятора, доступны после Initialize
	Data    *memory.Data
	Storage *memory.Storage
	Auth    *memory.Auth
}

// NewServer создает и инициализирует новый экземпляр сервера
func NewServer(cfg *config.Config) (*Server, error) {
	httpPort := cfg.Server.PortHTTP
	if httpPort == 0 {
		httpPort = 8080
		log.Printf("Warning: PortHTTP is 0, using default 8080")
	}

	httpAddr := "0.0.0.0:" + strconv.Itoa(httpPort)
	log.Printf("Config loaded: HTTP port=%d", httpPort)

	return &Server{
		Mux:      http.NewServeMux(),
		HTTPAddr: httpAddr,
		Config:   cfg,
	}, nil
}

// Initialize инициализирует компоненты сервера (Services → Handler → Middleware)
func (s *Server) Initialize() error {
	publicURL := s.Config.Server.PublicURL
	if publicURL == "" {
		publicURL = "http://localhost:" + strconv.Itoa(s.Config.Server.PortHTTP)
	}

	if s.Config.Storage == nil || s.Config.Storage.SigningSecret == "" {
		return fmt.Errorf("storage signing secret is not configured")
	}
	ttl := time.Duration(s.Config.Storage.SignedURLTTLSecs) * time.Second

	// Инициализация сервисов эмулятора
	s.Data = memory.NewData()
	log.Println("Initialized in-memory data service (map-based)")

	s.Storage = memory.NewStorage(publicURL, s.Config.Storage.SigningSecret, ttl)
	log.Println("Initialized in-memory storage service with signed URLs")

	s.Auth = memory.NewAuth()
	if s.Config.Auth != nil {
		for _, u := range s.Config.Auth.Users {
			if err := s.Auth.AddUser(u.Username, u.Password); err != nil {
				return fmt.Errorf("register user %q: %w", u.Username, err)
			}
		}
		log.Printf("Initialized auth service with %d user(s)", len(s.Config.Auth.Users))
	}

	// Регистрация API хэндлеров
	handler := apihttp.NewHandler(s.Data, s.Storage, s.Auth)
	handler.Register(s.Mux)
	log.Println("Registered backend API routes")

	// Применение middleware (в обратном порядке выполнения):
	// CORS → Logging → Rate Limiting → mux
	var chained http.Handler = s.Mux
	chained = middleware.RateLimit(chained, s.Config.HTTP.RateLimitRPS, s.Config.HTTP.RateLimitBurst)
	chained = middleware.Logging(chained)
	chained = setupCORS(s.Config.HTTP).Handler(chained)

	s.httpServer = &http.Server{
		Addr:              s.HTTPAddr,
		Handler:           chained,
		ReadTimeout:       time.Duration(s.Config.Server.HTTPReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(s.Config.Server.HTTPWriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(s.Config.Server.HTTPIdleTimeout) * time.Second,
		ReadHeaderTimeout: time.Duration(s.Config.Server.HTTPReadHeaderTimeout) * time.Second,
	}

	return nil
}

// Start запускает HTTP сервер в горутине.
// Возвращает канал ошибок для отслеживания ошибок сервера.
func (s *Server) Start() <-chan error {
	errChan := make(chan error, 1)

	go func() {
		log.Printf("HTTP server listening on %s", s.HTTPAddr)
		log.Printf("CORS enabled for origins: %s", s.Config.HTTP.CORSAllowedOrigins)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	return errChan
}

// Shutdown выполняет graceful shutdown сервера
func (s *Server) Shutdown() error {
	log.Println("Starting graceful shutdown...")

	shutdownTimeout := time.Duration(s.Config.Server.GracefulShutdownTimeout) * time.Second
	if shutdownTimeout == 0 {
		shutdownTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Println("Graceful shutdown timeout, forcing close...")
		_ = s.httpServer.Close()
		return err
	}

	log.Println("HTTP server stopped gracefully")
	return nil
}

// setupCORS настраивает CORS middleware используя конфигурацию
func setupCORS(cfg *config.ConfigHTTP) *cors.Cors {
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	// Убираем пробелы из origins
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	maxAge := cfg.CORSMaxAge
	if maxAge == 0 {
		maxAge = 86400 // 24 часа по умолчанию
	}

	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Content-Type",
			"Authorization",
			"X-Requested-With",
		},
		AllowCredentials: true,
		MaxAge:           maxAge,
	})
}
