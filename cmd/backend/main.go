package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"notes-app/internal/config"
	"notes-app/internal/server"
)

const defaultConfigFile = "config.yml"

func main() {
	configFile := os.Getenv("NOTES_CONFIG")
	if configFile == "" {
		configFile = defaultConfigFile
	}

	// Загружаем конфигурацию из файла
	appConfig, err := config.InitConfig[config.Config](configFile)
	if err != nil {
		log.Fatalf("Error initializing config: %v", err)
	}
	if appConfig.Server == nil || appConfig.HTTP == nil {
		log.Fatalf("Config is missing server or http section")
	}

	log.Println("Starting notes backend emulator")

	srv, err := server.NewServer(appConfig)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if err := srv.Initialize(); err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	// Канал для graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	errChan := srv.Start()

	// Ожидание сигнала или ошибки
	select {
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	case sig := <-sigChan:
		log.Printf("Received signal: %v. Starting graceful shutdown...", sig)
	}

	if err := srv.Shutdown(); err != nil {
		log.Printf("Shutdown finished with error: %v", err)
	}

	log.Println("Notes backend emulator stopped")
}
