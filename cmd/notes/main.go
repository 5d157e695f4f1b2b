package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"notes-app/internal/backend/rest"
	"notes-app/internal/config"
	"notes-app/internal/model"
	"notes-app/internal/service/notelist"
)

const defaultConfigFile = "config.yml"

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: notes <command> [options]

Commands:
  list                                    show all notes with resolved image URLs
  create -name NAME [-desc TEXT] [-image PATH]
                                          create a note with an optional image attachment
  delete ID                               delete a note by id
  refresh                                 re-sync the note list

Environment:
  NOTES_CONFIG    path to config file (default %s)
  NOTES_USERNAME  override client.username from config
  NOTES_PASSWORD  override client.password from config
`, defaultConfigFile)
	os.Exit(2)
}

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		usage()
	}
	command := os.Args[1]

	configFile := os.Getenv("NOTES_CONFIG")
	if configFile == "" {
		configFile = defaultConfigFile
	}

	appConfig, err := config.InitConfig[config.Config](configFile)
	if err != nil {
		log.Fatalf("Error initializing config: %v", err)
	}
	if appConfig.Client == nil || appConfig.Client.BaseURL == "" {
		log.Fatalf("Config is missing client section (base_url)")
	}

	username := appConfig.Client.Username
	if v := os.Getenv("NOTES_USERNAME"); v != "" {
		username = v
	}
	password := appConfig.Client.Password
	if v := os.Getenv("NOTES_PASSWORD"); v != "" {
		password = v
	}

	timeout := time.Duration(appConfig.Client.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Один SDK клиент на все сервисы: вход устанавливает токен для Data и Storage
	sdk := rest.NewClient(appConfig.Client.BaseURL, &http.Client{Timeout: timeout})
	authClient := rest.NewAuth(sdk)

	if _, err := authClient.SignIn(ctx, username, password); err != nil {
		log.Fatalf("Sign in failed: %v", err)
	}

	// Список показывается только при установленной сессии
	session, err := authClient.CurrentSession(ctx)
	if err != nil {
		log.Fatalf("No active session: %v", err)
	}
	fmt.Printf("Signed in as %s\n\n", session.Username)

	controller := notelist.New(rest.NewData(sdk), rest.NewStorage(sdk))

	// Одна автоматическая синхронизация при старте сессии
	if err := controller.Mount(ctx); err != nil {
		log.Fatalf("Initial sync failed: %v", err)
	}

	switch command {
	case "list":
		printNotes(controller.Notes())

	case "create":
		runCreate(ctx, controller, os.Args[2:])

	case "delete":
		runDelete(ctx, controller, os.Args[2:])

	case "refresh":
		if err := controller.FetchNotes(ctx); err != nil {
			log.Fatalf("Refresh failed: %v", err)
		}
		printNotes(controller.Notes())

	default:
		usage()
	}
}

// runCreate разбирает флаги создания, читает вложение и создает заметку
func runCreate(ctx context.Context, controller *notelist.Controller, args []string) {
	flags := flag.NewFlagSet("create", flag.ExitOnError)
	name := flags.String("name", "", "note name (required)")
	desc := flags.String("desc", "", "note description")
	imagePath := flags.String("image", "", "path to an image attachment")
	_ = flags.Parse(args)

	input := notelist.CreateInput{
		Name:        *name,
		Description: *desc,
	}

	if *imagePath != "" {
		data, err := os.ReadFile(*imagePath)
		if err != nil {
			log.Fatalf("Read image file: %v", err)
		}
		fileName := filepath.Base(*imagePath)
		input.Image = &notelist.ImageUpload{
			FileName:    fileName,
			ContentType: mime.TypeByExtension(filepath.Ext(fileName)),
			Data:        data,
		}
	}

	if err := controller.CreateNote(ctx, input); err != nil {
		log.Fatalf("Create failed: %v", err)
	}

	printNotes(controller.Notes())
}

// runDelete находит заметку по ID в текущем списке и удаляет ее
func runDelete(ctx context.Context, controller *notelist.Controller, args []string) {
	if len(args) < 1 {
		usage()
	}
	id := args[0]

	var target *model.DisplayNote
	for _, note := range controller.Notes() {
		if note.ID == id {
			found := note
			target = &found
			break
		}
	}
	if target == nil {
		log.Fatalf("Note %s is not in the current list", id)
	}

	if err := controller.DeleteNote(ctx, *target); err != nil {
		log.Fatalf("Delete failed: %v", err)
	}

	printNotes(controller.Notes())
}

// printNotes печатает снимок списка заметок
func printNotes(notes []model.DisplayNote) {
	if len(notes) == 0 {
		fmt.Println("No notes yet.")
		return
	}

	for _, note := range notes {
		fmt.Printf("- [%s] %s\n", note.ID, note.Name)
		if note.Description != "" {
			fmt.Printf("    %s\n", note.Description)
		}
		if note.ImageURL != "" {
			fmt.Printf("    image: %s\n", note.ImageURL)
		} else if note.HasImage() {
			fmt.Printf("    image: (url unavailable)\n")
		}
	}
	fmt.Printf("\n%d note(s)\n", len(notes))
}
