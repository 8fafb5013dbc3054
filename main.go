package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"qtui/api"
	"qtui/config"
	"qtui/model"
	"qtui/storage"
	"qtui/ui"
)

const Version = "v0.1.0"

func main() {
	// Validate environment variables first
	if config.HasAnyEnvVar() && !config.HasAllEnvVars() {
		missingVar := config.GetMissingEnvVar()
		errorMsg := fmt.Sprintf("Missing environment variable: %s\n\n"+
			"When using environment variables, all 3 must be set:\n"+
			"  • QTUI_BACKEND_URL\n"+
			"  • QTUI_USER_ID\n"+
			"  • QTUI_TASK_ID\n\n"+
			"Set the missing variable(s) before launching qtui.",
			missingVar)

		runErrorModal("Configuration Error", errorMsg)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize debug logging after config is loaded
	config.InitDebugLog(cfg.DataDir())

	var client *api.Client
	if !cfg.Offline {
		client, err = api.NewClient(cfg.BackendURL, cfg.UserID, cfg.TaskID)
		if err != nil {
			runErrorModal("Configuration Error", fmt.Sprintf("Invalid backend URL:\n%v", err))
			os.Exit(1)
		}
	}

	historyCache, err := storage.NewHistoryCache(cfg.DataDir())
	if err != nil {
		fmt.Printf("Failed to initialize history cache: %v\n", err)
		os.Exit(1)
	}
	defer historyCache.Close()

	draftStore, err := storage.NewDraftStore(cfg.DataDir())
	if err != nil {
		fmt.Printf("Failed to initialize draft store: %v\n", err)
		os.Exit(1)
	}

	dataModel := model.NewModel(cfg, client, historyCache, draftStore, Version)

	p := tea.NewProgram(
		ui.NewAppView(dataModel),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runErrorModal(title, message string) {
	p := tea.NewProgram(
		ui.NewErrorModal(title, message),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}
