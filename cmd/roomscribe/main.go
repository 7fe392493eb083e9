package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/roomscribe/roomscribe/internal/api"
	"github.com/roomscribe/roomscribe/internal/biz/repo"
	"github.com/roomscribe/roomscribe/internal/biz/usecase"
	"github.com/roomscribe/roomscribe/internal/conf"
	"github.com/roomscribe/roomscribe/internal/data"
	"github.com/roomscribe/roomscribe/internal/infra/lark"
	"github.com/roomscribe/roomscribe/internal/infra/openai"
	"github.com/roomscribe/roomscribe/internal/service"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Open persistence
	stores, err := data.Open(cfg.Store.DBPath)
	if err != nil {
		log.Fatalf("Failed to open databases: %v", err)
	}
	defer stores.Close()
	fmt.Printf("[Roomscribe] Message DB: %s (%d events already processed)\n",
		cfg.Store.DBPath, stores.Ledger.Size())

	// Chat surface
	surface := lark.NewClient(cfg.Lark.AppID, cfg.Lark.AppSecret, cfg.Lark.ChatID)

	// Assistant session (optional)
	var assistant repo.Assistant
	if client := openai.NewClient(cfg.Assistant.APIKey, cfg.Assistant.BaseURL, cfg.Assistant.Model, cfg.Assistant.SystemPrompt); client != nil {
		assistant = client
		fmt.Println("[Roomscribe] Assistant session enabled")
	} else {
		fmt.Println("[Roomscribe] No assistant configured, questions will not be answered")
	}

	ctx := context.Background()

	// Question queue
	var queue *service.AskQueue
	if assistant != nil {
		queue = service.NewAskQueue(assistant, cfg.AskTimeout())
		queue.Start(ctx)
	}

	// Ingest pipeline and polling loop
	ingest := usecase.NewIngestUsecase(stores.Ledger, stores.Messages, cfg.Bot.Alias)
	poller := service.NewPoller(surface, ingest, queue, cfg.PollInterval())
	poller.Start(ctx)

	// Reporting API
	apiServer := api.NewServer(stores.Messages, cfg.Location(), cfg.Dashboard.Port)
	go func() {
		if err := apiServer.Start(); err != nil {
			fmt.Printf("[Roomscribe] API server error: %v\n", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down...")
	poller.Stop()
	if queue != nil {
		queue.Stop()
	}
	apiServer.Stop()
}
