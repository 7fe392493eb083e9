// Command dump-chat writes the full visible transcript to a dated
// text file in the current directory.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/roomscribe/roomscribe/internal/conf"
	"github.com/roomscribe/roomscribe/internal/data"
)

func main() {
	godotenv.Load()
	cfg := conf.LoadFromEnv()

	store, err := data.NewStore(cfg.Store.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	messages, err := store.AllVisibleMessages(context.Background())
	if err != nil {
		log.Fatalf("Failed to load messages: %v", err)
	}

	loc := cfg.Location()
	filename := fmt.Sprintf("chat-dump-%s.txt", time.Now().In(loc).Format("2006-01-02"))

	f, err := os.Create(filename)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", filename, err)
	}
	defer f.Close()

	for _, m := range messages {
		fmt.Fprintf(f, "[%s] %s: %s\n",
			m.Timestamp.In(loc).Format("2006-01-02 15:04:05"), m.Author, m.Text)
	}

	fmt.Printf("Wrote %d messages to %s\n", len(messages), filename)
}
