// Command stats prints a quick summary of the message database.
package main

import (
	"context"
	"fmt"
	"log"

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

	ctx := context.Background()

	total, err := store.TotalVisibleCount(ctx)
	if err != nil {
		log.Fatalf("Failed to count messages: %v", err)
	}
	fmt.Printf("Total messages: %d\n\n", total)

	top, err := store.TopUsers(ctx, 10)
	if err != nil {
		log.Fatalf("Failed to load leaderboard: %v", err)
	}

	fmt.Println("Top posters:")
	for i, u := range top {
		marker := ""
		if !u.TrackingEnabled {
			marker = " (untracked)"
		}
		fmt.Printf("%2d. %-24s %6d%s\n", i+1, u.Author, u.MessageCount, marker)
	}
}
