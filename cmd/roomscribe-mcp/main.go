// Command roomscribe-mcp serves room statistics as MCP tools over
// stdio, backed by a running roomscribe reporting API.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/roomscribe/roomscribe/mcpserver"
)

func main() {
	apiURL := os.Getenv("ROOMSCRIBE_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:4438"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	server := mcpserver.NewServer(apiURL)
	if err := server.Run(ctx); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
