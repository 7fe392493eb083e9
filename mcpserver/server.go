// Package mcpserver exposes the room statistics as MCP tools, so an
// agent can query the observed chat without scraping the dashboard.
// It is a thin read-only client of the reporting API.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StatsMCPServer provides MCP tools over the reporting API
type StatsMCPServer struct {
	server *mcp.Server
	apiURL string
	client *http.Client
}

var globalServer *StatsMCPServer

// NewServer creates a new stats MCP server pointed at the reporting
// API base URL, e.g. http://127.0.0.1:4438
func NewServer(apiURL string) *StatsMCPServer {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "roomscribe-stats",
		Version: "v1.0.0",
	}, nil)

	s := &StatsMCPServer{
		server: server,
		apiURL: apiURL,
		client: &http.Client{Timeout: 10 * time.Second},
	}
	globalServer = s
	s.registerTools()
	return s
}

// Run serves MCP over stdio until the context is cancelled
func (s *StatsMCPServer) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// registerTools registers all stats-related MCP tools
func (s *StatsMCPServer) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "room_stats",
		Description: "Get headline statistics for the observed chat room: total message count, top posters and recent hourly activity.",
	}, handleRoomStats)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "room_leaderboard",
		Description: "Get the full leaderboard of the observed chat room: every known user with message count and first/last seen times.",
	}, handleRoomLeaderboard)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "room_search_messages",
		Description: "Search stored chat messages by text, author and date range (YYYY-MM-DD).",
	}, handleRoomSearchMessages)
}

func (s *StatsMCPServer) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("reporting API unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reporting API returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// RoomStatsInput is empty - no input needed
type RoomStatsInput struct{}

// RoomStatsOutput mirrors the /api/stats response
type RoomStatsOutput struct {
	Stats json.RawMessage `json:"stats,omitempty"`
	Error string          `json:"error,omitempty"`
}

func handleRoomStats(ctx context.Context, req *mcp.CallToolRequest, input RoomStatsInput) (*mcp.CallToolResult, RoomStatsOutput, error) {
	var raw json.RawMessage
	if err := globalServer.getJSON(ctx, "/api/stats", &raw); err != nil {
		return nil, RoomStatsOutput{Error: err.Error()}, nil
	}
	return nil, RoomStatsOutput{Stats: raw}, nil
}

// RoomLeaderboardInput is empty - no input needed
type RoomLeaderboardInput struct{}

// RoomLeaderboardOutput mirrors the /api/full-leaderboard response
type RoomLeaderboardOutput struct {
	Users json.RawMessage `json:"users,omitempty"`
	Error string          `json:"error,omitempty"`
}

func handleRoomLeaderboard(ctx context.Context, req *mcp.CallToolRequest, input RoomLeaderboardInput) (*mcp.CallToolResult, RoomLeaderboardOutput, error) {
	var raw json.RawMessage
	if err := globalServer.getJSON(ctx, "/api/full-leaderboard", &raw); err != nil {
		return nil, RoomLeaderboardOutput{Error: err.Error()}, nil
	}
	return nil, RoomLeaderboardOutput{Users: raw}, nil
}

// RoomSearchMessagesInput holds the search filters
type RoomSearchMessagesInput struct {
	Text  string `json:"text,omitempty" jsonschema:"description=Substring to search for in message text"`
	User  string `json:"user,omitempty" jsonschema:"description=Substring to match against the author name"`
	Start string `json:"start,omitempty" jsonschema:"description=Earliest date to include (YYYY-MM-DD)"`
	End   string `json:"end,omitempty" jsonschema:"description=Latest date to include (YYYY-MM-DD)"`
}

// RoomSearchMessagesOutput mirrors the /api/messages response
type RoomSearchMessagesOutput struct {
	Messages json.RawMessage `json:"messages,omitempty"`
	Error    string          `json:"error,omitempty"`
}

func handleRoomSearchMessages(ctx context.Context, req *mcp.CallToolRequest, input RoomSearchMessagesInput) (*mcp.CallToolResult, RoomSearchMessagesOutput, error) {
	q := url.Values{}
	if input.Text != "" {
		q.Set("text", input.Text)
	}
	if input.User != "" {
		q.Set("user", input.User)
	}
	if input.Start != "" {
		q.Set("start", input.Start)
	}
	if input.End != "" {
		q.Set("end", input.End)
	}

	path := "/api/messages"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var raw json.RawMessage
	if err := globalServer.getJSON(ctx, path, &raw); err != nil {
		return nil, RoomSearchMessagesOutput{Error: err.Error()}, nil
	}
	return nil, RoomSearchMessagesOutput{Messages: raw}, nil
}
