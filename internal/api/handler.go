package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/roomscribe/roomscribe/internal/biz/domain"
	"github.com/roomscribe/roomscribe/internal/biz/repo"
)

// Server exposes the read-only reporting API over the message store.
// It never writes; the poller is the only writer.
type Server struct {
	store repo.MessageStore
	loc   *time.Location

	server *http.Server
	port   int
}

// NewServer creates the reporting server. loc controls how hourly
// buckets are labelled; nil means UTC.
func NewServer(store repo.MessageStore, loc *time.Location, port int) *Server {
	if loc == nil {
		loc = time.UTC
	}
	return &Server{
		store: store,
		loc:   loc,
		port:  port,
	}
}

// Start starts the HTTP server. It blocks until shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.router(),
	}

	fmt.Printf("[API] Starting HTTP server on port %d\n", s.port)
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop stops the HTTP server
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Shutdown(context.Background())
	}
	return nil
}

type statsResponse struct {
	TotalMessages  int64            `json:"totalMessages"`
	TopUsers       []userEntry      `json:"topUsers"`
	HourlyActivity []hourlyActivity `json:"hourlyActivity"`
}

type userEntry struct {
	Username     string `json:"username"`
	MessageCount int64  `json:"message_count"`
	FirstSeen    string `json:"first_seen,omitempty"`
	LastSeen     string `json:"last_seen,omitempty"`
}

type hourlyActivity struct {
	Hour  string `json:"hour"`
	Count int64  `json:"count"`
}

type messageEntry struct {
	ID        int64  `json:"id"`
	Author    string `json:"author"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type dailyEntry struct {
	Date       string `json:"date"`
	Count      int64  `json:"daily_count"`
	Cumulative int64  `json:"cumulative_count"`
}

// handleStats serves the dashboard headline: total count, top 20
// posters and the last 24 hours of activity.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	total, err := s.store.TotalVisibleCount(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}

	top, err := s.store.TopUsers(ctx, 20)
	if err != nil {
		s.writeError(w, err)
		return
	}

	hours, err := s.store.HourlyStats(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := statsResponse{
		TotalMessages:  total,
		TopUsers:       make([]userEntry, 0, len(top)),
		HourlyActivity: make([]hourlyActivity, 0, len(hours)),
	}
	for _, u := range top {
		resp.TopUsers = append(resp.TopUsers, userEntry{
			Username:     u.Author,
			MessageCount: u.MessageCount,
		})
	}
	for _, h := range hours {
		resp.HourlyActivity = append(resp.HourlyActivity, hourlyActivity{
			Hour:  h.Hour.In(s.loc).Format("2006-01-02 15:00"),
			Count: h.Count,
		})
	}
	s.writeJSON(w, resp)
}

// handleMessages serves filtered message search.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.MessageFilter{
		Text:   q.Get("text"),
		Author: q.Get("user"),
	}
	if v := q.Get("start"); v != "" {
		if t, err := time.ParseInLocation("2006-01-02", v, s.loc); err == nil {
			filter.Start = t
		}
	}
	if v := q.Get("end"); v != "" {
		if t, err := time.ParseInLocation("2006-01-02", v, s.loc); err == nil {
			// Inclusive end of day.
			filter.End = t.Add(24*time.Hour - time.Second)
		}
	}

	messages, err := s.store.SearchMessages(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result := make([]messageEntry, 0, len(messages))
	for _, m := range messages {
		result = append(result, messageEntry{
			ID:        m.ID,
			Author:    m.Author,
			Message:   m.Text,
			Timestamp: m.Timestamp.In(s.loc).Format("2006-01-02 15:04:05"),
		})
	}
	s.writeJSON(w, result)
}

// handleOverallStats serves per-day counts with a running total.
func (s *Server) handleOverallStats(w http.ResponseWriter, r *http.Request) {
	days, err := s.store.DailyStats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	result := make([]dailyEntry, 0, len(days))
	for _, d := range days {
		result = append(result, dailyEntry{
			Date:       d.Date,
			Count:      d.Count,
			Cumulative: d.Cumulative,
		})
	}
	s.writeJSON(w, result)
}

// handleFullLeaderboard serves every known user ordered by count.
func (s *Server) handleFullLeaderboard(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.TopUsers(r.Context(), 10000)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result := make([]userEntry, 0, len(users))
	for _, u := range users {
		result = append(result, userEntry{
			Username:     u.Author,
			MessageCount: u.MessageCount,
			FirstSeen:    u.FirstSeen.In(s.loc).Format("2006-01-02 15:04:05"),
			LastSeen:     u.LastSeen.In(s.loc).Format("2006-01-02 15:04:05"),
		})
	}
	s.writeJSON(w, result)
}

// handleUntracked serves the opt-out list.
func (s *Server) handleUntracked(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.UntrackedUsers(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if users == nil {
		users = []string{}
	}
	s.writeJSON(w, users)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

// writeError hides the failure detail from clients; the cause goes to
// the log instead.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	fmt.Fprintf(os.Stderr, "[API] Request failed: %v\n", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
}
