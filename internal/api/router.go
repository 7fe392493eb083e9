package api

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Get("/messages", s.handleMessages)
		r.Get("/overall-stats", s.handleOverallStats)
		r.Get("/full-leaderboard", s.handleFullLeaderboard)
		r.Get("/untracked", s.handleUntracked)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Serve the dashboard frontend when a public directory is present.
	if info, err := os.Stat("public"); err == nil && info.IsDir() {
		r.Handle("/*", http.FileServer(http.Dir("public")))
	}

	return r
}
