// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/courtline/courtline/internal/api"
	apileagues "github.com/courtline/courtline/internal/api/leagues"
	"github.com/courtline/courtline/internal/api/players"
	"github.com/courtline/courtline/internal/api/sessions"
	"github.com/courtline/courtline/internal/config"
)

func newServer(cfg *config.Config) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	registerRoutes(router)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Player routes
	mux.HandleFunc("/api/v1/players", players.HandlePlayers)

	// Session routes
	mux.HandleFunc("/api/v1/sessions", sessions.HandleSessions)
	mux.HandleFunc("/api/v1/sessions/schedule", sessions.HandleSchedule)
	mux.HandleFunc("/api/v1/sessions/rounds/next", sessions.HandleNextRound)
	mux.HandleFunc("/api/v1/sessions/rounds", sessions.HandleRound)
	mux.HandleFunc("/api/v1/sessions/results", sessions.HandleResult)
	mux.HandleFunc("/api/v1/sessions/reset", sessions.HandleReset)
	mux.HandleFunc("/api/v1/sessions/complete", sessions.HandleComplete)

	// League routes
	mux.HandleFunc("/api/v1/leagues/plan", apileagues.HandlePlan)
	mux.HandleFunc("/api/v1/leagues/standings", apileagues.HandleStandings)
}
