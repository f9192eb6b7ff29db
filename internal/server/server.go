package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"campuswatch/internal/config"
	"campuswatch/internal/engine"
)

// Server exposes the engine's query surface over REST and its event feed
// over WebSocket.
type Server struct {
	engine *engine.Engine
	cfg    config.ServerConfig
	logger zerolog.Logger
}

// New constructs the HTTP server.
func New(eng *engine.Engine, cfg config.ServerConfig, logger zerolog.Logger) *Server {
	return &Server{
		engine: eng,
		cfg:    cfg,
		logger: logger.With().Str("component", "server").Logger(),
	}
}

// Router assembles the route table with CORS applied.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/energy/{building}/recent", s.handleRecentEnergy).Methods(http.MethodGet)
	r.HandleFunc("/api/occupancy/{room}/recent", s.handleRecentOccupancy).Methods(http.MethodGet)
	r.HandleFunc("/api/alerts/recent", s.handleRecentAlerts).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleFeed)
	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(r)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return <-errCh
}

func (s *Server) handleRecentEnergy(w http.ResponseWriter, r *http.Request) {
	building := mux.Vars(r)["building"]
	writeJSON(w, s.engine.RecentEnergy(building))
}

func (s *Server) handleRecentOccupancy(w http.ResponseWriter, r *http.Request) {
	room := mux.Vars(r)["room"]
	writeJSON(w, s.engine.RecentOccupancy(room))
}

func (s *Server) handleRecentAlerts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	writeJSON(w, s.engine.RecentAlerts(limit))
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "campuswatch backend running. Connect via /ws for the live feed.")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
