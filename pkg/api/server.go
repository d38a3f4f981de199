package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cbodonnell/racetrack/pkg/api/handlers"
	"github.com/cbodonnell/racetrack/pkg/api/middleware"
	"github.com/cbodonnell/racetrack/pkg/log"
	"github.com/gorilla/mux"
)

const shutdownTimeout = 5 * time.Second

// APIServer serves a read-only view of the game and the score ledger.
type APIServer struct {
	server *http.Server
}

type NewAPIServerOptions struct {
	Port   int
	State  handlers.StateSource
	Scores handlers.ScoreSource
}

// NewAPIServer creates a new http.Server for the status API
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	return &APIServer{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           NewRouter(opts.State, opts.Scores),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func NewRouter(state handlers.StateSource, scores handlers.ScoreSource) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger, middleware.CORS)
	r.HandleFunc("/state", handlers.HandleGetState(state)).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/scores", handlers.HandleListScores(scores)).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/scores/{player:[0-9]+}", handlers.HandleGetScore(scores)).Methods(http.MethodGet, http.MethodOptions)
	return r
}

// Start serves until ctx is done, then shuts the server down.
func (s *APIServer) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %v", s.server.Addr, err)
	}
	return s.Serve(ctx, listener)
}

func (s *APIServer) Serve(ctx context.Context, listener net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("API server listening on %s", listener.Addr())
		errCh <- s.server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("API server error: %v", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down API server: %v", err)
	}
	log.Info("API server closed")
	return nil
}
