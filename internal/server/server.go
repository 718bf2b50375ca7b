// Package server exposes the engine over HTTP: the webhook entrypoint,
// the dashboard API, Prometheus metrics and a websocket log stream.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tradehook-lab/tradehook/internal/engine"
	"github.com/tradehook-lab/tradehook/internal/logger"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Server is the HTTP front of the signal engine.
type Server struct {
	engine     *engine.Service
	log        *logger.Logger
	httpServer *http.Server
	listener   net.Listener
}

// New creates a server around an engine service.
func New(service *engine.Service, log *logger.Logger) *Server {
	return &Server{
		engine: service,
		log:    log,
	}
}

// Start binds the listener and begins serving in the background. An empty
// address picks a free port, which tests rely on.
func (s *Server) Start(address string) error {
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.listener = listener

	s.httpServer = &http.Server{
		Handler:           s.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			s.log.Error("http server error", zap.Error(err))
		}
	}()

	s.log.Info("server listening", zap.String("address", s.Address()))

	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// Address returns the bound listener address.
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// BaseURL returns the http base URL of the running server.
func (s *Server) BaseURL() string {
	return "http://" + s.Address()
}

func (s *Server) router() *mux.Router {
	router := mux.NewRouter()

	// Webhook entrypoint. Signal providers post here; GET is accepted for
	// manual testing from a browser.
	router.HandleFunc("/hook/{user}/{strategy}/{signal:.*}", s.handleSignal).Methods("POST", "GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/users", s.handleListUsers).Methods("GET")
	api.HandleFunc("/users/{user}/strategies", s.handleListStrategies).Methods("GET")
	api.HandleFunc("/users/{user}/strategies", s.handleCreateStrategy).Methods("POST")
	api.HandleFunc("/users/{user}/strategies/{strategy}", s.handleGetStrategy).Methods("GET")
	api.HandleFunc("/users/{user}/strategies/{strategy}", s.handleDeleteStrategy).Methods("DELETE")
	api.HandleFunc("/users/{user}/strategies/{strategy}/force/{direction}", s.handleForce).Methods("POST")
	api.HandleFunc("/users/{user}/strategies/{strategy}/cooldown/start", s.handleStartCooldown).Methods("POST")
	api.HandleFunc("/users/{user}/strategies/{strategy}/cooldown/stop", s.handleStopCooldown).Methods("POST")
	api.HandleFunc("/users/{user}/strategies/{strategy}/balance", s.handleSetBalance).Methods("PUT")
	api.HandleFunc("/users/{user}/strategies/{strategy}/logs", s.handleLogs).Methods("GET")
	api.HandleFunc("/users/{user}/strategies/{strategy}/logs/stream", s.handleLogStream).Methods("GET")
	api.HandleFunc("/providers", s.handleListProviders).Methods("GET")
	api.HandleFunc("/providers/{provider}/schema", s.handleProviderSchema).Methods("GET")

	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return router
}
