// Package server exposes Blackjack sessions over WebSocket. Every connection
// gets its own table; there is no shared state between clients.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"golang.org/x/sync/errgroup"
)

// Config holds server settings
type Config struct {
	Addr        string
	Table       game.TableConfig
	Seed        int64 // Connection n plays with seed Seed+n; zero seeds from the clock
	IdleTimeout time.Duration
	Logger      *log.Logger
	Clock       quartz.Clock
}

// Server represents the WebSocket server
type Server struct {
	config      Config
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	logger      *log.Logger
	clock       quartz.Clock
	mu          sync.RWMutex
	seed        int64
	count       atomic.Int64
}

// NewServer creates a new WebSocket server
func NewServer(config Config) *Server {
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	if config.Clock == nil {
		config.Clock = quartz.NewReal()
	}

	return &Server{
		config: config,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		logger:      config.Logger.WithPrefix("server"),
		clock:       config.Clock,
		seed:        randutil.Seed(config.Seed, config.Clock),
	}
}

// Handler returns the HTTP routes served by the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Run serves until ctx is cancelled, then closes every connection
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting WebSocket server", "addr", s.config.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", s.config.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Shutting down server")
		s.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Stop closes all connections
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.connections {
		_ = conn.Close()
	}
}

// ConnectionCount returns the number of open connections
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	n := s.count.Add(1) - 1
	id := uuid.NewString()
	logger := s.config.Logger.With("conn", id)

	session, err := NewSession(randutil.New(s.seed+n), s.config.Table, s.clock, logger)
	if err != nil {
		s.logger.Error("Failed to create session", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(id, conn, session, s.clock, s.config.IdleTimeout, s.config.Logger)
	s.mu.Lock()
	s.connections[client] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "conn", id, "total", total)

	client.Start()

	go func() {
		<-client.Done()
		s.mu.Lock()
		delete(s.connections, client)
		total := len(s.connections)
		s.mu.Unlock()
		s.logger.Info("Client disconnected", "conn", id, "total", total)
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}
