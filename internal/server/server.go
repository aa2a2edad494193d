package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/TuteMthCD/nightstand/internal/command"
	"github.com/TuteMthCD/nightstand/internal/logging"
	"github.com/TuteMthCD/nightstand/internal/pixelbus"
)

// Config holds the server configuration
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string
	// MaxPayload is the byte budget for one inbound color message.
	MaxPayload int
	// StripPixels is reported on /healthz.
	StripPixels int
}

// Server is the network intake side of the pixel pipeline. Its handlers
// validate client payloads and produce onto the command bus; it never
// touches the transmit peripheral.
type Server struct {
	config    *Config
	bus       *pixelbus.Bus
	validator *command.Validator
	http      *http.Server
	start     time.Time

	mu             sync.Mutex
	activeSessions map[string]net.Conn
	wg             sync.WaitGroup
}

// New creates a new Server producing onto bus.
func New(config *Config, bus *pixelbus.Bus) *Server {
	s := &Server{
		config:         config,
		bus:            bus,
		validator:      &command.Validator{MaxPayload: config.MaxPayload},
		start:          time.Now(),
		activeSessions: make(map[string]net.Conn),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/params", s.handleParams)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.http = &http.Server{
		Addr:              config.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start listens and blocks until a shutdown signal, a listener error, or a
// fatal error arriving on fatal (the drive loop's terminal error). The
// returned error is nil only for a signal-initiated shutdown.
func (s *Server) Start(fatal <-chan error) error {
	logging.Info("Starting Nightstand control server",
		zap.String("addr", s.config.Addr),
		zap.Int("max_payload", s.config.MaxPayload),
	)

	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", s.config.Addr, err)
	}

	logging.Info("Server listening for connections",
		zap.String("addr", listener.Addr().String()),
	)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.http.Serve(listener)
	}()

	select {
	case sig := <-sigChan:
		logging.Info("Shutdown signal received, stopping server...",
			zap.String("signal", sig.String()),
		)
		return s.Shutdown(context.Background())
	case err := <-fatal:
		logging.Error("Fatal error from drive loop", zap.Error(err))
		_ = s.Shutdown(context.Background())
		return err
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		logging.Error("Error shutting down HTTP server", zap.Error(err))
	}

	// Hijacked WebSocket sessions are not covered by http.Shutdown
	s.mu.Lock()
	for addr, conn := range s.activeSessions {
		logging.Info("Closing active session", zap.String("remote_addr", addr))
		_ = conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All sessions closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	}

	logging.Sync()
	return nil
}

// trackSession registers a hijacked connection for shutdown teardown.
func (s *Server) trackSession(remoteAddr string, conn net.Conn) {
	s.mu.Lock()
	s.activeSessions[remoteAddr] = conn
	s.mu.Unlock()
}

func (s *Server) untrackSession(remoteAddr string) {
	s.mu.Lock()
	delete(s.activeSessions, remoteAddr)
	s.mu.Unlock()
}

// ActiveSessions returns the number of live WebSocket sessions.
func (s *Server) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeSessions)
}
