package httpapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/curetrace/engine/applications/runner"
)

// Service exposes the HTTP API as a runnable component: bind an address,
// serve POST /v1/runs, shut down on request.
type Service struct {
	addr    string
	server  *http.Server
	handler http.Handler

	mu      sync.Mutex
	running bool
	bound   string
}

// NewService constructs an httpapi.Service bound to addr, backed by r.
func NewService(addr string, r *runner.Runner) *Service {
	h := &handler{runner: r}
	mux := http.NewServeMux()
	mountRoutes(mux,
		route{pattern: "/v1/runs", method: http.MethodPost, handler: h.postRun},
	)
	return &Service{addr: addr, handler: mux}
}

// Start binds the listener and serves in the background.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.running = true
	s.server = server
	s.bound = ln.Addr().String()
	s.mu.Unlock()

	go func() {
		_ = server.Serve(ln)
		s.mu.Lock()
		if s.server == server {
			s.running = false
			s.bound = ""
		}
		s.mu.Unlock()
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.mu.Unlock()
	if server == nil {
		return nil
	}
	err := server.Shutdown(ctx)
	s.mu.Lock()
	if s.server == server {
		s.running = false
		s.bound = ""
	}
	s.mu.Unlock()
	return err
}

// Addr returns the address the server is actually bound to, once started.
func (s *Service) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bound
}
