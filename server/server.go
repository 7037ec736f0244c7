// Package server runs the benchmark's local HTTP server: the measurement endpoints, the
// keep-alive streams that hold the process open, and the static test pages.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/latency-benchmark/latency-server/session"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"golang.org/x/net/netutil"
)

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 5578

	// DefaultMaxConnections bounds how many connections are served at once. Every open
	// benchmark page holds one connection for its keep-alive stream.
	DefaultMaxConnections = 32

	shutdownTimeout = time.Second * 5

	// idleTimeout frees the connection slot of a client that keeps an idle connection open.
	idleTimeout = time.Second * 30
)

// Server owns the listener and the control loop that decides when the process should exit.
type Server struct {
	httpServer     *http.Server
	listener       net.Listener
	gate           *session.Gate
	maxConnections int
	serveErr       chan error
	baseCtx        context.Context
	cancelBase     context.CancelFunc
	loggers        ldlog.Loggers
}

// New creates a Server that will listen on addr. Nothing happens until Start is called.
func New(addr string, maxConnections int, handler http.Handler, gate *session.Gate, loggers ldlog.Loggers) *Server {
	if maxConnections <= 0 {
		maxConnections = DefaultMaxConnections
	}
	baseCtx, cancelBase := context.WithCancel(context.Background())
	s := &Server{
		gate:           gate,
		maxConnections: maxConnections,
		serveErr:       make(chan error, 1),
		baseCtx:        baseCtx,
		cancelBase:     cancelBase,
		loggers:        loggers,
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // arbitrary but non-infinite timeout to avoid Slowloris Attack
		IdleTimeout:       idleTimeout,
		BaseContext:       func(net.Listener) context.Context { return s.baseCtx },
	}
	return s
}

// Start binds the listener and begins serving in the background. An error here means the
// server cannot run at all.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to start server on %s: %w", s.httpServer.Addr, err)
	}
	s.listener = ln
	limited := netutil.LimitListener(ln, s.maxConnections)
	go func() {
		if err := s.httpServer.Serve(limited); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.serveErr <- err
		}
	}()
	s.loggers.Infof("Listening on %s", ln.Addr())
	return nil
}

// Addr returns the address the server is listening on. It is only valid after Start.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// URL returns the base URL of the server, such as "http://127.0.0.1:5578".
func (s *Server) URL() string {
	return "http://" + s.Addr().String()
}

// Run waits until a benchmark page has opened a keep-alive session and then until every
// session has closed, and then shuts the server down. It also stops early, with a nil error,
// if the context is cancelled, or with an error if the listener fails.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	go func() {
		select {
		case err := <-s.serveErr:
			cancel(fmt.Errorf("server stopped unexpectedly: %w", err))
		case <-ctx.Done():
		}
	}()

	err := s.gate.AwaitActive(ctx)
	if err == nil {
		s.loggers.Info("Benchmark page connected; the server will exit once all benchmark pages are closed")
		err = s.gate.AwaitIdle(ctx)
	}
	if err == nil {
		s.loggers.Info("All benchmark pages closed")
	}

	shutdownErr := s.Shutdown()
	if err != nil {
		if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) &&
			!errors.Is(cause, context.DeadlineExceeded) {
			return cause
		}
		s.loggers.Info("Interrupted")
	}
	return shutdownErr
}

// Shutdown ends any open keep-alive streams and stops the listener, waiting a bounded time for
// in-flight requests to finish.
func (s *Server) Shutdown() error {
	s.loggers.Info("Stopping server")
	s.cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop server cleanly: %w", err)
	}
	return nil
}
