package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/netutil"

	"github.com/Brownie44l1/staticd/internal/buffer"
	"github.com/Brownie44l1/staticd/internal/config"
	"github.com/Brownie44l1/staticd/internal/request"
	"github.com/Brownie44l1/staticd/internal/response"
)

var ErrServerClosed = errors.New("server closed")

const maxAcceptDelay = time.Second

type Server struct {
	Logger  Logger
	Metrics *Metrics

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// MaxConns caps connections handled at once; 0 means unbounded
	MaxConns int

	parser    request.LineParser
	builder   *response.Builder
	requests  *buffer.Pool
	responses *buffer.Pool

	mu       sync.Mutex
	listener net.Listener
	closed   atomic.Bool
	conns    sync.WaitGroup
}

// New builds a server from cfg. A nil logger discards everything.
func New(cfg *config.Config, logger Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = &NullLogger{}
	}

	parser, err := request.NewLineParser(cfg.Parser)
	if err != nil {
		return nil, err
	}

	fs, err := response.NewFileSystem(cfg.Contain)
	if err != nil {
		return nil, fmt.Errorf("open served directory: %w", err)
	}

	return &Server{
		Logger:       logger,
		Metrics:      NewMetrics(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaxConns:     cfg.MaxConns,
		parser:       parser,
		builder: &response.Builder{
			FS:              fs,
			CaseInsensitive: cfg.CaseInsensitive,
		},
		requests:  buffer.NewPool(cfg.RequestBufferSize),
		responses: buffer.NewPool(cfg.ResponseBufferSize),
	}, nil
}

// SetFileSystem replaces the filesystem files are served from
func (s *Server) SetFileSystem(fs response.FileSystem) {
	s.builder.FS = fs
}

// Listen binds a TCP socket on addr with SO_REUSEADDR set before bind
func (s *Server) Listen(ctx context.Context, addr string) (net.Listener, error) {
	lc := net.ListenConfig{Control: reuseAddr}

	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		s.Logger.Error("failed to bind server socket", Field{"addr", addr}, Field{"error", err})
		return nil, err
	}

	s.Logger.Info("server socket bound", Field{"addr", ln.Addr().String()})
	return ln, nil
}

// Serve accepts connections on ln and hands each one to its own
// goroutine. It returns once the server or ln is closed; other accept
// errors are logged and accepting continues.
func (s *Server) Serve(ln net.Listener) error {
	if s.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.MaxConns)
	}

	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.listener = ln
	s.mu.Unlock()

	s.Logger.Info("server socket listening",
		Field{"addr", ln.Addr().String()},
		Field{"max_conns", s.MaxConns},
	)

	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.closed.Load() {
				return ErrServerClosed
			}
			if errors.Is(err, net.ErrClosed) {
				s.Logger.Error("server socket closed", Field{"error", err})
				return err
			}

			if delay == 0 {
				delay = 5 * time.Millisecond
			} else {
				delay = min(2*delay, maxAcceptDelay)
			}
			s.Logger.Error("error accepting connection", Field{"error", err}, Field{"retry_in", delay})
			time.Sleep(delay)
			continue
		}
		delay = 0

		// Add under mu; Close sets closed under the same lock
		s.mu.Lock()
		if s.closed.Load() {
			s.mu.Unlock()
			conn.Close()
			return ErrServerClosed
		}
		s.conns.Add(1)
		s.mu.Unlock()

		s.Metrics.ConnectionsTotal.Add(1)
		// The handler owns conn from here on
		go func() {
			defer s.conns.Done()
			s.ServeConn(conn)
		}()
	}
}

// Addr returns the address being served, or nil before Serve
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close stops accepting. Connections already being handled run to
// completion on their own.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed.Store(true)
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

// Shutdown closes the listener and waits for in-flight connections
// until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}

	done := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns a snapshot of the server metrics
func (s *Server) Stats() MetricsSnapshot {
	return s.Metrics.Snapshot()
}
