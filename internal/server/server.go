// Package server implements the accept loop and orderly shutdown: each
// accepted connection is submitted onto an injected
// internal/workerpool.Pool rather than given its own goroutine, and
// the listening socket binds with SO_REUSEADDR so a close/restart in
// tests does not need to wait out the host OS's grace period.
package server

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/minum-go/minum/internal/connhandler"
	"github.com/minum-go/minum/internal/redirect"
	"github.com/minum-go/minum/internal/workerpool"
	"github.com/sirupsen/logrus"
)

// RawHandler is the injectable socket-level handler shape: the
// connection is handed over whole, and the handler is responsible for
// reading/writing it. Both connhandler.Handle and redirect.Handle are
// adapted to this shape; tests may supply their own.
type RawHandler func(conn net.Conn)

// gracePeriod bounds how long Close waits for in-flight handlers to
// finish draining before giving up and returning anyway.
const gracePeriod = 500 * time.Millisecond

// Server owns a listener, a worker pool, and the handler dispatched to
// each accepted connection.
type Server struct {
	listener net.Listener
	pool     *workerpool.Pool
	handler  RawHandler
	log      *logrus.Logger
	closed   atomic.Bool
	host     string
	port     int
}

// Start binds addr (host:port, or ":0" for an ephemeral port), starts
// poolSize workers, and launches the accept loop in the background.
func Start(addr string, handler RawHandler, poolSize int, log *logrus.Logger) (*Server, error) {
	lc := net.ListenConfig{Control: setReuseAddr}
	l, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return nil, err
	}

	host, portStr, err := net.SplitHostPort(l.Addr().String())
	if err != nil {
		_ = l.Close()
		return nil, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		_ = l.Close()
		return nil, err
	}

	s := &Server{
		listener: l,
		pool:     workerpool.New(poolSize, poolSize*4),
		handler:  handler,
		log:      log,
		host:     host,
		port:     port,
	}
	go s.acceptLoop()
	return s, nil
}

// HTTPHandler adapts a connhandler.Deps value into a RawHandler.
func HTTPHandler(deps connhandler.Deps) RawHandler {
	return func(conn net.Conn) { connhandler.Handle(conn, deps) }
}

// RedirectHandler adapts the HTTP→HTTPS responder into a RawHandler.
func RedirectHandler(cfg connhandler.Deps) RawHandler {
	return func(conn net.Conn) { redirect.Handle(conn, cfg.Config, cfg.Log) }
}

func (s *Server) Host() string { return s.host }
func (s *Server) Port() int    { return s.port }

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closed.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			if s.log != nil {
				s.log.WithError(err).Debug("accept failed, continuing")
			}
			continue
		}

		c := conn
		s.pool.Submit(func() {
			defer c.Close()
			s.handler(c)
		})
	}
}

// Close interrupts the accept loop, stops accepting new connections,
// and waits up to gracePeriod for in-flight handlers to finish before
// returning. Close is idempotent.
func (s *Server) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	err := s.listener.Close()

	done := make(chan struct{})
	go func() {
		s.pool.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(gracePeriod):
		if s.log != nil {
			s.log.Warn("server close: grace period elapsed with workers still draining")
		}
	}
	return err
}

// setReuseAddr sets SO_REUSEADDR on the listening socket before bind,
// so tests that close a server and immediately start another on the
// same port do not have to wait out the OS's TIME_WAIT grace period.
func setReuseAddr(_, _ string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
