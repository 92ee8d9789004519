package sync

import (
	"bufio"
	"errors"
	"net"
	"sync"

	"loremaker/pkg/logger"
)

// Server accepts raw TCP clients that want the load feed without websockets.
type Server struct {
	Addr   string
	Hub    *Hub
	Logger *logger.Logger

	mu sync.Mutex
	ln net.Listener
}

func NewServer(addr string, hub *Hub, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{Addr: addr, Hub: hub, Logger: log.With("component", "tcp-sync")}
}

// Run blocks until Close is called or the listener fails. It returns nil
// after Close.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.Logger.Info("listening", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			continue
		}

		s.Hub.Add(conn)
		s.Logger.Debug("client connected", "remote", conn.RemoteAddr().String())

		go func(c net.Conn) {
			defer func() {
				s.Hub.Remove(c)
				s.Logger.Debug("client disconnected", "remote", c.RemoteAddr().String())
			}()

			// the feed is one-way; drain until the client hangs up
			sc := bufio.NewScanner(c)
			for sc.Scan() {
			}
		}(conn)
	}
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}
