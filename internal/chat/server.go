package chat

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wtask/linechat/pkg/background"
)

const (
	defaultMaxClients  = 10
	defaultMaxLineSize = 64 * 1024
	rejectWriteTimeout = time.Second
)

// DefaultRejectNotice - line sent to a connection denied admission.
const DefaultRejectNotice = "Server full.\n"

// Server - line relay over any number of net.Listener and other Conn sources.
type Server struct {
	registry *Registry
	scope    *background.Scope
	logger   Logger

	maxClients   int
	maxLineSize  int
	writeTimeout time.Duration
	rejectNotice []byte
	presence     bool
	resolveHost  HostResolver
	rateLimit    rate.Limit
	rateBurst    int

	mu        sync.Mutex
	listeners map[net.Listener]struct{}
}

// NewServer - creates new chat server which is ready to serve several network listeners.
func NewServer(options ...Option) (*Server, error) {
	s := &Server{
		maxClients:   defaultMaxClients,
		maxLineSize:  defaultMaxLineSize,
		rejectNotice: []byte(DefaultRejectNotice),
		listeners:    make(map[net.Listener]struct{}),
	}
	for _, option := range options {
		if option == nil {
			continue
		}
		if err := option(s); err != nil {
			return nil, err
		}
	}
	s.registry = NewRegistry(s.maxClients)
	s.scope = background.NewScope(context.Background())
	return s, nil
}

// Len - returns number of admitted connections.
func (s *Server) Len() int {
	return s.registry.Len()
}

// Cap - returns max number of admitted connections.
func (s *Server) Cap() int {
	return s.registry.Cap()
}

// Serve - accepts connections from the listener until it is closed.
// A failed Accept is logged and retried with backoff.
// Returns ErrServerClosed after Shutdown.
func (s *Server) Serve(listener net.Listener) error {
	if !s.trackListener(listener) {
		listener.Close()
		return ErrServerClosed
	}
	defer s.untrackListener(listener)

	var backoff time.Duration
	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.closed() {
				return ErrServerClosed
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else {
				backoff *= 2
			}
			if backoff > time.Second {
				backoff = time.Second
			}
			logError(s.logger, "accept failed", "listener", formatAddress(listener.Addr()), "err", err, "retry", backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		// relay runs in background, only the reject notice is written here,
		// bounded by rejectWriteTimeout
		_ = s.KeepConnection(conn)
	}
}

// KeepConnection - admits connection and starts to relay its lines in background.
// Connection denied admission gets reject notice and is closed, ErrServerFull is returned then.
func (s *Server) KeepConnection(conn Conn) error {
	if s.closed() {
		conn.Close()
		return ErrServerClosed
	}

	peer := newPeer(NewIdentity(), conn, s.writeTimeout)
	if !s.registry.TryAdmit(peer) {
		logInfo(s.logger, "reject", "addr", peer.addr, "clients", s.registry.Len(), "max", s.registry.Cap())
		s.reject(conn)
		return ErrServerFull
	}

	started := s.scope.Go(func(ctx context.Context) {
		s.relay(ctx, peer, conn)
	})
	if !started {
		// Shutdown has come between admission and start
		s.registry.Remove(peer.id)
		conn.Close()
		return ErrServerClosed
	}
	return nil
}

func (s *Server) reject(conn Conn) {
	defer conn.Close()
	if len(s.rejectNotice) == 0 {
		return
	}
	if d, ok := conn.(writeDeadliner); ok {
		d.SetWriteDeadline(time.Now().Add(rejectWriteTimeout))
	}
	// best effort
	conn.Write(s.rejectNotice)
}

// Shutdown - stops listeners, closes all connections and waits for relay goroutines
// up to the timeout. Returns duration of time spent for shutdown.
func (s *Server) Shutdown(timeout time.Duration) time.Duration {
	from := time.Now()
	s.scope.Cancel()

	s.mu.Lock()
	for l := range s.listeners {
		l.Close()
	}
	s.mu.Unlock()

	for _, peer := range s.registry.Snapshot("") {
		peer.close()
	}

	if !s.scope.Wait(timeout) {
		logError(s.logger, "shutdown timeout", "timeout", timeout, "clients", s.registry.Len())
	}
	return time.Since(from)
}

func (s *Server) closed() bool {
	return s.scope.Context().Err() != nil
}

func (s *Server) trackListener(l net.Listener) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed() {
		return false
	}
	s.listeners[l] = struct{}{}
	return true
}

func (s *Server) untrackListener(l net.Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listeners, l)
}
