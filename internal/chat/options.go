package chat

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Option - customizes the Server built with NewServer.
type Option func(s *Server) error

// WithMaxClients - overwrites default capacity (10) of the registry.
func WithMaxClients(n int) Option {
	return func(s *Server) error {
		if n <= 0 {
			return fmt.Errorf("chat.WithMaxClients: invalid value (%d)", n)
		}
		s.maxClients = n
		return nil
	}
}

// WithLogger - attaches logger for connection events.
func WithLogger(l Logger) Option {
	return func(s *Server) error {
		if l == nil {
			return errors.New("chat.WithLogger: logger is nil")
		}
		s.logger = l
		return nil
	}
}

// WithWriteTimeout - bounds every single write into a peer.
// Zero disables the bound, so a stalled peer may delay the broadcast round it belongs to.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(s *Server) error {
		if timeout < 0 {
			return fmt.Errorf("chat.WithWriteTimeout: invalid timeout (%v)", timeout)
		}
		s.writeTimeout = timeout
		return nil
	}
}

// WithMaxLineSize - overwrites default limit (64 KiB) of an incoming line, including delimiter.
// Connection which exceeds the limit is dropped.
func WithMaxLineSize(size int) Option {
	return func(s *Server) error {
		if size < 16 {
			return fmt.Errorf("chat.WithMaxLineSize: size (%d) must be at least 16 bytes", size)
		}
		s.maxLineSize = size
		return nil
	}
}

// WithRejectNotice - overwrites the line sent to connections denied admission.
func WithRejectNotice(notice string) Option {
	return func(s *Server) error {
		s.rejectNotice = []byte(notice)
		return nil
	}
}

// WithPresence - enables "joined"/"left" notices for other peers.
func WithPresence(enabled bool) Option {
	return func(s *Server) error {
		s.presence = enabled
		return nil
	}
}

// WithHostResolver - enables reverse lookup of remote hosts for the connect log.
func WithHostResolver(resolve HostResolver) Option {
	return func(s *Server) error {
		s.resolveHost = resolve
		return nil
	}
}

// WithRateLimit - allows burst lines per interval for every connection, lines beyond are dropped.
func WithRateLimit(burst int, interval time.Duration) Option {
	return func(s *Server) error {
		if burst <= 0 {
			return fmt.Errorf("chat.WithRateLimit: invalid burst (%d)", burst)
		}
		if interval <= 0 {
			return fmt.Errorf("chat.WithRateLimit: invalid interval (%v)", interval)
		}
		s.rateBurst = burst
		s.rateLimit = rate.Every(interval / time.Duration(burst))
		return nil
	}
}
