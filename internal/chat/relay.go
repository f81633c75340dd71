package chat

import (
	"bufio"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// relay - reads lines of the admitted peer and broadcasts them until EOF or read error.
// The peer is removed from registry before relay returns.
func (s *Server) relay(ctx context.Context, peer *Peer, conn Conn) {
	s.greet(ctx, peer)

	action := PartActionLeft
	defer func() {
		if ctx.Err() != nil {
			action = PartActionShutdown
		}
		removed := s.registry.Remove(peer.id)
		conn.Close()
		logInfo(s.logger, "part",
			"id", peer.id, "addr", peer.addr, "reason", action,
			"online", time.Since(peer.Admitted()).Truncate(time.Millisecond), "clients", s.registry.Len())
		if removed && s.presence && action != PartActionShutdown {
			s.broadcast(peer.id, presenceNotice(peer.addr, "left"))
		}
	}()

	var limiter *rate.Limiter
	if s.rateBurst > 0 {
		limiter = rate.NewLimiter(s.rateLimit, s.rateBurst)
	}

	reader := bufio.NewReaderSize(conn, s.maxLineSize)
	for {
		line, err := readLine(reader)
		if len(line) > 0 && (err == nil || errors.Is(err, io.EOF)) {
			if limiter == nil || limiter.Allow() {
				// line refers to reader buffer, it is valid until the next read
				s.broadcast(peer.id, line)
			} else {
				logInfo(s.logger, "line dropped", "id", peer.id, "addr", peer.addr, "reason", "rate limit")
			}
		}
		if err == nil {
			continue
		}
		switch {
		case errors.Is(err, io.EOF):
			action = PartActionLeft
		case errors.Is(err, errLineTooLong):
			action = PartActionOverflow
			logError(s.logger, "read failed", "id", peer.id, "addr", peer.addr, "err", err, "limit", s.maxLineSize)
		default:
			action = PartActionFailed
			if ctx.Err() == nil {
				logError(s.logger, "read failed", "id", peer.id, "addr", peer.addr, "err", err)
			}
		}
		return
	}
}

// greet - logs admission and tells others about the newcomer.
func (s *Server) greet(ctx context.Context, peer *Peer) {
	args := []any{"id", peer.id, "addr", peer.addr, "clients", s.registry.Len(), "max", s.registry.Cap()}
	if s.resolveHost != nil {
		rctx, cancel := context.WithTimeout(ctx, resolveTimeout)
		if host := s.resolveHost(rctx, peer.conn.RemoteAddr()); host != "" {
			args = append(args, "host", host)
		}
		cancel()
	}
	logInfo(s.logger, "connect", args...)
	if s.presence {
		s.broadcast(peer.id, presenceNotice(peer.addr, "joined"))
	}
}

// broadcast - writes the line into every registered peer except the sender.
// Writes run concurrently, the call returns when all of them are finished.
// A failed write is logged only, the peer will be removed by its own relay.
func (s *Server) broadcast(from Identity, line []byte) {
	peers := s.registry.Snapshot(from)
	if len(peers) == 0 {
		return
	}
	wg := sync.WaitGroup{}
	wg.Add(len(peers))
	for _, p := range peers {
		go func(p *Peer) {
			defer wg.Done()
			if _, err := p.Write(line); err != nil {
				logError(s.logger, "write failed", "from", from, "to", p.id, "addr", p.addr, "err", err)
			}
		}(p)
	}
	wg.Wait()
}

// readLine - reads up to and including '\n'. At EOF the unterminated tail is returned with io.EOF.
// A line longer than reader buffer results in errLineTooLong.
func readLine(r *bufio.Reader) ([]byte, error) {
	line, err := r.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		return nil, errLineTooLong
	}
	return line, err
}
