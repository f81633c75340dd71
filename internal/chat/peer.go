package chat

import (
	"io"
	"net"
	"sync"
	"time"
)

// Conn - bidirectional byte stream of one accepted client.
// net.Conn satisfies it, as does the websocket gateway stream.
type Conn interface {
	io.ReadWriteCloser
	RemoteAddr() net.Addr
}

// writeDeadliner - optional Conn capability used to bound a single write.
type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// Peer - the shareable writable half of an admitted connection.
// Any relay goroutine may write into it; a write is never interleaved with another one.
type Peer struct {
	id       Identity
	addr     string
	admitted time.Time
	seq      uint64

	mu           sync.Mutex
	conn         Conn
	writeTimeout time.Duration
	broken       bool
}

func newPeer(id Identity, conn Conn, writeTimeout time.Duration) *Peer {
	return &Peer{
		id:           id,
		addr:         formatAddress(conn.RemoteAddr()),
		admitted:     time.Now().UTC(),
		conn:         conn,
		writeTimeout: writeTimeout,
	}
}

// ID - returns identity of the peer.
func (p *Peer) ID() Identity {
	return p.id
}

// Addr - returns remote address of the peer suitable for logs.
func (p *Peer) Addr() string {
	return p.addr
}

// Admitted - returns admission time in UTC.
func (p *Peer) Admitted() time.Time {
	return p.admitted
}

// Write - writes the whole line with one call to the underlying connection.
// A line written partially breaks the peer: the connection is closed
// and every later Write fails with errPeerBroken.
func (p *Peer) Write(line []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.broken {
		return 0, errPeerBroken
	}
	if d, ok := p.conn.(writeDeadliner); ok && p.writeTimeout > 0 {
		if err := d.SetWriteDeadline(time.Now().Add(p.writeTimeout)); err != nil {
			return 0, err
		}
	}
	n, err := p.conn.Write(line)
	if err != nil && n > 0 && n < len(line) {
		p.broken = true
		// the relay of this peer gets read error and removes it
		p.conn.Close()
	}
	return n, err
}

// close - releases the connection. It does not wait for a write in progress,
// closing unblocks such write instead.
func (p *Peer) close() error {
	return p.conn.Close()
}
