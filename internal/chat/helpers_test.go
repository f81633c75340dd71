package chat

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"testing"
	"time"
)

type logRecord struct {
	level, msg string
	args       []any
}

func (r logRecord) arg(key string) (any, bool) {
	for i := 0; i+1 < len(r.args); i += 2 {
		if r.args[i] == key {
			return r.args[i+1], true
		}
	}
	return nil, false
}

// recordLogger - keeps log records for assertions.
type recordLogger struct {
	mu      sync.Mutex
	records []logRecord
}

func (l *recordLogger) Info(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, logRecord{"INFO", msg, args})
}

func (l *recordLogger) Error(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, logRecord{"ERROR", msg, args})
}

func (l *recordLogger) find(msg string) []logRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	found := []logRecord{}
	for _, r := range l.records {
		if r.msg == msg {
			found = append(found, r)
		}
	}
	return found
}

type fakeAddr string

func (a fakeAddr) Network() string { return "fake" }
func (a fakeAddr) String() string  { return string(a) }

// brokenConn - connection which fails every write and blocks reads until closed.
type brokenConn struct {
	addr   string
	once   sync.Once
	closed chan struct{}
}

func newBrokenConn(addr string) *brokenConn {
	return &brokenConn{addr: addr, closed: make(chan struct{})}
}

func (c *brokenConn) Read([]byte) (int, error) {
	<-c.closed
	return 0, io.EOF
}

func (c *brokenConn) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func (c *brokenConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *brokenConn) RemoteAddr() net.Addr {
	return fakeAddr(c.addr)
}

// startServer - runs server on loopback listener, server is stopped when test ends.
func startServer(test *testing.T, options ...Option) (*Server, string) {
	test.Helper()
	s, err := NewServer(options...)
	if err != nil {
		test.Fatal("chat.NewServer, unexpected error:", err)
	}
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		test.Fatal("net.Listen, unexpected error:", err)
	}
	go s.Serve(l)
	test.Cleanup(func() {
		test.Log("server stopped in:", s.Shutdown(time.Second))
	})
	return s, l.Addr().String()
}

type netClient struct {
	net.Conn
	reader *bufio.Reader
}

func (c *netClient) readLine(timeout time.Duration) (string, error) {
	c.SetReadDeadline(time.Now().Add(timeout))
	return c.reader.ReadString('\n')
}

func (c *netClient) send(test *testing.T, line string) {
	test.Helper()
	if _, err := io.WriteString(c, line); err != nil {
		test.Fatal("client write, unexpected error:", err)
	}
}

func dial(test *testing.T, addr string) *netClient {
	test.Helper()
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		test.Fatal("net.Dial, unexpected error:", err)
	}
	test.Cleanup(func() { conn.Close() })
	return &netClient{conn, bufio.NewReader(conn)}
}

// join - connects new client and waits until the server admits it.
func join(test *testing.T, s *Server, addr string) *netClient {
	test.Helper()
	expected := s.Len() + 1
	c := dial(test, addr)
	waitFor(test, fmt.Sprintf("%d admitted clients", expected), func() bool { return s.Len() == expected })
	return c
}

func waitFor(test *testing.T, what string, cond func() bool) {
	test.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			test.Fatal("timeout waiting for", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
