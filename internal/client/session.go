// Package client implements terminal side of the line chat.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/wtask/linechat/internal/chat/message"
)

// Session - one connection of the terminal client to the chat server.
type Session struct {
	conn   io.ReadWriteCloser
	in     io.Reader
	out    io.Writer
	name   string
	prompt bool
	now    func() time.Time
	render func(t time.Time, line string) string

	omu sync.Mutex
}

// Option - customizes Session.
type Option func(s *Session)

// WithPrompt - prints "You: " prompt before every input line.
func WithPrompt(enabled bool) Option {
	return func(s *Session) {
		s.prompt = enabled
	}
}

// WithBold - emphasizes sender names of received lines with ANSI bold.
func WithBold(enabled bool) Option {
	return func(s *Session) {
		if enabled {
			s.render = message.RenderBold
		} else {
			s.render = message.Render
		}
	}
}

// WithClock - overwrites time source used to render incoming lines.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSession - builds session over established connection.
func NewSession(conn io.ReadWriteCloser, in io.Reader, out io.Writer, name string, options ...Option) (*Session, error) {
	if conn == nil {
		return nil, errors.New("client.NewSession: connection is nil")
	}
	if in == nil || out == nil {
		return nil, errors.New("client.NewSession: input and output are required")
	}
	s := &Session{
		conn:   conn,
		in:     in,
		out:    out,
		name:   strings.TrimSpace(name),
		now:    time.Now,
		render: message.Render,
	}
	for _, option := range options {
		if option != nil {
			option(s)
		}
	}
	return s, nil
}

// Name - returns current name used as line prefix.
func (s *Session) Name() string {
	s.omu.Lock()
	defer s.omu.Unlock()
	return s.name
}

// Run - pumps server lines to output and input lines to server.
// Returns nil on /quit, input EOF or when the server closes connection.
// The connection is closed when Run returns.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	received := make(chan error, 1)
	go func() {
		received <- s.receive()
	}()
	sent := make(chan error, 1)
	go func() {
		sent <- s.send(ctx)
	}()

	var err error
	select {
	case err = <-received:
	case err = <-sent:
	case <-ctx.Done():
		err = ctx.Err()
	}
	s.conn.Close()
	return err
}

func (s *Session) receive() error {
	reader := bufio.NewReader(s.conn)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			s.print(s.render(s.now(), line))
		}
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			s.print("Connection closed by server.\n")
			return nil
		}
		if errors.Is(err, net.ErrClosed) {
			return nil
		}
		return fmt.Errorf("client: read from server: %w", err)
	}
}

func (s *Session) send(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	for {
		if s.prompt {
			s.print("You: ")
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("client: read input: %w", err)
			}
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
		text := scanner.Text()
		if cmd, ok := parseCommand(text); ok {
			if quit := s.execute(cmd); quit {
				return nil
			}
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if _, err := s.conn.Write(message.Compose(s.Name(), text)); err != nil {
			return fmt.Errorf("client: send: %w", err)
		}
	}
}

func (s *Session) execute(cmd command) (quit bool) {
	switch cmd.name {
	case "quit":
		s.print("Closing connection.\n")
		return true
	case "name":
		name := strings.TrimSpace(cmd.arg)
		if name == "" {
			s.print("Usage: /name <new name>\n")
			return false
		}
		s.omu.Lock()
		s.name = name
		s.omu.Unlock()
		s.print("You are now " + name + "\n")
	default:
		s.print("Unknown command /" + cmd.name + "\n")
	}
	return false
}

func (s *Session) print(text string) {
	s.omu.Lock()
	defer s.omu.Unlock()
	io.WriteString(s.out, text)
}
