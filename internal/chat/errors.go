package chat

import "errors"

var (
	// ErrServerClosed - returns from Serve and KeepConnection after the server was shut down.
	// The connection passed to KeepConnection is already closed in this case.
	ErrServerClosed = errors.New("chat.Server: closed")

	// ErrServerFull - returns from KeepConnection when the registry is at capacity.
	// The rejected connection has got the reject notice and is closed.
	ErrServerFull = errors.New("chat.Server: full")

	errLineTooLong = errors.New("chat: line too long")
	errPeerBroken  = errors.New("chat: peer is broken by partial write")
)
