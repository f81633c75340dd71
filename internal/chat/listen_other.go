//go:build !linux

package chat

import (
	"fmt"
	"net"
)

// Listen - opens TCP listener. The backlog is chosen by the system on this platform.
// Address without host listens both IPv4 and IPv6.
func Listen(address string, backlog int) (net.Listener, error) {
	l, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("chat.Listen: %w", err)
	}
	return l, nil
}
