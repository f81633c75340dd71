//go:build linux

package chat

import (
	"errors"
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// Listen - opens TCP listener with SO_REUSEADDR and the given accept backlog.
// Zero or negative backlog means the system maximum.
// Address without host listens both IPv4 and IPv6 like net.Listen does,
// IPv4 only when the system has no IPv6.
func Listen(address string, backlog int) (net.Listener, error) {
	addr, err := net.ResolveTCPAddr("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("chat.Listen: %w", err)
	}
	if backlog <= 0 {
		backlog = unix.SOMAXCONN
	}

	var fd int
	if addr.IP == nil {
		fd, err = listenFD(unix.AF_INET6, &unix.SockaddrInet6{Port: addr.Port}, backlog, true)
		if err != nil && !errors.Is(err, unix.EADDRINUSE) {
			fd, err = listenFD(unix.AF_INET, &unix.SockaddrInet4{Port: addr.Port}, backlog, false)
		}
	} else {
		domain, sa := sockaddr(addr)
		fd, err = listenFD(domain, sa, backlog, false)
	}
	if err != nil {
		return nil, fmt.Errorf("chat.Listen: %s: %w", address, err)
	}

	// FileListener duplicates the descriptor, the file is not needed after
	f := os.NewFile(uintptr(fd), "tcp:"+address)
	defer f.Close()
	l, err := net.FileListener(f)
	if err != nil {
		return nil, fmt.Errorf("chat.Listen: %w", err)
	}
	return l, nil
}

func listenFD(domain int, sa unix.Sockaddr, backlog int, dualStack bool) (int, error) {
	fd, err := unix.Socket(domain, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return -1, fmt.Errorf("socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("setsockopt: %w", err)
	}
	if dualStack {
		if err := unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, 0); err != nil {
			unix.Close(fd)
			return -1, fmt.Errorf("setsockopt: %w", err)
		}
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("bind: %w", err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("listen: %w", err)
	}
	return fd, nil
}

func sockaddr(addr *net.TCPAddr) (int, unix.Sockaddr) {
	if ip4 := addr.IP.To4(); ip4 != nil {
		sa := &unix.SockaddrInet4{Port: addr.Port}
		copy(sa.Addr[:], ip4)
		return unix.AF_INET, sa
	}
	sa := &unix.SockaddrInet6{Port: addr.Port}
	copy(sa.Addr[:], addr.IP.To16())
	if addr.Zone != "" {
		if ifi, err := net.InterfaceByName(addr.Zone); err == nil {
			sa.ZoneId = uint32(ifi.Index)
		}
	}
	return unix.AF_INET6, sa
}
