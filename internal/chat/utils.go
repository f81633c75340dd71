package chat

import (
	"context"
	"net"
	"strings"
	"time"
)

// HostResolver - returns host name for the address or empty string if it is unknown.
type HostResolver func(ctx context.Context, addr net.Addr) string

const resolveTimeout = 2 * time.Second

// ReverseLookup - resolves the IP of the address with the default resolver.
func ReverseLookup(ctx context.Context, addr net.Addr) string {
	host := addr.String()
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if net.ParseIP(host) == nil {
		return ""
	}
	names, err := net.DefaultResolver.LookupAddr(ctx, host)
	if err != nil || len(names) == 0 {
		return ""
	}
	return strings.TrimSuffix(names[0], ".")
}

// formatAddress - formats specified network address for logging purposes.
func formatAddress(a net.Addr) string {
	if a == nil {
		return "unknown"
	}
	return a.String()
}

// presenceNotice - formats the line broadcast about a peer.
func presenceNotice(addr string, action string) []byte {
	return []byte("* " + addr + " " + action + "\n")
}
