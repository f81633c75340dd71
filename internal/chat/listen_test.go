package chat

import (
	"context"
	"io"
	"net"
	"strconv"
	"testing"
	"time"
)

func TestListen(test *testing.T) {
	l, err := Listen("127.0.0.1:0", 4)
	if err != nil {
		test.Fatal("Listen, unexpected error:", err)
	}
	defer l.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := l.Accept()
		if err != nil {
			test.Log("Accept:", err)
			close(accepted)
			return
		}
		accepted <- conn
	}()

	client, err := net.Dial("tcp", l.Addr().String())
	if err != nil {
		test.Fatal("net.Dial, unexpected error:", err)
	}
	defer client.Close()
	io.WriteString(client, "ping\n")

	select {
	case conn, ok := <-accepted:
		if !ok {
			test.Fatal("Accept failed")
		}
		defer conn.Close()
		buf := make([]byte, 5)
		conn.SetReadDeadline(time.Now().Add(time.Second))
		if _, err := io.ReadFull(conn, buf); err != nil || string(buf) != "ping\n" {
			test.Errorf("Unexpected data %q (%v)", buf, err)
		}
	case <-time.After(2 * time.Second):
		test.Fatal("connection was not accepted")
	}
}

func TestListen_DefaultBacklog(test *testing.T) {
	l, err := Listen("127.0.0.1:0", 0)
	if err != nil {
		test.Fatal("Listen, unexpected error:", err)
	}
	l.Close()
}

func TestListen_InvalidAddress(test *testing.T) {
	if l, err := Listen("127.0.0.1:not-a-port", 10); err == nil {
		l.Close()
		test.Error("Listen: expected error for invalid address")
	}
}

func TestListen_AddressInUse(test *testing.T) {
	l, err := Listen("127.0.0.1:0", 4)
	if err != nil {
		test.Fatal("Listen, unexpected error:", err)
	}
	defer l.Close()
	if l2, err := Listen(l.Addr().String(), 4); err == nil {
		l2.Close()
		test.Error("Listen: expected error for busy address")
	}
}

func TestReverseLookup_NotIP(test *testing.T) {
	if host := ReverseLookup(context.Background(), fakeAddr("pipe")); host != "" {
		test.Error("ReverseLookup: expected empty host, got", host)
	}
}

func TestListen_NoHost(test *testing.T) {
	l, err := Listen(":0", 4)
	if err != nil {
		test.Fatal("Listen, unexpected error:", err)
	}
	defer l.Close()
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()
	port := l.Addr().(*net.TCPAddr).Port

	hosts := []string{"127.0.0.1"}
	if v6, err := net.Listen("tcp6", "[::1]:0"); err == nil {
		v6.Close()
		hosts = append(hosts, "::1")
	} else {
		test.Log("IPv6 loopback is unavailable:", err)
	}
	for _, host := range hosts {
		conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, strconv.Itoa(port)), time.Second)
		if err != nil {
			test.Errorf("Dial %s: unexpected error: %v", host, err)
			continue
		}
		conn.Close()
	}
}
