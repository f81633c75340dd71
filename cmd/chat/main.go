package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/wtask/linechat/internal/client"
)

func main() {
	addr := net.JoinHostPort(Config.Address, fmt.Sprintf("%d", Config.Port))
	fmt.Printf("Connecting to %s...\n", addr)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Unable to connect:", err)
		os.Exit(1)
	}
	fmt.Println("Connected.")

	in := bufio.NewReader(os.Stdin)
	name := strings.TrimSpace(Config.Name)
	if name == "" {
		fmt.Print("Please Enter Your Name: ")
		line, err := in.ReadString('\n')
		if err != nil && err != io.EOF {
			fmt.Fprintln(os.Stderr, "Unable to read name:", err)
			conn.Close()
			os.Exit(1)
		}
		name = strings.TrimSpace(line)
	}

	session, err := client.NewSession(conn, in, os.Stdout, name,
		client.WithPrompt(Config.Prompt),
		client.WithBold(Config.Bold),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		conn.Close()
		os.Exit(1)
	}
	fmt.Println("You can start sending messages now. Type and press Enter, /quit to leave.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := session.Run(ctx); err != nil && err != context.Canceled {
		fmt.Fprintln(os.Stderr, "\nError:", err)
		os.Exit(1)
	}
	fmt.Println()
}
