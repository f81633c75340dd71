package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wtask/linechat/internal/chat"
	"github.com/wtask/linechat/internal/gateway"
)

func newLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: Config.LogLevel}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if Config.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler).With("app", BinaryName, "version", Version)
}

func main() {
	logger := newLogger()
	logger.Info("started", "config", fmt.Sprintf("%+v", Config))

	options := []chat.Option{
		chat.WithLogger(logger),
		chat.WithMaxClients(Config.MaxClients),
		chat.WithWriteTimeout(Config.WriteTimeout),
		chat.WithMaxLineSize(Config.MaxLineSize),
		chat.WithPresence(Config.Presence),
	}
	if Config.ResolveHosts {
		options = append(options, chat.WithHostResolver(chat.ReverseLookup))
	}
	if Config.RateBurst > 0 {
		options = append(options, chat.WithRateLimit(Config.RateBurst, Config.RateInterval))
	}
	server, err := chat.NewServer(options...)
	if err != nil {
		logger.Error("invalid config", "err", err)
		os.Exit(1)
	}

	node := net.JoinHostPort(Config.IPAddress, fmt.Sprintf("%d", Config.Port))
	listener, err := chat.Listen(node, Config.Backlog)
	if err != nil {
		logger.Error("unable to listen TCP", "err", err)
		os.Exit(1)
	}
	logger.Info("listen", "addr", listener.Addr().String(), "max_clients", Config.MaxClients, "backlog", Config.Backlog)

	var gw *http.Server
	if Config.WebSocketAddress != "" {
		gw = &http.Server{
			Addr:              Config.WebSocketAddress,
			Handler:           gateway.NewHandler(server, logger, Config.WebSocketOrigins),
			ReadHeaderTimeout: 15 * time.Second,
		}
		wsListener, err := net.Listen("tcp", Config.WebSocketAddress)
		if err != nil {
			logger.Error("unable to listen websocket gateway", "err", err)
			listener.Close()
			os.Exit(1)
		}
		logger.Info("listen", "addr", wsListener.Addr().String(), "transport", "websocket")
		go func() {
			if err := gw.Serve(wsListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("websocket gateway stopped", "err", err)
			}
		}()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(listener)
	}()
	logger.Info("chat server has started")

	exitCode := 0
	select {
	case s := <-sig:
		logger.Info("got stop signal", "signal", s.String())
	case err := <-serveErr:
		logger.Error("listener failed", "err", err)
		exitCode = 1
	}

	if gw != nil {
		// hijacked websocket connections are closed by the chat server
		gw.Close()
	}
	logger.Info("chat server stopped", "took", server.Shutdown(5*time.Second))
	os.Exit(exitCode)
}
