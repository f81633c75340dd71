package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/wtask/linechat/pkg/semver"
)

type (
	// Configuration - server configuration
	Configuration struct {
		// IPAddress - bind the address
		IPAddress string
		// Port - bind the port
		Port uint
		// MaxClients - max number of simultaneously connected clients
		MaxClients int
		// Backlog - size of accept queue of the listening socket
		Backlog int
		// WriteTimeout - bound of single write to a client, zero disables it
		WriteTimeout time.Duration
		// MaxLineSize - max length of incoming line in bytes
		MaxLineSize int
		// Presence - notify clients about joined and left peers
		Presence bool
		// ResolveHosts - log host names of connected clients
		ResolveHosts bool
		// RateBurst - lines allowed per RateInterval for a client, zero disables the limit
		RateBurst int
		// RateInterval - refill interval of the rate limit
		RateInterval time.Duration
		// WebSocketAddress - listen address of websocket gateway, empty disables it
		WebSocketAddress string
		// WebSocketOrigins - allowed origins of websocket clients
		WebSocketOrigins []string
		// LogFormat - text or json
		LogFormat string
		// LogLevel - minimal level of log records
		LogLevel slog.Level
	}
)

var (
	// Config - current configuration of the server
	Config = Configuration{
		IPAddress:    "",
		Port:         8080,
		MaxClients:   10,
		Backlog:      10,
		WriteTimeout: 10 * time.Second,
		MaxLineSize:  64 * 1024,
		RateInterval: time.Second,
		LogFormat:    "text",
		LogLevel:     slog.LevelInfo,
	}

	// BinaryName - name of run application binary
	BinaryName = strings.TrimSuffix(filepath.Base(os.Args[0]), filepath.Ext(os.Args[0]))

	// Version - app version fingerprint
	Version = semver.V{Major: 1, Minor: 0, Patch: 0}
)

// envString - returns value of environment variable or fallback if it is empty.
func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt - returns positive integer from environment variable or fallback.
func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func init() {
	out := flag.CommandLine.Output()
	printUsage := func() {
		fmt.Fprintf(out, "Launch line chat server over TCP\n\n\t%s [options]\nOptions:\n\n", BinaryName)
		flag.PrintDefaults()
		fmt.Fprint(out, "\nEnvironment: CHAT_IP, CHAT_PORT, CHAT_MAX_CLIENTS, CHAT_BACKLOG, CHAT_WS\n\n")
	}
	printError := func(msg string) {
		fmt.Fprintf(out, "%s (v%s) error:\n\n\t%s\n", BinaryName, Version, msg)
	}

	help := false
	flag.BoolVar(&help, "help", false, "Print usage help")
	flag.StringVar(&Config.IPAddress, "ip", envString("CHAT_IP", Config.IPAddress), "Listen address")
	port := envInt("CHAT_PORT", int(Config.Port))
	flag.IntVar(&port, "port", port, "Listen port")
	flag.IntVar(&Config.MaxClients, "max-clients", envInt("CHAT_MAX_CLIENTS", Config.MaxClients), "Max number of connected clients")
	flag.IntVar(&Config.Backlog, "backlog", envInt("CHAT_BACKLOG", Config.Backlog), "Accept backlog of listening socket")
	writeTimeout := int(Config.WriteTimeout / time.Second)
	flag.IntVar(&writeTimeout, "write-timeout", writeTimeout, "Write timeout in seconds, 0 disables it")
	flag.IntVar(&Config.MaxLineSize, "max-line", Config.MaxLineSize, "Max length of incoming line in bytes")
	flag.BoolVar(&Config.Presence, "presence", false, "Notify clients when peers join or leave")
	flag.BoolVar(&Config.ResolveHosts, "resolve", false, "Resolve host names of clients for logging")
	flag.IntVar(&Config.RateBurst, "rate-burst", 0, "Lines allowed per rate interval for a client, 0 disables limit")
	rateInterval := int(Config.RateInterval / time.Second)
	flag.IntVar(&rateInterval, "rate-interval", rateInterval, "Rate limit interval in seconds")
	flag.StringVar(&Config.WebSocketAddress, "ws", envString("CHAT_WS", ""), "Websocket gateway listen address, e.g. :8081")
	origins := ""
	flag.StringVar(&origins, "ws-origins", "", "Comma separated allowed origins of websocket clients, * allows any")
	flag.StringVar(&Config.LogFormat, "log-format", Config.LogFormat, "Log format: text or json")
	level := "info"
	flag.StringVar(&level, "log-level", level, "Log level: debug, info, warn or error")

	flag.Parse()

	if help {
		printUsage()
		os.Exit(0)
	}

	if port < 0 || port > 65535 {
		printError("port value should be in range 0..65535")
		os.Exit(1)
	}
	Config.Port = uint(port)

	if Config.MaxClients < 1 {
		printError("max-clients value should be greater or equal 1")
		os.Exit(1)
	}
	if writeTimeout < 0 {
		printError("write-timeout value should be greater or equal 0")
		os.Exit(1)
	}
	Config.WriteTimeout = time.Duration(writeTimeout) * time.Second

	if Config.RateBurst < 0 {
		printError("rate-burst value should be greater or equal 0")
		os.Exit(1)
	}
	if rateInterval < 1 {
		printError("rate-interval value should be greater or equal 1")
		os.Exit(1)
	}
	Config.RateInterval = time.Duration(rateInterval) * time.Second

	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			Config.WebSocketOrigins = append(Config.WebSocketOrigins, o)
		}
	}

	if Config.LogFormat != "text" && Config.LogFormat != "json" {
		printError("log-format value should be text or json")
		os.Exit(1)
	}
	if err := Config.LogLevel.UnmarshalText([]byte(level)); err != nil {
		printError("log-level: " + err.Error())
		os.Exit(1)
	}
}
