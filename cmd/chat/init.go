package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wtask/linechat/pkg/semver"
)

type (
	// Configuration - client configuration
	Configuration struct {
		// Address - server host
		Address string
		// Port - server port
		Port uint
		// Name - prefix of sent lines, asked interactively when empty
		Name string
		// Prompt - print input prompt
		Prompt bool
		// Bold - emphasize sender names of received lines
		Bold bool
	}
)

var (
	// Config - current configuration of the client
	Config = Configuration{
		Address: "127.0.0.1",
		Port:    8080,
		Prompt:  true,
	}

	// BinaryName - name of run application binary
	BinaryName = strings.TrimSuffix(filepath.Base(os.Args[0]), filepath.Ext(os.Args[0]))

	// Version - app version fingerprint
	Version = semver.V{Major: 1, Minor: 0, Patch: 0}
)

func init() {
	out := flag.CommandLine.Output()
	printUsage := func() {
		fmt.Fprintf(out, "Connect to line chat server\n\n\t%s [options] [server-address] [port]\nOptions:\n\n", BinaryName)
		flag.PrintDefaults()
		fmt.Fprint(out, "\n")
	}
	printError := func(msg string) {
		fmt.Fprintf(out, "%s (v%s) error:\n\n\t%s\n", BinaryName, Version, msg)
	}

	help := false
	flag.BoolVar(&help, "help", false, "Print usage help")
	flag.StringVar(&Config.Name, "name", os.Getenv("CHAT_NAME"), "Your name in the chat")
	flag.BoolVar(&Config.Prompt, "prompt", true, "Print input prompt")
	flag.BoolVar(&Config.Bold, "bold", false, "Emphasize sender names with ANSI bold")

	flag.Parse()

	if help {
		printUsage()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) > 2 {
		printError("too many arguments")
		os.Exit(1)
	}
	if len(args) > 0 {
		Config.Address = args[0]
	}
	if len(args) > 1 {
		port, err := strconv.ParseUint(args[1], 10, 16)
		if err != nil || port == 0 {
			printError("port value should be in range 1..65535")
			os.Exit(1)
		}
		Config.Port = uint(port)
	}
}
