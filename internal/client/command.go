package client

import "strings"

type command struct {
	name string
	arg  string
}

// parseCommand - recognizes "/name arg" input. A line starting with "//" is a text line.
func parseCommand(text string) (command, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") || strings.HasPrefix(text, "//") || len(text) == 1 {
		return command{}, false
	}
	name, arg, _ := strings.Cut(text[1:], " ")
	return command{strings.ToLower(name), strings.TrimSpace(arg)}, true
}
