// Package message helps the terminal client to compose outgoing lines
// and to render relayed lines safely.
package message

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Separator - delimits sender name and text in a composed line.
const Separator = ": "

// Compose - builds wire line "<name>: <text>\n". Trailing CR/LF of text are dropped.
// Without name the text is sent as is.
func Compose(name, text string) []byte {
	text = strings.TrimRight(text, "\r\n")
	if name == "" {
		return []byte(text + "\n")
	}
	return []byte(name + Separator + text + "\n")
}

// Split - returns sender and text of the line composed with Compose.
// ok is false when the line carries no sender.
func Split(line string) (sender, text string, ok bool) {
	line = strings.TrimRight(line, "\r\n")
	i := strings.Index(line, Separator)
	if i <= 0 {
		return "", line, false
	}
	return line[:i], line[i+len(Separator):], true
}

// Sanitize - drops invalid UTF-8 and control characters except tab.
// The result never contains line breaks.
func Sanitize(line string) string {
	b := strings.Builder{}
	b.Grow(len(line))
	for len(line) > 0 {
		r, size := utf8.DecodeRuneInString(line)
		line = line[size:]
		switch {
		case r == utf8.RuneError && size <= 1:
			// drop
		case r == '\t':
			b.WriteRune(r)
		case unicode.IsControl(r):
			// drop
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

const (
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// Render - formats received line for terminal output.
func Render(t time.Time, line string) string {
	return render(t, line, "", "")
}

// RenderBold - formats received line like Render, the sender name is emphasized with ANSI bold.
func RenderBold(t time.Time, line string) string {
	return render(t, line, ansiBold, ansiReset)
}

func render(t time.Time, line, before, after string) string {
	stamp := "[" + t.Format("15:04:05") + "] "
	sender, text, ok := Split(line)
	if !ok {
		return stamp + Sanitize(text) + "\n"
	}
	return stamp + before + Sanitize(sender) + after + Separator + Sanitize(text) + "\n"
}
