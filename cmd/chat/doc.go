// Package `chat` implements terminal client for the line chat server.
//
//	go run . [options] [server-address] [port]
//
// Type a line and press Enter to send it, /name <new> changes your name, /quit leaves the chat.
package main
