// Package `chatsrv` implements server application for line chat over TCP.
//
// Every line received from a client is relayed to all other connected clients.
// Optionally websocket clients may join the same chat through -ws address.
//
// To compile chat server locally, run from package directory:
//
//	go install .
//
// Or quickly launch server with command:
//
//	go run . -port 8080 -max-clients 10
package main
