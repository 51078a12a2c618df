// Package simclient is a thin client for the remote building simulator's
// HTTP API.
//
// Every method is one request. Non-2xx responses come back as *APIError
// carrying the simulator's "detail" message when it sends one. The client
// also builds the websocket URLs the telemetry package dials.
package simclient
