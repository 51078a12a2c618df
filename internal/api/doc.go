// Package api implements the dashboard HTTP REST API and WebSocket server.
//
// This package provides:
//   - REST endpoints for buildings, devices, the 3D scene, simulations,
//     live telemetry and notifications
//   - WebSocket hub pushing telemetry samples, stream state, notifications
//     and refreshed lists to subscribed browsers
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//   - The embedded dashboard page at /
//
// # Architecture
//
// The server sits between browsers and the remote building simulator.
// Building and device lists are polled from the simulator and cached; the
// last good list is served when a fetch fails. Starting a simulation hands
// its id to the telemetry monitor, whose samples are broadcast on the hub.
//
// # Graceful Degradation
//
// The server starts without a reachable simulator. Lists come back empty
// with an error field and simulator failures map to 502 responses.
package api
