// Package server implements the HTTP and WebSocket control surface for the
// Nightstand LED strip.
//
// The server accepts JSON color commands on two transports and produces the
// validated result onto the pixel bus consumed by the drive loop:
//
//   - POST /params accepts a one-shot command. The response is JSON, and
//     validation failures map onto 413/400 with a machine-readable error
//     code.
//   - GET /ws opens a persistent WebSocket session for streaming commands.
//     The session is hijacked from net/http and frames are parsed manually so
//     each frame kind gets exact handling: pings are answered with pongs,
//     binary frames are rejected with binary_not_supported, fragmented
//     messages are drained and ignored, and a text frame whose declared
//     length exceeds the payload budget is drained without buffering and the
//     session is closed.
//
// GET / serves a plain-text liveness banner and GET /healthz a JSON health
// summary.
//
// # Graceful Shutdown
//
// Start blocks until SIGINT/SIGTERM, a listener failure, or a fatal error
// reported by the drive loop. Shutdown stops the HTTP server, closes every
// hijacked WebSocket session (http.Server.Shutdown does not cover those),
// and waits for session goroutines with a timeout.
package server
