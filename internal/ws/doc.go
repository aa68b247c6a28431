// Package ws implements the WebSocket hub for the status site.
//
// Hub manages a set of connected clients and broadcasts the latest
// heartbeat to all of them on a fixed interval.
//
// New(provider, interval) creates a Hub.
// Hub.Run(ctx) starts the broadcast ticker — blocks until ctx is cancelled,
// then closes all active connections.
// Hub.ServeHTTP upgrades an HTTP connection to WebSocket, sends the latest
// heartbeat immediately on connect, then streams updates on each tick.
//
// Message format sent to clients:
//
//	{
//	  "event": "heartbeat",
//	  "data":  { /* same schema as GET /api/v1/heartbeats/latest, or null */ }
//	}
//
// The upgrader accepts all origins. Apply CORS restrictions at the reverse
// proxy level. The endpoint is mounted at /ws/heartbeats by the server.
package ws
