// Package gateway orchestrates the switchboard server components.
//
// # Overview
//
// The gateway package is the central coordinator of the switchboard server.
// It owns and manages all major components: the SQLite store, the user and
// manager connection hubs, the handoff tracker, the responder, and the HTTP
// server carrying both the REST API and the WebSocket endpoints.
//
// # Gateway Struct
//
// The Gateway struct is the main entry point:
//
//	type Gateway struct {
//	    config     *config.Config
//	    store      store.Store
//	    users      *hub.UserRegistry
//	    managers   *hub.ManagerRegistry
//	    handoff    *handoff.Tracker
//	    responder  responder.Responder
//	    router     *router.Router
//	    httpServer *http.Server
//	}
//
// # HTTP API
//
// The gateway exposes HTTP endpoints:
//
//   - GET /ws?chat_id= - User WebSocket connection
//   - GET /manager/ws - Manager console WebSocket feed
//   - POST /manager/send - Send a manager message into a chat
//   - GET /manager/chats - All chats with their histories, newest first
//   - GET /history?chat_id= - Ascending history of a user's latest conversation
//   - GET /health - Liveness check
//   - GET /health/ready - Readiness check (probes the store)
//
// All endpoints answer with permissive CORS headers for browser clients.
//
// # WebSocket Frames
//
// Users send:
//
//	{"message": "hello"}
//
// Users receive:
//
//	{"type": "message", "message": "...", "sender": "user"|"bot"|"manager"|"action"}
//
// Manager sockets receive the same frames with the originating chat attached:
//
//	{"chat_id": "...", "type": "message", "message": "...", "sender": "..."}
//
// A user connection without a chat_id query parameter is closed with
// WebSocket code 1008.
//
// # Responder Selection
//
// When both ai.api_key and ai.assistant_id are configured the gateway replies
// through the OpenAI assistant. Otherwise it falls back to the echo responder,
// which answers "echo: " plus the original text after the configured delay.
//
// # Lifecycle
//
// Start the gateway:
//
//	gw, err := gateway.New(cfg, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	go gw.Run(ctx)
//
// Graceful shutdown:
//
//	cancel()
//
// Run performs graceful shutdown itself when its context is canceled.
//
// # Key Files
//
//   - gateway.go: Gateway struct, initialization, Run/Shutdown
//   - api.go: REST handlers for the manager console
//   - ws.go: WebSocket endpoints and the client write pump
package gateway
