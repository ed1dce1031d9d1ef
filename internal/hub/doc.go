// Package hub tracks live WebSocket connections for users and managers.
//
// # Overview
//
// The hub package holds the in-memory connection state of the server. It
// knows nothing about persistence or message semantics. Callers hand it
// encoded frames and it delivers them to whoever is connected right now.
//
// Two registries cover the two sides of the switchboard:
//
//   - UserRegistry: at most one live connection per chat ID
//   - ManagerRegistry: any number of manager console connections
//
// # Conn
//
// Both registries speak to connections through the Conn interface:
//
//	type Conn interface {
//	    Send(data []byte) error
//	}
//
// Send enqueues a frame for the connection's writer and must not block.
//
// # User Connections
//
// A user may reconnect at any time. Connect replaces the previous
// connection for the chat ID, and the newest connection always wins.
// Disconnect ignores connections that have already been replaced, so a
// slow teardown of an old socket never knocks out a fresh one.
//
// Send is best-effort. If the user is offline the frame is dropped and the
// message stays in the store for the next history fetch.
//
// # Manager Connections
//
// Managers watch all traffic. Broadcast sends a frame to every connected
// manager console and keeps going when an individual send fails, so one
// dead console cannot block the rest.
package hub
