// ABOUTME: Live connection registries for users and managers.
// ABOUTME: Tracks who is reachable right now and delivers frames best-effort.

package hub

// Conn is a writable client connection. Implementations enqueue the frame
// for delivery and return an error only when the connection is unusable.
type Conn interface {
	Send(data []byte) error
}
