// ABOUTME: WebSocket endpoints for user chats and the manager console feed.
// ABOUTME: Bridges socket connections into the hub registries and the router.

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/helpline/switchboard/internal/store"
)

// sendBufferSize is the number of outbound frames queued per client before
// further frames are dropped.
const sendBufferSize = 256

// writeTimeout bounds a single frame write to a client.
const writeTimeout = 5 * time.Second

var (
	errClientGone     = errors.New("client connection closed")
	errSendBufferFull = errors.New("client send buffer full")
)

// inboundUserFrame is the JSON payload users send over /ws.
// A missing message key decodes to the empty string and is relayed as such.
type inboundUserFrame struct {
	Message string `json:"message"`
}

// Client adapts one WebSocket connection to the hub's Conn interface.
// Writes are funneled through a single pump goroutine so deliveries from
// the router and broadcasts never interleave on the wire.
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
}

func newClient(conn *websocket.Conn, logger *slog.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// Send queues a frame for delivery. It never blocks: frames for a client
// whose buffer is full are dropped and reported to the caller.
func (c *Client) Send(data []byte) error {
	select {
	case c.send <- data:
		return nil
	case <-c.ctx.Done():
		return errClientGone
	default:
		return errSendBufferFull
	}
}

// close tears the client down and lets the write pump close the socket.
func (c *Client) close() {
	c.cancel()
}

func (c *Client) writePump() {
	defer func() { _ = c.conn.Close(websocket.StatusNormalClosure, "") }()
	for {
		select {
		case <-c.ctx.Done():
			return
		case data := <-c.send:
			ctx, cancel := context.WithTimeout(c.ctx, writeTimeout)
			err := c.conn.Write(ctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				c.logger.Debug("client write failed", "error", err)
				return
			}
		}
	}
}

// handleUserSocket handles GET /ws?chat_id= user connections.
// The connection is rejected with close code 1008 when chat_id is missing.
// Each received frame runs one full relay turn before the next is read,
// matching the per-connection ordering users expect from a chat.
func (g *Gateway) handleUserSocket(w http.ResponseWriter, r *http.Request) {
	chatID := r.URL.Query().Get("chat_id")

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		g.logger.Warn("user websocket accept failed", "error", err)
		return
	}

	if chatID == "" {
		g.logger.Warn("closing user websocket, no chat_id provided")
		_ = conn.Close(websocket.StatusPolicyViolation, "chat_id is required")
		return
	}

	ctx := r.Context()

	user, err := g.store.EnsureUser(ctx, chatID)
	if err != nil {
		g.logger.Error("failed to ensure user", "error", err, "chat_id", chatID)
		_ = conn.Close(websocket.StatusInternalError, "storage failure")
		return
	}
	conv, err := g.store.EnsureConversation(ctx, user.ID)
	if err != nil {
		g.logger.Error("failed to ensure conversation", "error", err, "chat_id", chatID)
		_ = conn.Close(websocket.StatusInternalError, "storage failure")
		return
	}

	client := newClient(conn, g.logger.With("chat_id", chatID))
	g.users.Connect(chatID, client)
	defer g.users.Disconnect(chatID, client)
	defer client.close()

	go client.writePump()
	g.readUserFrames(ctx, conn, user, conv)
}

// readUserFrames reads user frames until the connection or the turn fails.
func (g *Gateway) readUserFrames(ctx context.Context, conn *websocket.Conn, user *store.User, conv *store.Conversation) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			g.logger.Info("user websocket closed", "chat_id", user.ChatID, "reason", err)
			return
		}

		var frame inboundUserFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			g.logger.Warn("malformed user frame, closing connection", "chat_id", user.ChatID, "error", err)
			return
		}

		if err := g.router.HandleUserMessage(ctx, user, conv, frame.Message); err != nil {
			g.logger.Error("user message turn failed", "error", err, "chat_id", user.ChatID)
			return
		}
	}
}

// handleManagerSocket handles GET /manager/ws console connections.
// Managers receive every relayed frame; anything they write on the socket
// is logged and discarded, because manager sends go through POST /manager/send.
func (g *Gateway) handleManagerSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		g.logger.Warn("manager websocket accept failed", "error", err)
		return
	}

	managerID := uuid.New().String()
	client := newClient(conn, g.logger.With("manager_id", managerID))
	g.managers.Add(managerID, client)
	defer g.managers.Remove(managerID)
	defer client.close()

	go client.writePump()

	ctx := r.Context()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			g.logger.Info("manager websocket closed", "manager_id", managerID, "reason", err)
			return
		}
		g.logger.Debug("discarding inbound manager frame", "manager_id", managerID, "data", string(data))
	}
}
