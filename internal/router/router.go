// ABOUTME: Message router connecting users, managers, persistence, and the responder.
// ABOUTME: All messages flow through here - record first, then deliver.

package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/helpline/switchboard/internal/handoff"
	"github.com/helpline/switchboard/internal/hub"
	"github.com/helpline/switchboard/internal/responder"
	"github.com/helpline/switchboard/internal/store"
)

// ErrUserNotFound indicates no user exists for the chat ID.
var ErrUserNotFound = errors.New("user not found")

// ErrConversationNotFound indicates the user has no conversation yet.
var ErrConversationNotFound = errors.New("conversation not found")

// MessageStore defines what the router needs from storage.
type MessageStore interface {
	GetUserByChatID(ctx context.Context, chatID string) (*store.User, error)
	LatestConversation(ctx context.Context, userID string) (*store.Conversation, error)
	AppendMessage(ctx context.Context, msg *store.Message) error
}

// userFrame is the JSON frame delivered to a user's own connection.
type userFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Sender  string `json:"sender"`
}

// managerFrame is the JSON frame broadcast to manager dashboards. It carries
// the chat ID so dashboards can attribute the message to a conversation.
type managerFrame struct {
	ChatID  string `json:"chat_id"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Sender  string `json:"sender"`
}

// Router moves messages between users, managers, the store, and the
// automated responder.
type Router struct {
	store     MessageStore
	users     *hub.UserRegistry
	managers  *hub.ManagerRegistry
	handoff   *handoff.Tracker
	responder responder.Responder
	logger    *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a router. Pass nil logger for default.
func New(st MessageStore, users *hub.UserRegistry, managers *hub.ManagerRegistry, tracker *handoff.Tracker, rsp responder.Responder, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		store:     st,
		users:     users,
		managers:  managers,
		handoff:   tracker,
		responder: rsp,
		logger:    logger.With("component", "router"),
		locks:     make(map[string]*sync.Mutex),
	}
}

// HandleUserMessage runs one full turn for a message received from a user:
// persist it, show it to the managers, and, unless a manager has claimed the
// chat, produce and deliver the automated reply. Turns for the same user are
// serialized so messages and replies land in conversation order.
func (r *Router) HandleUserMessage(ctx context.Context, user *store.User, conv *store.Conversation, text string) error {
	lock := r.lockFor(user.ChatID)
	lock.Lock()
	defer lock.Unlock()

	// Record first, then act
	userMsg := &store.Message{
		ID:             uuid.New().String(),
		ConversationID: conv.ID,
		Sender:         store.SenderUser,
		Content:        text,
		CreatedAt:      time.Now().UTC(),
	}
	if err := r.store.AppendMessage(ctx, userMsg); err != nil {
		return fmt.Errorf("recording user message: %w", err)
	}

	r.broadcastToManagers(user.ChatID, store.SenderUser, text)

	if r.handoff.IsClaimed(user.ChatID) {
		r.logger.Debug("chat claimed by manager, skipping automated reply", "chat_id", user.ChatID)
		return nil
	}

	replyText, err := r.responder.Reply(ctx, user, text)
	if err != nil {
		r.logger.Error("automated reply failed", "chat_id", user.ChatID, "error", err)
		replyText = fmt.Sprintf("Openai error: %s.", err)
	}

	botMsg := &store.Message{
		ID:             uuid.New().String(),
		ConversationID: conv.ID,
		Sender:         store.SenderBot,
		Content:        replyText,
		CreatedAt:      time.Now().UTC(),
	}
	if err := r.store.AppendMessage(ctx, botMsg); err != nil {
		return fmt.Errorf("recording reply: %w", err)
	}

	r.deliverToUser(user.ChatID, store.SenderBot, replyText)
	r.broadcastToManagers(user.ChatID, store.SenderBot, replyText)
	return nil
}

// ManagerMessage is a message submitted on behalf of a manager.
type ManagerMessage struct {
	ChatID  string
	Message string

	// Action marks the message as an operator-triggered action event
	// rather than a chat message.
	Action bool

	// ManagerStatus, when set, claims (true) or releases (false) the chat.
	// The toggle applies even when the chat cannot be resolved below.
	ManagerStatus *bool
}

// HandleManagerMessage persists and delivers a manager's message to the user
// and to the other manager dashboards. Returns ErrUserNotFound or
// ErrConversationNotFound when the chat does not resolve.
func (r *Router) HandleManagerMessage(ctx context.Context, msg ManagerMessage) error {
	if msg.ManagerStatus != nil {
		if *msg.ManagerStatus {
			r.handoff.Claim(msg.ChatID)
		} else {
			r.handoff.Release(msg.ChatID)
		}
	}

	user, err := r.store.GetUserByChatID(ctx, msg.ChatID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("looking up user: %w", err)
	}

	conv, err := r.store.LatestConversation(ctx, user.ID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrConversationNotFound
	}
	if err != nil {
		return fmt.Errorf("looking up conversation: %w", err)
	}

	sender := store.SenderManager
	if msg.Action {
		sender = store.SenderAction
	}

	record := &store.Message{
		ID:             uuid.New().String(),
		ConversationID: conv.ID,
		Sender:         sender,
		Content:        msg.Message,
		CreatedAt:      time.Now().UTC(),
	}
	if err := r.store.AppendMessage(ctx, record); err != nil {
		return fmt.Errorf("recording manager message: %w", err)
	}

	r.deliverToUser(msg.ChatID, sender, msg.Message)
	r.broadcastToManagers(msg.ChatID, sender, msg.Message)
	return nil
}

// lockFor returns the per-user turn lock, creating it on first use. Locks
// are never removed; the map grows with the number of distinct users.
func (r *Router) lockFor(chatID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[chatID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[chatID] = lock
	}
	return lock
}

// deliverToUser sends a frame to the user's live connection, if any.
func (r *Router) deliverToUser(chatID, sender, message string) {
	data, err := json.Marshal(userFrame{
		Type:    "message",
		Message: message,
		Sender:  sender,
	})
	if err != nil {
		r.logger.Error("failed to encode user frame", "chat_id", chatID, "error", err)
		return
	}
	r.users.Send(chatID, data)
}

// broadcastToManagers fans a frame out to every manager dashboard.
func (r *Router) broadcastToManagers(chatID, sender, message string) {
	data, err := json.Marshal(managerFrame{
		ChatID:  chatID,
		Type:    "message",
		Message: message,
		Sender:  sender,
	})
	if err != nil {
		r.logger.Error("failed to encode manager frame", "chat_id", chatID, "error", err)
		return
	}
	r.managers.Broadcast(data)
}
