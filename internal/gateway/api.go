// ABOUTME: HTTP API handlers for the manager console endpoints.
// ABOUTME: Provides /manager/send, /manager/chats, and /history.

package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/helpline/switchboard/internal/router"
	"github.com/helpline/switchboard/internal/store"
)

// ManagerSendRequest is the JSON request body for POST /manager/send.
type ManagerSendRequest struct {
	ChatID  string `json:"chat_id"`
	Message string `json:"message"`
	Action  bool   `json:"action"`

	// ManagerStatus claims (true) or releases (false) the chat when present.
	ManagerStatus *bool `json:"managerStatus"`
}

// HistoryMessage is one entry in a conversation history response.
type HistoryMessage struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// ChatSummary is one entry in the GET /manager/chats response.
type ChatSummary struct {
	ID       string           `json:"id"`
	UserName string           `json:"userName"`
	Messages []HistoryMessage `json:"messages"`
}

// handleManagerSend handles POST /manager/send requests.
// It validates the payload, applies any claim toggle, persists the manager
// message against the user's latest conversation, and fans it out to the
// user and the manager sockets.
func (g *Gateway) handleManagerSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req ManagerSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONDetail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.ChatID == "" || req.Message == "" {
		g.sendJSONDetail(w, http.StatusBadRequest, "chat_id and message are required")
		return
	}

	err := g.router.HandleManagerMessage(r.Context(), router.ManagerMessage{
		ChatID:        req.ChatID,
		Message:       req.Message,
		Action:        req.Action,
		ManagerStatus: req.ManagerStatus,
	})
	switch {
	case errors.Is(err, router.ErrUserNotFound):
		g.sendJSONDetail(w, http.StatusNotFound, "User not found")
	case errors.Is(err, router.ErrConversationNotFound):
		g.sendJSONDetail(w, http.StatusNotFound, "Thread not found")
	case err != nil:
		g.logger.Error("manager send failed", "error", err, "chat_id", req.ChatID)
		g.sendJSONDetail(w, http.StatusInternalServerError, "internal server error")
	default:
		g.sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// handleHistory handles GET /history?chat_id= requests.
// It returns the full ascending history of the user's latest conversation.
// Unknown identities and empty conversations both answer with an empty list,
// never a 404, so fresh chat widgets can poll it unconditionally.
func (g *Gateway) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	chatID := r.URL.Query().Get("chat_id")
	if chatID == "" {
		g.sendJSONDetail(w, http.StatusBadRequest, "chat_id is required")
		return
	}

	ctx := r.Context()
	history := []HistoryMessage{}

	user, err := g.store.GetUserByChatID(ctx, chatID)
	if errors.Is(err, store.ErrNotFound) {
		g.sendJSON(w, http.StatusOK, history)
		return
	}
	if err != nil {
		g.logger.Error("failed to look up user", "error", err, "chat_id", chatID)
		g.sendJSONDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	conv, err := g.store.LatestConversation(ctx, user.ID)
	if errors.Is(err, store.ErrNotFound) {
		g.sendJSON(w, http.StatusOK, history)
		return
	}
	if err != nil {
		g.logger.Error("failed to look up conversation", "error", err, "chat_id", chatID)
		g.sendJSONDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	messages, err := g.store.Messages(ctx, conv.ID, 0)
	if err != nil {
		g.logger.Error("failed to load history", "error", err, "chat_id", chatID)
		g.sendJSONDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	g.sendJSON(w, http.StatusOK, historyFromMessages(messages))
}

// chatEntry pairs a summary with the time of its newest message for sorting.
type chatEntry struct {
	summary ChatSummary
	lastAt  time.Time
}

// handleManagerChats handles GET /manager/chats requests.
// Every known user appears in the response, including users that never sent
// a message. Chats are ordered most-recently-active first; chats with no
// messages sort last.
func (g *Gateway) handleManagerChats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	users, err := g.store.ListUsers(ctx)
	if err != nil {
		g.logger.Error("failed to list users", "error", err)
		g.sendJSONDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	entries := make([]chatEntry, 0, len(users))
	for _, user := range users {
		entry := chatEntry{summary: ChatSummary{
			ID:       user.ChatID,
			UserName: shortChatName(user.ChatID),
			Messages: []HistoryMessage{},
		}}

		conv, err := g.store.LatestConversation(ctx, user.ID)
		if errors.Is(err, store.ErrNotFound) {
			entries = append(entries, entry)
			continue
		}
		if err != nil {
			g.logger.Error("failed to look up conversation", "error", err, "chat_id", user.ChatID)
			g.sendJSONDetail(w, http.StatusInternalServerError, "internal server error")
			return
		}

		messages, err := g.store.Messages(ctx, conv.ID, 0)
		if err != nil {
			g.logger.Error("failed to load history", "error", err, "chat_id", user.ChatID)
			g.sendJSONDetail(w, http.StatusInternalServerError, "internal server error")
			return
		}

		entry.summary.Messages = historyFromMessages(messages)
		if len(messages) > 0 {
			entry.lastAt = messages[len(messages)-1].CreatedAt
		}
		entries = append(entries, entry)
	}

	// Zero times (chats without messages) naturally sort to the end
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].lastAt.After(entries[j].lastAt)
	})

	chats := make([]ChatSummary, len(entries))
	for i, entry := range entries {
		chats[i] = entry.summary
	}

	g.sendJSON(w, http.StatusOK, chats)
}

// historyFromMessages converts stored messages into wire history entries.
func historyFromMessages(messages []*store.Message) []HistoryMessage {
	history := make([]HistoryMessage, len(messages))
	for i, msg := range messages {
		history[i] = HistoryMessage{
			Sender:    msg.Sender,
			Text:      msg.Content,
			Timestamp: msg.CreatedAt.Format(time.RFC3339),
		}
	}
	return history
}

// shortChatName derives the display name managers see for a chat.
func shortChatName(chatID string) string {
	if len(chatID) <= 6 {
		return chatID
	}
	return chatID[len(chatID)-6:]
}

// sendJSON writes a JSON response with the given status.
func (g *Gateway) sendJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		g.logger.Error("failed to encode response", "error", err)
	}
}

// sendJSONDetail writes an error response in the {"detail": ...} shape the
// manager console expects.
func (g *Gateway) sendJSONDetail(w http.ResponseWriter, status int, message string) {
	g.sendJSON(w, status, map[string]string{"detail": message})
}
