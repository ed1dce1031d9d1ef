// Package router orchestrates message turns between users, managers, and
// the automated responder.
//
// # Overview
//
// Every message that enters the system passes through one of two entry
// points:
//
//   - HandleUserMessage: a user said something over their WebSocket
//   - HandleManagerMessage: a manager sent a message through the console
//
// The router persists each message and mirrors all traffic to the manager
// consoles. It also decides whether the automated responder gets to answer.
//
// # User Turns
//
// A user turn runs these steps in order:
//
//  1. Persist the user message
//  2. Broadcast it to all manager consoles
//  3. Stop here when a manager has claimed the chat
//  4. Ask the responder for a reply
//  5. Persist the reply
//  6. Deliver it to the user and broadcast it to managers
//
// Turns for the same chat are serialized with a per-chat lock, so replies
// land in the store in the order the messages arrived. Turns for different
// chats run concurrently.
//
// # Manager Messages
//
// A manager message runs these steps:
//
//  1. Toggle the handoff claim (this happens even for unknown chat IDs)
//  2. Resolve the user, answering ErrUserNotFound when missing
//  3. Resolve the latest conversation, answering ErrConversationNotFound
//  4. Persist the message as sender "manager", or "action" when flagged
//  5. Deliver it to the user when connected and mirror it to managers
//
// # Responder Failures
//
// When the responder fails, the turn still completes. The error text is
// wrapped as "Openai error: <message>." and takes the place of the reply,
// persisted and delivered like any other bot message.
package router
