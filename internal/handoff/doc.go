// Package handoff tracks which chats a human manager has claimed.
// Claimed chats get no automated replies until the manager releases them.
package handoff
