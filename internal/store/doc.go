// Package store provides persistent storage for the relay using SQLite.
//
// # Data Models
//
//   - User: A chat identity, keyed by its external chat_id
//   - Conversation: A message container owned by a user; the newest one is live
//   - Message: An individual message with sender (user, bot, manager, action)
//   - ThreadBinding: Maps a user to its remote AI provider thread
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// Timestamps are stored as fixed-width UTC strings so that lexicographic
// ordering in SQL matches chronological ordering.
//
// # Error Handling
//
// Common errors:
//
//   - ErrNotFound: Requested entity does not exist
//   - ErrDuplicateBinding: User already has a provider thread binding
//
// All methods accept context.Context for cancellation support.
//
// # Testing
//
// Use a t.TempDir() path for tests with real SQLite. ":memory:" opens a
// separate empty database per pooled connection, so it only suits
// single-goroutine tests.
package store
