// ABOUTME: Responder interface for producing automated replies to user messages.
// ABOUTME: Implementations are the OpenAI-backed assistant and the echo fallback.

package responder

import (
	"context"
	"errors"
	"regexp"

	"github.com/helpline/switchboard/internal/store"
)

// ErrThreadBusy indicates the provider thread rejected a message because a
// run is still active on it. The assistant retries these.
var ErrThreadBusy = errors.New("assistant thread busy")

// ProviderError wraps a failure from the AI provider. Callers degrade these
// into an error-text bot reply instead of failing the whole turn.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string { return e.Err.Error() }

func (e *ProviderError) Unwrap() error { return e.Err }

// Responder produces the automated reply for one user message. Reply blocks
// until the reply text is ready or the context is cancelled.
type Responder interface {
	Reply(ctx context.Context, user *store.User, text string) (string, error)
}

// citationPattern matches the file-search citation markers the assistant
// embeds in its answers, e.g. 【4:0†source】.
var citationPattern = regexp.MustCompile(`【[^】]+】`)

// stripCitations removes citation markers from assistant output.
func stripCitations(text string) string {
	return citationPattern.ReplaceAllString(text, "")
}
