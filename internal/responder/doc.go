// Package responder produces automated replies for user messages.
//
// Two implementations exist. Assistant drives a remote OpenAI assistant,
// keeping one provider thread per user so the model sees the full
// conversation. Echo replies with the user's own text after a delay and is
// used when no provider credentials are configured.
//
// A provider thread accepts no new messages while a run is active on it.
// Assistant retries the append a bounded number of times, then submits
// synthetic tool outputs to force stuck runs to completion and tries once
// more. Failures that survive this ladder surface to the caller, which
// turns them into an error reply for the chat.
package responder
