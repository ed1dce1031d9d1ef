// ABOUTME: OpenAI Assistants implementation of the Provider interface.
// ABOUTME: Maps thread-busy rejections to ErrThreadBusy and polls runs to completion.

package responder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// threadBusyMarker appears in the provider's 400 response when a message is
// appended while a run is active on the thread.
const threadBusyMarker = "Can't add messages to"

// forcedToolOutput is the synthetic output submitted to unblock a run stuck
// waiting on tool results.
const forcedToolOutput = `{"result": "success"}`

// OpenAIProvider drives the OpenAI Assistants API.
type OpenAIProvider struct {
	client       *openai.Client
	assistantID  string
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewOpenAIProvider creates a provider for the given API key and assistant.
func NewOpenAIProvider(apiKey, assistantID string, logger *slog.Logger) *OpenAIProvider {
	return &OpenAIProvider{
		client:       openai.NewClient(apiKey),
		assistantID:  assistantID,
		pollInterval: time.Second,
		logger:       logger.With("component", "openai"),
	}
}

// CreateThread starts a provider thread seeded with the first user message.
func (p *OpenAIProvider) CreateThread(ctx context.Context, seed string) (string, error) {
	thread, err := p.client.CreateThread(ctx, openai.ThreadRequest{
		Messages: []openai.ThreadMessage{
			{
				Role:    openai.ThreadMessageRoleUser,
				Content: seed,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("creating thread: %w", err)
	}

	return thread.ID, nil
}

// AppendMessage adds a user message to the thread. A rejection caused by an
// active run is returned as ErrThreadBusy.
func (p *OpenAIProvider) AppendMessage(ctx context.Context, threadID, text string) error {
	_, err := p.client.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    "user",
		Content: text,
	})
	if err != nil {
		if isThreadBusy(err) {
			return fmt.Errorf("%w: %s", ErrThreadBusy, err)
		}
		return fmt.Errorf("appending message: %w", err)
	}

	return nil
}

// Run executes the assistant against the thread and returns the reply text.
func (p *OpenAIProvider) Run(ctx context.Context, threadID string) (string, error) {
	run, err := p.client.CreateRun(ctx, threadID, openai.RunRequest{
		AssistantID: p.assistantID,
		ToolChoice:  map[string]string{"type": "file_search"},
	})
	if err != nil {
		return "", fmt.Errorf("creating run: %w", err)
	}

	run, err = p.awaitRun(ctx, threadID, run.ID)
	if err != nil {
		return "", err
	}
	if run.Status != openai.RunStatusCompleted {
		if run.LastError != nil {
			return "", fmt.Errorf("run %s ended with status %s: %s", run.ID, run.Status, run.LastError.Message)
		}
		return "", fmt.Errorf("run %s ended with status %s", run.ID, run.Status)
	}

	return p.replyText(ctx, threadID, run.ID)
}

// awaitRun polls the run until it reaches a terminal status.
func (p *OpenAIProvider) awaitRun(ctx context.Context, threadID, runID string) (openai.Run, error) {
	for {
		run, err := p.client.RetrieveRun(ctx, threadID, runID)
		if err != nil {
			return openai.Run{}, fmt.Errorf("polling run: %w", err)
		}

		switch run.Status {
		case openai.RunStatusCompleted,
			openai.RunStatusFailed,
			openai.RunStatusCancelled,
			openai.RunStatusIncomplete,
			openai.RunStatusExpired:
			return run, nil
		}

		select {
		case <-ctx.Done():
			return openai.Run{}, ctx.Err()
		case <-time.After(p.pollInterval):
		}
	}
}

// replyText returns the assistant's answer from the run's messages.
func (p *OpenAIProvider) replyText(ctx context.Context, threadID, runID string) (string, error) {
	list, err := p.client.ListMessage(ctx, threadID, nil, nil, nil, nil, &runID)
	if err != nil {
		return "", fmt.Errorf("listing run messages: %w", err)
	}

	// Messages arrive newest first; the first text part is the reply.
	for _, msg := range list.Messages {
		for _, part := range msg.Content {
			if part.Text != nil {
				return part.Text.Value, nil
			}
		}
	}

	return "", nil
}

// ForceComplete unblocks runs stuck waiting on tool outputs by submitting a
// synthetic success result, then waits until no run is active on the thread.
func (p *OpenAIProvider) ForceComplete(ctx context.Context, threadID string) error {
	runs, err := p.client.ListRuns(ctx, threadID, openai.Pagination{})
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	for _, run := range runs.Runs {
		if run.Status != openai.RunStatusRequiresAction {
			continue
		}
		if run.RequiredAction == nil || run.RequiredAction.SubmitToolOutputs == nil {
			continue
		}

		calls := run.RequiredAction.SubmitToolOutputs.ToolCalls
		outputs := make([]openai.ToolOutput, 0, len(calls))
		for _, call := range calls {
			outputs = append(outputs, openai.ToolOutput{
				ToolCallID: call.ID,
				Output:     forcedToolOutput,
			})
		}

		if _, err := p.client.SubmitToolOutputs(ctx, threadID, run.ID, openai.SubmitToolOutputsRequest{
			ToolOutputs: outputs,
		}); err != nil {
			return fmt.Errorf("force-completing run %s: %w", run.ID, err)
		}

		p.logger.Info("force-completed stuck run", "thread_id", threadID, "run_id", run.ID)
	}

	return p.awaitSettled(ctx, threadID)
}

// awaitSettled blocks until every run on the thread reached a terminal status.
func (p *OpenAIProvider) awaitSettled(ctx context.Context, threadID string) error {
	for {
		runs, err := p.client.ListRuns(ctx, threadID, openai.Pagination{})
		if err != nil {
			return fmt.Errorf("listing runs: %w", err)
		}

		if !anyRunActive(runs.Runs) {
			return nil
		}

		p.logger.Info("waiting for outstanding runs to finish", "thread_id", threadID)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.pollInterval):
		}
	}
}

// anyRunActive reports whether any run still occupies the thread.
func anyRunActive(runs []openai.Run) bool {
	for _, run := range runs {
		switch run.Status {
		case openai.RunStatusQueued,
			openai.RunStatusInProgress,
			openai.RunStatusRequiresAction,
			openai.RunStatusCancelling:
			return true
		}
	}
	return false
}

// isThreadBusy reports whether err is the provider's active-run rejection.
func isThreadBusy(err error) bool {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.HTTPStatusCode == http.StatusBadRequest &&
		strings.Contains(apiErr.Message, threadBusyMarker)
}

var _ Provider = (*OpenAIProvider)(nil)
