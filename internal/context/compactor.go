package ctxengine

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/flemzord/sovereign/internal/provider"
)

// ErrCompactionFailed indicates that compaction could not produce a summary.
var ErrCompactionFailed = errors.New("ctxengine: compaction failed")

const (
	// SummaryInstruction is the synthetic user turn appended to the
	// history when asking the model for a summary.
	SummaryInstruction = "Summarize our conversation so far in one detailed paragraph. Preserve key facts and code snippets."

	// MemoryPrefix labels the assistant turn that replaces a compacted
	// history.
	MemoryPrefix = "MEMORY CONTEXT: "
)

// Summarizer produces a condensed summary of a conversation.
type Summarizer interface {
	Summarize(ctx context.Context, messages []provider.LLMMessage) (string, error)
}

// ProviderSummarizer asks the model itself for the summary. The request
// is a one-off: messages plus SummaryInstruction, never stored anywhere.
type ProviderSummarizer struct {
	Provider    provider.Provider
	Temperature *float64
}

// Summarize implements Summarizer. Transport failures are returned as is.
func (s ProviderSummarizer) Summarize(ctx context.Context, messages []provider.LLMMessage) (string, error) {
	req := make([]provider.LLMMessage, 0, len(messages)+1)
	req = append(req, messages...)
	req = append(req, provider.NewMessage(provider.MessageRoleUser, SummaryInstruction))

	resp, err := s.Provider.Complete(ctx, provider.CompletionRequest{
		Messages:    req,
		Temperature: s.Temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// Compactor folds a whole history into a fixed two-turn footprint.
type Compactor struct {
	summarizer Summarizer
}

// NewCompactor creates a Compactor backed by summarizer.
func NewCompactor(summarizer Summarizer) *Compactor {
	return &Compactor{summarizer: summarizer}
}

// Compact summarizes history and returns the raw summary together with
// the replacement history [system(persona), assistant(MemoryPrefix+summary)].
// history itself is never modified; on error nothing is returned.
func (c *Compactor) Compact(ctx context.Context, persona string, history []provider.LLMMessage) (string, []provider.LLMMessage, error) {
	if c.summarizer == nil {
		return "", nil, fmt.Errorf("%w: no summarizer configured", ErrCompactionFailed)
	}

	summary, err := c.summarizer.Summarize(ctx, slices.Clone(history))
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrCompactionFailed, err)
	}

	return summary, []provider.LLMMessage{
		provider.NewMessage(provider.MessageRoleSystem, persona),
		provider.NewMessage(provider.MessageRoleAssistant, MemoryPrefix+summary),
	}, nil
}
