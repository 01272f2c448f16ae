package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/flemzord/sovereign/internal/provider"
	"github.com/tidwall/gjson"
)

const (
	chatPath = "/api/chat"
	tagsPath = "/api/tags"

	// tunnelSkipHeader makes ngrok skip its browser interstitial, which
	// would otherwise answer API calls with an HTML page.
	tunnelSkipHeader = "ngrok-skip-browser-warning"
)

// maxErrorBodySize caps how much of an error response body is read to prevent memory spikes.
const maxErrorBodySize = 4096

// maxResponseSize caps a successful reply body.
const maxResponseSize = 8 << 20

// Ollama wire types for JSON serialization.

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *chatOptions  `json:"options,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
}

// buildRequest converts a provider.CompletionRequest into a chatRequest.
func buildRequest(model string, req provider.CompletionRequest) chatRequest {
	messages := make([]chatMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = chatMessage{Role: string(m.Role), Content: m.Content}
	}

	out := chatRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
	}
	if req.Temperature != nil {
		out.Options = &chatOptions{Temperature: *req.Temperature}
	}
	return out
}

// parseResponse extracts the reply from a successful body. Only
// message.content is required; usage counters are best-effort.
func parseResponse(body []byte) (provider.CompletionResponse, error) {
	if !gjson.ValidBytes(body) {
		return provider.CompletionResponse{}, malformed(errors.New("body is not valid JSON"))
	}

	content := gjson.GetBytes(body, "message.content")
	if !content.Exists() {
		return provider.CompletionResponse{}, malformed(errors.New("message.content is missing"))
	}
	if content.Type != gjson.String {
		return provider.CompletionResponse{}, malformed(fmt.Errorf("message.content is %s, want string", content.Type))
	}

	fields := gjson.GetManyBytes(body, "prompt_eval_count", "eval_count", "done_reason")
	usage := provider.TokenUsage{
		PromptTokens:     int(fields[0].Int()),
		CompletionTokens: int(fields[1].Int()),
	}
	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens

	return provider.CompletionResponse{
		Content:    content.String(),
		DoneReason: fields[2].String(),
		Usage:      usage,
	}, nil
}

// newRequest builds an HTTP request carrying the fixed header set.
func (p *Provider) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, p.config.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(tunnelSkipHeader, "true")
	for k, v := range p.config.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// doChat executes the POST to the chat endpoint and returns the raw
// success body.
func (p *Provider) doChat(ctx context.Context, body chatRequest) ([]byte, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := p.newRequest(ctx, http.MethodPost, chatPath, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, 0, classifyNetError(err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, handleErrorResponse(resp)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, classifyNetError(err)
	}
	return data, resp.StatusCode, nil
}

// handleErrorResponse maps a non-2xx reply to a server error carrying
// the status and a bounded prefix of the body.
func handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))

	te := &provider.TransportError{Kind: provider.KindServerError, Status: resp.StatusCode}
	if msg := bytes.TrimSpace(body); len(msg) > 0 {
		te.Err = errors.New(string(msg))
	}
	return te
}

// classifyNetError maps a client-side failure to Timeout or Unreachable.
// Caller cancellation counts as a timeout: the wait ended without a reply.
func classifyNetError(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.As(err, &netErr) && netErr.Timeout():
		return &provider.TransportError{Kind: provider.KindTimeout, Err: err}
	default:
		return &provider.TransportError{Kind: provider.KindUnreachable, Err: err}
	}
}

func malformed(err error) error {
	return &provider.TransportError{Kind: provider.KindMalformedResponse, Err: err}
}
