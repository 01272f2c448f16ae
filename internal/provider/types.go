package provider

// MessageRole identifies the sender of a message in a conversation.
type MessageRole string

// MessageRole constants for conversation messages.
const (
	MessageRoleSystem    MessageRole = "system"
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// Valid reports whether r is one of the roles the chat endpoint accepts.
func (r MessageRole) Valid() bool {
	switch r {
	case MessageRoleSystem, MessageRoleUser, MessageRoleAssistant:
		return true
	default:
		return false
	}
}

// LLMMessage is a single turn in a conversation. Values are treated as
// immutable once appended to a history.
type LLMMessage struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// NewMessage returns an LLMMessage with the given role and content.
func NewMessage(role MessageRole, content string) LLMMessage {
	return LLMMessage{Role: role, Content: content}
}

// CompletionRequest is the input to a Provider.Complete call.
type CompletionRequest struct {
	// Messages is the full ordered history, system turn included.
	Messages []LLMMessage `json:"messages"`

	// Temperature is forwarded unclamped. Nil means the provider default.
	Temperature *float64 `json:"temperature,omitempty"`
}

// CompletionResponse is the output of a Provider.Complete call.
type CompletionResponse struct {
	Content    string     `json:"content"`
	DoneReason string     `json:"done_reason,omitempty"`
	Usage      TokenUsage `json:"usage"`
}

// TokenUsage tracks token consumption for a completion when the server
// reports it.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Float64 returns a pointer to v. Handy for CompletionRequest.Temperature.
func Float64(v float64) *float64 {
	return &v
}
