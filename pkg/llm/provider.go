// Package llm abstracts the language-understanding service behind a small
// chat interface so the agent core can be exercised with a substitute
// provider in tests.
package llm

import (
	"context"
)

// Message represents a single turn in the conversation.
type Message struct {
	Role       string     `json:"role"` // system, user, assistant, tool
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"` // for tool result messages
}

// ToolDef declares a tool the model may invoke.
type ToolDef struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// ToolCall is a structured invocation request returned by the model.
type ToolCall struct {
	ID   string                 `json:"id"`
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args"`
}

// ChatRequest carries the conversation and tool schema for one model call.
type ChatRequest struct {
	Messages  []Message `json:"messages"`
	Tools     []ToolDef `json:"tools,omitempty"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

// ChatResponse is the model's reply: final text, tool calls, or both.
type ChatResponse struct {
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	StopReason string     `json:"stop_reason"`
}

// Provider is the interface for language-understanding services.
type Provider interface {
	// Chat sends a chat request and returns the response.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// --- Mock Provider for Testing ---

// MockProvider is a scriptable Provider for tests. Responses are consumed
// in order; the last one repeats once the script runs out.
type MockProvider struct {
	responses []*ChatResponse
	err       error
	requests  []ChatRequest

	// ChatFunc can be overridden for custom behavior.
	ChatFunc func(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// NewMockProvider creates a new mock provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// QueueResponse appends a scripted response.
func (p *MockProvider) QueueResponse(resp *ChatResponse) {
	p.responses = append(p.responses, resp)
}

// QueueText appends a scripted final-text response.
func (p *MockProvider) QueueText(content string) {
	p.QueueResponse(&ChatResponse{Content: content, StopReason: "end_turn"})
}

// QueueToolCalls appends a scripted tool-use response.
func (p *MockProvider) QueueToolCalls(calls ...ToolCall) {
	p.QueueResponse(&ChatResponse{ToolCalls: calls, StopReason: "tool_use"})
}

// SetError makes every Chat call fail.
func (p *MockProvider) SetError(err error) {
	p.err = err
}

// CallCount returns the number of Chat calls made.
func (p *MockProvider) CallCount() int {
	return len(p.requests)
}

// LastRequest returns the most recent request, or nil.
func (p *MockProvider) LastRequest() *ChatRequest {
	if len(p.requests) == 0 {
		return nil
	}
	return &p.requests[len(p.requests)-1]
}

// Chat implements the Provider interface.
func (p *MockProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	p.requests = append(p.requests, req)

	if p.ChatFunc != nil {
		return p.ChatFunc(ctx, req)
	}
	if p.err != nil {
		return nil, p.err
	}
	if len(p.responses) == 0 {
		return &ChatResponse{StopReason: "end_turn"}, nil
	}

	idx := len(p.requests) - 1
	if idx >= len(p.responses) {
		idx = len(p.responses) - 1
	}
	return p.responses[idx], nil
}
