// Package agent runs a conversation against a chat model, executing any
// tool calls the model makes until it produces a final message.
package agent

import (
	"context"
	"errors"
	"strings"

	"tripmate/internal/tools"
)

var (
	ErrEmptyCompletion  = errors.New("model returned no choices")
	ErrMaxTurnsExceeded = errors.New("max turns exceeded")
	ErrUnknownTool      = tools.ErrUnknownTool
)

const DefaultMaxTurns = 10

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Item is one entry of a conversation transcript. It is stored as-is.
type Item struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

func UserMessage(text string) Item {
	return Item{Role: RoleUser, Content: text}
}

func AssistantMessage(text string) Item {
	return Item{Role: RoleAssistant, Content: text}
}

// Agent describes who the model is and what it may call.
type Agent struct {
	Name         string
	Instructions string
	Model        string
	Tools        *tools.Registry
	MaxTurns     int
	// JSONOutput asks the provider to constrain the reply to a JSON object.
	JSONOutput bool
}

func (a *Agent) maxTurns() int {
	if a.MaxTurns <= 0 {
		return DefaultMaxTurns
	}
	return a.MaxTurns
}

type RunResult struct {
	// History is the input plus every item produced during the run.
	History     []Item
	FinalOutput string
	NewItems    []Item
	LastAgent   string
}

// Runner executes one agent run over a transcript.
type Runner interface {
	Run(ctx context.Context, a *Agent, input []Item) (*RunResult, error)
}

// ExtractAllText joins the text of every assistant item.
func ExtractAllText(items []Item) string {
	var parts []string
	for _, it := range items {
		if it.Role == RoleAssistant && it.Content != "" {
			parts = append(parts, it.Content)
		}
	}
	return strings.Join(parts, "\n")
}

// Output returns the final output, falling back to the text of new items.
func (r *RunResult) Output() string {
	if r == nil {
		return ""
	}
	if r.FinalOutput != "" {
		return r.FinalOutput
	}
	return ExtractAllText(r.NewItems)
}

func newResult(a *Agent, input []Item) *RunResult {
	history := make([]Item, len(input), len(input)+4)
	copy(history, input)
	return &RunResult{History: history, LastAgent: a.Name}
}

func (r *RunResult) append(items ...Item) {
	r.History = append(r.History, items...)
	r.NewItems = append(r.NewItems, items...)
}
