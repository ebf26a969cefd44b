package agent

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"tripmate/internal/tools"
)

func NewOpenAIClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// OpenAIRunner drives the chat completions API with function calling.
type OpenAIRunner struct {
	client *openai.Client
	logger *zap.Logger
}

func NewOpenAIRunner(client *openai.Client, logger *zap.Logger) *OpenAIRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAIRunner{client: client, logger: logger}
}

func (r *OpenAIRunner) Run(ctx context.Context, a *Agent, input []Item) (*RunResult, error) {
	result := newResult(a, input)
	toolDefs := openAITools(a.Tools)

	for turn := 1; turn <= a.maxTurns(); turn++ {
		req := openai.ChatCompletionRequest{
			Model:    a.Model,
			Messages: openAIMessages(a.Instructions, result.History),
			Tools:    toolDefs,
		}
		if a.JSONOutput {
			req.ResponseFormat = &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			}
		}

		resp, err := r.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return result, fmt.Errorf("openai: chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return result, ErrEmptyCompletion
		}

		msg := resp.Choices[0].Message
		item := Item{Role: RoleAssistant, Content: msg.Content}
		for _, tc := range msg.ToolCalls {
			item.ToolCalls = append(item.ToolCalls, ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
		result.append(item)

		r.logger.Debug("openai turn",
			zap.String("agent", a.Name),
			zap.String("model", a.Model),
			zap.Int("turn", turn),
			zap.Int("tool_calls", len(item.ToolCalls)))

		if len(item.ToolCalls) == 0 {
			result.FinalOutput = msg.Content
			return result, nil
		}
		result.append(runToolCalls(ctx, r.logger, a.Tools, item.ToolCalls)...)
	}

	return result, fmt.Errorf("%w (%d)", ErrMaxTurnsExceeded, a.maxTurns())
}

// runToolCalls executes each call and returns one tool item per call.
func runToolCalls(ctx context.Context, logger *zap.Logger, reg *tools.Registry, calls []ToolCall) []Item {
	items := make([]Item, 0, len(calls))
	for _, call := range calls {
		out, err := reg.Call(ctx, call.Name, call.Arguments)
		if err != nil {
			logger.Warn("tool call failed", zap.String("tool", call.Name), zap.Error(err))
		}
		items = append(items, Item{
			Role:       RoleTool,
			Content:    out,
			ToolCallID: call.ID,
			Name:       call.Name,
		})
	}
	return items
}

func openAITools(reg *tools.Registry) []openai.Tool {
	var defs []openai.Tool
	for _, t := range reg.All() {
		defs = append(defs, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  tools.JSONSchema(t),
			},
		})
	}
	return defs
}

func openAIMessages(instructions string, items []Item) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(items)+1)
	if instructions != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: instructions,
		})
	}
	for _, it := range items {
		msg := openai.ChatCompletionMessage{
			Role:       string(it.Role),
			Content:    it.Content,
			ToolCallID: it.ToolCallID,
		}
		if it.Role == RoleTool {
			msg.Name = it.Name
		}
		for _, tc := range it.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		msgs = append(msgs, msg)
	}
	return msgs
}
