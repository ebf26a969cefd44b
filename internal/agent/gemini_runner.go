package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"tripmate/internal/tools"
)

const (
	geminiRoleUser  = "user"
	geminiRoleModel = "model"
)

func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

// GeminiRunner drives a Gemini chat session with function calling.
type GeminiRunner struct {
	client *genai.Client
	logger *zap.Logger
}

func NewGeminiRunner(client *genai.Client, logger *zap.Logger) *GeminiRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiRunner{client: client, logger: logger}
}

func (r *GeminiRunner) Run(ctx context.Context, a *Agent, input []Item) (*RunResult, error) {
	result := newResult(a, input)

	model := r.client.GenerativeModel(a.Model)
	model.SetTemperature(0.2)
	if a.Instructions != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(a.Instructions)}}
	}
	if decls := geminiDeclarations(a.Tools); len(decls) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	} else if a.JSONOutput {
		// JSON mode cannot be combined with function calling.
		model.ResponseMIMEType = "application/json"
	}

	for turn := 1; turn <= a.maxTurns(); turn++ {
		contents := geminiContents(result.History)
		if len(contents) == 0 {
			return result, fmt.Errorf("gemini: empty conversation")
		}
		last := contents[len(contents)-1]

		cs := model.StartChat()
		cs.History = contents[:len(contents)-1]
		resp, err := cs.SendMessage(ctx, last.Parts...)
		if err != nil {
			return result, fmt.Errorf("gemini: send message: %w", err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return result, ErrEmptyCompletion
		}

		item := itemFromGemini(resp.Candidates[0].Content.Parts)
		result.append(item)

		r.logger.Debug("gemini turn",
			zap.String("agent", a.Name),
			zap.String("model", a.Model),
			zap.Int("turn", turn),
			zap.Int("tool_calls", len(item.ToolCalls)))

		if len(item.ToolCalls) == 0 {
			result.FinalOutput = item.Content
			return result, nil
		}
		result.append(runToolCalls(ctx, r.logger, a.Tools, item.ToolCalls)...)
	}

	return result, fmt.Errorf("%w (%d)", ErrMaxTurnsExceeded, a.maxTurns())
}

func geminiDeclarations(reg *tools.Registry) []*genai.FunctionDeclaration {
	var decls []*genai.FunctionDeclaration
	for _, t := range reg.All() {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  geminiSchema(t.Params()),
		})
	}
	return decls
}

func geminiSchema(params []tools.Param) *genai.Schema {
	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(params)),
	}
	for _, p := range params {
		prop := &genai.Schema{
			Type:        genai.TypeString,
			Description: p.Description,
			Nullable:    p.Nullable,
		}
		if p.Type == tools.TypeInteger {
			prop.Type = genai.TypeInteger
		}
		schema.Properties[p.Name] = prop
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}
	return schema
}

// geminiContents maps the transcript onto Gemini's user/model turns. Tool
// results following one model turn are grouped into a single user turn.
func geminiContents(items []Item) []*genai.Content {
	var contents []*genai.Content
	for _, it := range items {
		switch it.Role {
		case RoleAssistant:
			c := &genai.Content{Role: geminiRoleModel}
			if it.Content != "" {
				c.Parts = append(c.Parts, genai.Text(it.Content))
			}
			for _, tc := range it.ToolCalls {
				c.Parts = append(c.Parts, genai.FunctionCall{Name: tc.Name, Args: decodeObject(tc.Arguments)})
			}
			if len(c.Parts) == 0 {
				c.Parts = append(c.Parts, genai.Text(""))
			}
			contents = append(contents, c)
		case RoleTool:
			part := genai.FunctionResponse{Name: it.Name, Response: decodeObject(it.Content)}
			if n := len(contents); n > 0 && contents[n-1].Role == geminiRoleUser && isFunctionResponse(contents[n-1]) {
				contents[n-1].Parts = append(contents[n-1].Parts, part)
				continue
			}
			contents = append(contents, &genai.Content{Role: geminiRoleUser, Parts: []genai.Part{part}})
		default:
			contents = append(contents, &genai.Content{Role: geminiRoleUser, Parts: []genai.Part{genai.Text(it.Content)}})
		}
	}
	return contents
}

func isFunctionResponse(c *genai.Content) bool {
	for _, p := range c.Parts {
		if _, ok := p.(genai.FunctionResponse); !ok {
			return false
		}
	}
	return len(c.Parts) > 0
}

func itemFromGemini(parts []genai.Part) Item {
	item := Item{Role: RoleAssistant}
	var text []string
	for _, p := range parts {
		switch v := p.(type) {
		case genai.Text:
			text = append(text, string(v))
		case genai.FunctionCall:
			args, _ := json.Marshal(v.Args)
			item.ToolCalls = append(item.ToolCalls, ToolCall{
				ID:        "call_" + uuid.NewString(),
				Name:      v.Name,
				Arguments: string(args),
			})
		}
	}
	item.Content = strings.Join(text, "")
	return item
}

// decodeObject parses a JSON object, wrapping anything else under "result".
func decodeObject(s string) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err == nil && obj != nil {
		return obj
	}
	if s == "" {
		return map[string]any{}
	}
	return map[string]any{"result": s}
}
