package services

import (
	"context"
	"encoding/json"
	"regexp"
	"time"

	"go.uber.org/zap"

	"tripmate/internal/agent"
	"tripmate/internal/models/response_models"
	"tripmate/internal/planguard"
	"tripmate/internal/repositories"
)

const (
	BlockedInputMessage   = "I can help with travel topics such as flights, hotels, cars, trip planning, or travel policies."
	FilteredOutputMessage = "Response filtered by output guardrail: the assistant attempted to share sensitive information."
	recentBlocksShown     = 3
)

var sensitiveOutput = regexp.MustCompile(`(?i)system prompt|api key|secret|password`)

type InputCheck struct {
	Blocked bool
	Verdict *response_models.SafetyVerdict
}

type GuardrailServiceInterface interface {
	CheckInput(ctx context.Context, sessionKey, text string) (InputCheck, error)
	CheckOutput(output string) bool
	Stats(ctx context.Context) (*response_models.GuardrailStats, error)
	ClearLog(ctx context.Context) error
}

// GuardrailService screens user input with a classifier agent and final
// output with a pattern match. Input screening is optional.
type GuardrailService struct {
	enabled    bool
	runner     agent.Runner
	classifier *agent.Agent
	logs       repositories.GuardrailLogRepository
	logger     *zap.Logger
	now        func() time.Time
}

func NewGuardrailService(
	enabled bool,
	runner agent.Runner,
	classifier *agent.Agent,
	logs repositories.GuardrailLogRepository,
	logger *zap.Logger,
) *GuardrailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GuardrailService{
		enabled:    enabled,
		runner:     runner,
		classifier: classifier,
		logs:       logs,
		logger:     logger,
		now:        time.Now,
	}
}

// CheckInput classifies text. A classifier that fails or answers with
// something other than a verdict lets the message through.
func (g *GuardrailService) CheckInput(ctx context.Context, sessionKey, text string) (InputCheck, error) {
	if !g.enabled {
		return InputCheck{}, nil
	}

	res, err := g.runner.Run(ctx, g.classifier, []agent.Item{agent.UserMessage(text)})
	if err != nil {
		g.logger.Warn("input guardrail unavailable, allowing message", zap.Error(err))
		return InputCheck{}, nil
	}
	verdict, ok := parseVerdict(res.Output())
	if !ok {
		g.logger.Warn("input guardrail returned no verdict, allowing message",
			zap.String("output", res.Output()))
		return InputCheck{}, nil
	}

	check := InputCheck{Blocked: verdict.Blocks(), Verdict: verdict}
	verdict.TripwireTriggered = check.Blocked
	if check.Blocked {
		g.logger.Info("input blocked by guardrail",
			zap.String("category", verdict.Category),
			zap.String("severity", verdict.Severity),
			zap.String("reason", verdict.Reason))
	}

	entry := response_models.GuardrailLogEntry{
		Timestamp:  g.now().UTC().Format(time.RFC3339),
		SessionKey: sessionKey,
		Input:      text,
		Validation: *verdict,
	}
	if g.logs != nil {
		if err := g.logs.Append(ctx, entry); err != nil {
			return check, err
		}
	}
	return check, nil
}

// CheckOutput reports whether output looks like it leaks sensitive data.
func (g *GuardrailService) CheckOutput(output string) bool {
	return sensitiveOutput.MatchString(output)
}

func (g *GuardrailService) Stats(ctx context.Context) (*response_models.GuardrailStats, error) {
	stats := &response_models.GuardrailStats{}
	if g.logs == nil {
		return stats, nil
	}
	entries, err := g.logs.List(ctx)
	if err != nil {
		return nil, err
	}

	var blocks []response_models.GuardrailLogEntry
	for _, e := range entries {
		if e.Validation.Severity == response_models.SeverityBlock || e.Validation.TripwireTriggered {
			blocks = append(blocks, e)
		}
	}
	stats.Total = len(entries)
	stats.Blocked = len(blocks)
	stats.Passed = stats.Total - stats.Blocked
	if len(blocks) > recentBlocksShown {
		blocks = blocks[len(blocks)-recentBlocksShown:]
	}
	stats.RecentBlocks = blocks
	return stats, nil
}

func (g *GuardrailService) ClearLog(ctx context.Context) error {
	if g.logs == nil {
		return nil
	}
	return g.logs.Clear(ctx)
}

func parseVerdict(output string) (*response_models.SafetyVerdict, bool) {
	candidate, ok := planguard.ExtractFirstJSON(output)
	if !ok {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		return nil, false
	}
	for _, required := range []string{"isValid", "category", "severity"} {
		if _, present := fields[required]; !present {
			return nil, false
		}
	}
	var verdict response_models.SafetyVerdict
	if err := json.Unmarshal([]byte(candidate), &verdict); err != nil {
		return nil, false
	}
	return &verdict, true
}
