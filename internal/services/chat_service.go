package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tripmate/internal/models/response_models"
	"tripmate/internal/planguard"
	"tripmate/pkg/utils"
)

// TurnReply is everything a front end needs to render one turn.
type TurnReply struct {
	Output      string                            `json:"output"`
	Response    *response_models.TripPlanResponse `json:"response,omitempty"`
	Check       planguard.Check                   `json:"check"`
	State       string                            `json:"state"`
	Attempts    int                               `json:"attempts"`
	Repairs     []planguard.Check                 `json:"repairs,omitempty"`
	Blocked     bool                              `json:"blocked,omitempty"`
	BlockReason string                            `json:"block_reason,omitempty"`
	Filtered    bool                              `json:"filtered,omitempty"`
	Citations   []response_models.Citation        `json:"citations,omitempty"`
	LastAgent   string                            `json:"last_agent,omitempty"`
}

type ChatServiceInterface interface {
	ProcessTurn(ctx context.Context, s *Session, text string, onRepair RepairObserver) (*TurnReply, error)
}

type ChatService struct {
	loop       *RepairLoop
	guardrails GuardrailServiceInterface
	logger     *zap.Logger
}

func NewChatService(loop *RepairLoop, guardrails GuardrailServiceInterface, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{loop: loop, guardrails: guardrails, logger: logger}
}

// ProcessTurn runs one user message through the guardrails and the repair
// loop, updating the session history. If the agent fails part-way, the
// history gathered so far is kept on the session and the error returned.
func (c *ChatService) ProcessTurn(ctx context.Context, s *Session, text string, onRepair RepairObserver) (*TurnReply, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty message", utils.ErrInvalidInput)
	}

	if c.guardrails != nil {
		check, err := c.guardrails.CheckInput(ctx, s.Key, text)
		if err != nil {
			c.logger.Warn("guardrail log write failed", zap.Error(err))
		}
		if check.Blocked {
			reply := &TurnReply{
				Output:  BlockedInputMessage,
				State:   StateAccepted.String(),
				Check:   planguard.Check{OK: true},
				Blocked: true,
			}
			if check.Verdict != nil {
				reply.BlockReason = check.Verdict.Reason
			}
			return reply, nil
		}
	}

	outcome, err := c.loop.Run(ctx, s.Snapshot(), text, onRepair)
	if outcome != nil {
		s.Replace(outcome.History)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrAgentUnavailable, err)
	}

	reply := &TurnReply{
		Output:    outcome.Output,
		Check:     outcome.Check,
		State:     outcome.State.String(),
		Attempts:  outcome.Attempts,
		Repairs:   outcome.Repairs,
		LastAgent: outcome.LastAgent,
	}

	if c.guardrails != nil && c.guardrails.CheckOutput(outcome.Output) {
		c.logger.Warn("output filtered by guardrail", zap.String("session", s.Key))
		reply.Output = FilteredOutputMessage
		reply.Filtered = true
		return reply, nil
	}

	if resp, ok := planguard.Parse(outcome.Output); ok {
		reply.Response = resp
		reply.Citations = resp.CitationList()
	}
	return reply, nil
}
