package services

import (
	"context"

	"go.uber.org/zap"

	"tripmate/internal/agent"
	"tripmate/internal/planguard"
)

// LoopState is the position of a turn in the validate/repair cycle.
type LoopState int

const (
	StatePending LoopState = iota
	StateValidating
	StateAccepted
	StateRepairing
	StateExhausted
)

func (s LoopState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateValidating:
		return "validating"
	case StateAccepted:
		return "accepted"
	case StateRepairing:
		return "repairing"
	case StateExhausted:
		return "exhausted"
	}
	return "unknown"
}

// RepairObserver is told about every repair before it is requested.
type RepairObserver func(check planguard.Check)

// LoopOutcome is what a turn produced. History always reflects every item
// exchanged, including failed attempts and repair instructions.
type LoopOutcome struct {
	State     LoopState
	Output    string
	Check     planguard.Check
	History   []agent.Item
	Attempts  int
	Repairs   []planguard.Check
	LastAgent string
}

type RepairLoop struct {
	runner    agent.Runner
	agent     *agent.Agent
	validator *planguard.Validator
	logger    *zap.Logger
}

func NewRepairLoop(runner agent.Runner, a *agent.Agent, validator *planguard.Validator, logger *zap.Logger) *RepairLoop {
	if validator == nil {
		validator = planguard.NewValidator(planguard.DefaultPolicy())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RepairLoop{runner: runner, agent: a, validator: validator, logger: logger}
}

// Run sends userText after history and validates the reply, asking the agent
// to repair it up to MaxRepairs times. On an agent error the outcome so far
// is returned along with the error.
func (l *RepairLoop) Run(ctx context.Context, history []agent.Item, userText string, onRepair RepairObserver) (*LoopOutcome, error) {
	input := make([]agent.Item, 0, len(history)+1)
	input = append(input, history...)
	input = append(input, agent.UserMessage(userText))

	out := &LoopOutcome{State: StatePending, History: input}
	maxRepairs := l.validator.Policy().MaxRepairs

	for {
		res, err := l.runner.Run(ctx, l.agent, out.History)
		if res != nil {
			out.History = res.History
			out.LastAgent = res.LastAgent
		}
		if err != nil {
			l.logger.Warn("agent run failed",
				zap.String("state", out.State.String()),
				zap.Int("attempt", out.Attempts+1),
				zap.Error(err))
			return out, err
		}

		out.Output = bestOutput(res.Output())
		out.State = StateValidating
		out.Attempts++
		out.Check = l.validator.NeedsRepair(out.Output)

		if out.Check.OK {
			out.State = StateAccepted
			l.logger.Debug("response accepted", zap.Int("attempts", out.Attempts))
			return out, nil
		}
		if len(out.Repairs) >= maxRepairs {
			out.State = StateExhausted
			l.logger.Warn("repair attempts exhausted",
				zap.String("reason", string(out.Check.Reason)),
				zap.Int("attempts", out.Attempts))
			return out, nil
		}

		out.State = StateRepairing
		out.Repairs = append(out.Repairs, out.Check)
		l.logger.Info("auto-repair",
			zap.String("reason", string(out.Check.Reason)),
			zap.Int("target_days", out.Check.TargetDays),
			zap.Int("repair", len(out.Repairs)))
		if onRepair != nil {
			onRepair(out.Check)
		}
		instruction := planguard.RepairInstruction(out.Check.Reason, out.Check.TargetDays)
		out.History = append(out.History, agent.UserMessage(instruction))
	}
}

// bestOutput prefers the embedded JSON object over the raw reply.
func bestOutput(raw string) string {
	if candidate, ok := planguard.ExtractFirstJSON(raw); ok {
		return candidate
	}
	return raw
}
