package agent_fx

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"tripmate/internal/agent"
	"tripmate/internal/config"
	"tripmate/internal/planguard"
	"tripmate/internal/prompts"
	"tripmate/internal/tools"
)

var Module = fx.Provide(
	ProvideRunner,
	ProvideAgents,
	ProvideValidator)

type Agents struct {
	fx.Out

	Travel     *agent.Agent `name:"travel"`
	Classifier *agent.Agent `name:"classifier"`
}

// ProvideRunner connects to the configured model provider.
func ProvideRunner(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (agent.Runner, error) {
	logger.Info("initializing agent runner",
		zap.String("provider", cfg.Agent.Provider),
		zap.String("model", cfg.Agent.Model()))

	switch cfg.Agent.Provider {
	case config.ProviderOpenAI:
		client := agent.NewOpenAIClient(cfg.Agent.OpenAIAPIKey, cfg.Agent.OpenAIBaseURL)
		return agent.NewOpenAIRunner(client, logger), nil
	case config.ProviderGemini:
		client, err := agent.NewGeminiClient(context.Background(), cfg.Agent.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return client.Close()
			},
		})
		return agent.NewGeminiRunner(client, logger), nil
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnknownProvider, cfg.Agent.Provider)
	}
}

func ProvideAgents(cfg *config.Config) Agents {
	classifierModel := cfg.Agent.GuardrailModel
	if classifierModel == "" {
		classifierModel = cfg.Agent.Model()
	}

	return Agents{
		Travel: &agent.Agent{
			Name:         "Travel Assistant",
			Instructions: prompts.TravelInstructions(time.Now()),
			Model:        cfg.Agent.Model(),
			Tools:        tools.DefaultRegistry(),
			MaxTurns:     cfg.Agent.MaxTurns,
			JSONOutput:   cfg.Agent.JSONMode,
		},
		Classifier: &agent.Agent{
			Name:         "Safety Validator",
			Instructions: prompts.SafetyInstructions,
			Model:        classifierModel,
			MaxTurns:     1,
			JSONOutput:   true,
		},
	}
}

func ProvideValidator(cfg *config.Config) *planguard.Validator {
	return planguard.NewValidator(planguard.Policy{
		MaxTripDays: cfg.Plan.MaxTripDays,
		MaxRepairs:  cfg.Plan.MaxRepairs,
	})
}
