package chat_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tripmate/internal/agent"
	"tripmate/internal/config"
	"tripmate/internal/planguard"
	"tripmate/internal/repositories"
	"tripmate/internal/services"
)

var Module = fx.Provide(
	ProvideRepairLoop,
	ProvideSessionService,
	ProvideGuardrailService,
	ProvideChatService)

type RepairLoopParams struct {
	fx.In

	Runner    agent.Runner
	Agent     *agent.Agent `name:"travel"`
	Validator *planguard.Validator
	Logger    *zap.Logger
}

func ProvideRepairLoop(p RepairLoopParams) *services.RepairLoop {
	return services.NewRepairLoop(p.Runner, p.Agent, p.Validator, p.Logger)
}

func ProvideSessionService(repo repositories.HistoryRepository, logger *zap.Logger) services.SessionServiceInterface {
	return services.NewSessionService(repo, logger)
}

type GuardrailParams struct {
	fx.In

	Config     *config.Config
	Runner     agent.Runner
	Classifier *agent.Agent `name:"classifier"`
	Logs       repositories.GuardrailLogRepository
	Logger     *zap.Logger
}

func ProvideGuardrailService(p GuardrailParams) services.GuardrailServiceInterface {
	return services.NewGuardrailService(p.Config.Guardrails.Enabled, p.Runner, p.Classifier, p.Logs, p.Logger)
}

func ProvideChatService(
	loop *services.RepairLoop,
	guardrails services.GuardrailServiceInterface,
	logger *zap.Logger,
) services.ChatServiceInterface {
	return services.NewChatService(loop, guardrails, logger)
}
