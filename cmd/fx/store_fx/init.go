package store_fx

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"tripmate/internal/config"
	"tripmate/internal/infra"
	"tripmate/internal/repositories"
)

const connectTimeout = 10 * time.Second

var Module = fx.Provide(
	ProvideHistoryRepository,
	ProvideGuardrailLogRepository)

// ProvideHistoryRepository opens the configured history backend and
// registers its shutdown.
func ProvideHistoryRepository(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (repositories.HistoryRepository, error) {
	h := cfg.History
	logger.Info("initializing history store", zap.String("backend", h.Backend))

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	switch h.Backend {
	case config.BackendFile:
		return repositories.NewFileHistoryRepository(h.Path), nil

	case config.BackendPostgres:
		db, err := infra.InitPostgresql(h.PostgresURL, logger)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				infra.ClosePostgresql(db, logger)
				return nil
			},
		})
		return repositories.NewPostgresHistoryRepository(db), nil

	case config.BackendRedis:
		client, err := infra.InitRedis(ctx, infra.RedisOptions{
			Addr:     h.RedisAddr,
			Password: h.RedisPassword,
			DB:       h.RedisDB,
		}, logger)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				infra.CloseRedis(client, logger)
				return nil
			},
		})
		return repositories.NewRedisHistoryRepository(client, 0), nil

	case config.BackendMongo:
		client, err := infra.InitMongo(ctx, h.MongoURI, logger)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				infra.CloseMongo(ctx, client, logger)
				return nil
			},
		})
		return repositories.NewMongoHistoryRepository(client.Database(h.MongoDatabase)), nil

	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnknownBackend, h.Backend)
	}
}

func ProvideGuardrailLogRepository(cfg *config.Config) repositories.GuardrailLogRepository {
	return repositories.NewFileGuardrailLogRepository(cfg.Guardrails.LogPath)
}
