// Package config loads runtime settings from the environment, an optional
// .env file and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingAPIKey   = errors.New("missing API key")
	ErrUnknownProvider = errors.New("unknown agent provider")
	ErrUnknownBackend  = errors.New("unknown history backend")
	ErrInvalidValue    = errors.New("invalid config value")
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
)

// Keys double as environment variable names once upper-cased.
const (
	KeyAgentProvider      = "agent_provider"
	KeyOpenAIAPIKey       = "openai_api_key"
	KeyOpenAIModel        = "openai_model"
	KeyOpenAIBaseURL      = "openai_base_url"
	KeyGeminiAPIKey       = "gemini_api_key"
	KeyGeminiModel        = "gemini_model"
	KeyAgentMaxTurns      = "agent_max_turns"
	KeyAgentJSONMode      = "agent_json_mode"
	KeyHistoryBackend     = "history_backend"
	KeyHistoryPath        = "history_path"
	KeyPostgresURL        = "postgres_url"
	KeyRedisAddr          = "redis_addr"
	KeyRedisPassword      = "redis_password"
	KeyRedisDB            = "redis_db"
	KeyMongoURI           = "mongo_uri"
	KeyMongoDatabase      = "mongo_database"
	KeyGuardrailsEnabled  = "guardrails_enabled"
	KeyGuardrailLogPath   = "guardrail_log_path"
	KeyGuardrailModel     = "guardrail_model"
	KeyPlanMaxTripDays    = "plan_max_trip_days"
	KeyPlanMaxRepairs     = "plan_max_repairs"
	KeyPort               = "port"
	KeyRateLimitPerSecond = "rate_limit_per_second"
	KeyRateLimitBurst     = "rate_limit_burst"
	KeyLogLevel           = "log_level"
	KeyRawOutput          = "raw_output"
)

type AgentConfig struct {
	Provider       string
	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAIBaseURL  string
	GeminiAPIKey   string
	GeminiModel    string
	MaxTurns       int
	JSONMode       bool
	GuardrailModel string
}

// Model returns the model name for the selected provider.
func (a AgentConfig) Model() string {
	if a.Provider == ProviderGemini {
		return a.GeminiModel
	}
	return a.OpenAIModel
}

// APIKey returns the key for the selected provider.
func (a AgentConfig) APIKey() string {
	if a.Provider == ProviderGemini {
		return a.GeminiAPIKey
	}
	return a.OpenAIAPIKey
}

type HistoryConfig struct {
	Backend       string
	Path          string
	PostgresURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	MongoURI      string
	MongoDatabase string
}

type GuardrailConfig struct {
	Enabled bool
	LogPath string
}

type PlanConfig struct {
	MaxTripDays int
	MaxRepairs  int
}

type ServerConfig struct {
	Port               string
	RateLimitPerSecond float64
	RateLimitBurst     int
}

type Config struct {
	Agent      AgentConfig
	History    HistoryConfig
	Guardrails GuardrailConfig
	Plan       PlanConfig
	Server     ServerConfig
	LogLevel   string
	RawOutput  bool
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyAgentProvider, ProviderOpenAI)
	v.SetDefault(KeyOpenAIModel, "gpt-4.1-mini")
	v.SetDefault(KeyGeminiModel, "gemini-1.5-flash")
	v.SetDefault(KeyAgentMaxTurns, 10)
	v.SetDefault(KeyAgentJSONMode, true)
	v.SetDefault(KeyHistoryBackend, BackendFile)
	v.SetDefault(KeyHistoryPath, "thread.json")
	v.SetDefault(KeyRedisAddr, "localhost:6379")
	v.SetDefault(KeyRedisDB, 0)
	v.SetDefault(KeyMongoDatabase, "tripmate")
	v.SetDefault(KeyGuardrailsEnabled, false)
	v.SetDefault(KeyGuardrailLogPath, "guardrail-log.json")
	v.SetDefault(KeyPlanMaxTripDays, 30)
	v.SetDefault(KeyPlanMaxRepairs, 2)
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyRateLimitPerSecond, 1.0)
	v.SetDefault(KeyRateLimitBurst, 5)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyRawOutput, false)
}

// LoadDotEnv loads the given .env files (".env" when none are named).
// Missing files are skipped; variables already set are not overridden.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the configuration from v, which should already have any
// command-line flags bound, and validates it.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Agent: AgentConfig{
			Provider:       strings.ToLower(strings.TrimSpace(v.GetString(KeyAgentProvider))),
			OpenAIAPIKey:   v.GetString(KeyOpenAIAPIKey),
			OpenAIModel:    v.GetString(KeyOpenAIModel),
			OpenAIBaseURL:  v.GetString(KeyOpenAIBaseURL),
			GeminiAPIKey:   v.GetString(KeyGeminiAPIKey),
			GeminiModel:    v.GetString(KeyGeminiModel),
			MaxTurns:       v.GetInt(KeyAgentMaxTurns),
			JSONMode:       v.GetBool(KeyAgentJSONMode),
			GuardrailModel: v.GetString(KeyGuardrailModel),
		},
		History: HistoryConfig{
			Backend:       strings.ToLower(strings.TrimSpace(v.GetString(KeyHistoryBackend))),
			Path:          v.GetString(KeyHistoryPath),
			PostgresURL:   v.GetString(KeyPostgresURL),
			RedisAddr:     v.GetString(KeyRedisAddr),
			RedisPassword: v.GetString(KeyRedisPassword),
			RedisDB:       v.GetInt(KeyRedisDB),
			MongoURI:      v.GetString(KeyMongoURI),
			MongoDatabase: v.GetString(KeyMongoDatabase),
		},
		Guardrails: GuardrailConfig{
			Enabled: v.GetBool(KeyGuardrailsEnabled),
			LogPath: v.GetString(KeyGuardrailLogPath),
		},
		Plan: PlanConfig{
			MaxTripDays: v.GetInt(KeyPlanMaxTripDays),
			MaxRepairs:  v.GetInt(KeyPlanMaxRepairs),
		},
		Server: ServerConfig{
			Port:               v.GetString(KeyPort),
			RateLimitPerSecond: v.GetFloat64(KeyRateLimitPerSecond),
			RateLimitBurst:     v.GetInt(KeyRateLimitBurst),
		},
		LogLevel:  v.GetString(KeyLogLevel),
		RawOutput: v.GetBool(KeyRawOutput),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Agent.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("%w: %q (use %q or %q)", ErrUnknownProvider, c.Agent.Provider, ProviderOpenAI, ProviderGemini)
	}
	if c.Agent.APIKey() == "" {
		return fmt.Errorf("%w: %s_API_KEY is required for provider %s",
			ErrMissingAPIKey, strings.ToUpper(c.Agent.Provider), c.Agent.Provider)
	}

	switch c.History.Backend {
	case BackendFile:
		if c.History.Path == "" {
			return fmt.Errorf("%w: HISTORY_PATH is empty", ErrInvalidValue)
		}
	case BackendPostgres:
		if c.History.PostgresURL == "" {
			return fmt.Errorf("%w: POSTGRES_URL is required for the postgres backend", ErrInvalidValue)
		}
	case BackendRedis:
		if c.History.RedisAddr == "" {
			return fmt.Errorf("%w: REDIS_ADDR is required for the redis backend", ErrInvalidValue)
		}
	case BackendMongo:
		if c.History.MongoURI == "" {
			return fmt.Errorf("%w: MONGO_URI is required for the mongo backend", ErrInvalidValue)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.History.Backend)
	}

	if c.Plan.MaxTripDays < 1 {
		return fmt.Errorf("%w: PLAN_MAX_TRIP_DAYS must be positive", ErrInvalidValue)
	}
	if c.Plan.MaxRepairs < 0 {
		return fmt.Errorf("%w: PLAN_MAX_REPAIRS must not be negative", ErrInvalidValue)
	}
	if c.Agent.MaxTurns < 1 {
		return fmt.Errorf("%w: AGENT_MAX_TURNS must be positive", ErrInvalidValue)
	}
	if c.Server.RateLimitPerSecond <= 0 || c.Server.RateLimitBurst < 1 {
		return fmt.Errorf("%w: rate limit must be positive", ErrInvalidValue)
	}
	return nil
}
