package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tripmate/cmd/fx/agent_fx"
	"tripmate/cmd/fx/chat_fx"
	"tripmate/cmd/fx/cli_fx"
	"tripmate/cmd/fx/config_fx"
	"tripmate/cmd/fx/controllers_fx"
	"tripmate/cmd/fx/logger_fx"
	"tripmate/cmd/fx/memcache_fx"
	"tripmate/cmd/fx/store_fx"
	"tripmate/internal/api/controllers"
	"tripmate/internal/config"
	"tripmate/pkg/middleware"
)

var (
	v       = viper.New()
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "tripmate",
	Short: "Travel assistant that plans trips, flights, hotels and cars",
	Long: `tripmate is a conversational travel assistant. Replies are structured
JSON plans that are validated and, when they break the output contract,
automatically repaired before being shown.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return chatCmd.RunE(cmd, args)
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(
			coreModules(),
			cli_fx.Module,
		)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(
			coreModules(),
			memcache_fx.Module,
			controllers_fx.Module,
			fx.Provide(ProvideRouter),
			fx.Invoke(StartServer),
		)
	},
}

func main() {
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file to load")
	pf.String("provider", "", "agent provider (openai|gemini)")
	pf.String("backend", "", "history backend (file|postgres|redis|mongo)")
	pf.String("history", "", "history file path for the file backend")
	pf.String("log-level", "", "log level (debug|info|warn|error)")
	pf.Bool("raw", false, "print the assistant's raw JSON instead of rendering it")
	serveCmd.Flags().String("port", "", "HTTP port")

	_ = v.BindPFlag(config.KeyAgentProvider, pf.Lookup("provider"))
	_ = v.BindPFlag(config.KeyHistoryBackend, pf.Lookup("backend"))
	_ = v.BindPFlag(config.KeyHistoryPath, pf.Lookup("history"))
	_ = v.BindPFlag(config.KeyLogLevel, pf.Lookup("log-level"))
	_ = v.BindPFlag(config.KeyRawOutput, pf.Lookup("raw"))
	_ = v.BindPFlag(config.KeyPort, serveCmd.Flags().Lookup("port"))
}

func initConfig() {
	if err := config.LoadDotEnv(envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func coreModules() fx.Option {
	return fx.Options(
		fx.Supply(v),
		config_fx.Module,
		logger_fx.Module,
		agent_fx.Module,
		store_fx.Module,
		chat_fx.Module,
	)
}

// runApp starts an fx app and blocks until it is shut down, either by a
// signal or by a component calling Shutdown.
func runApp(opts ...fx.Option) error {
	app := fx.New(opts...)

	startCtx, cancel := context.WithTimeout(context.Background(), app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	sig := <-app.Wait()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil {
		return err
	}
	if sig.ExitCode != 0 {
		return fmt.Errorf("exited with code %d", sig.ExitCode)
	}
	return nil
}

func StartServer(lc fx.Lifecycle, cfg *config.Config, engine *gin.Engine, logger *zap.Logger) {
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info("starting HTTP server", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal("failed to start server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}

func ProvideRouter(cfg *config.Config, chatController *controllers.ChatController) *gin.Engine {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RateLimitMiddleware(
		middleware.NewRateLimiter(cfg.Server.RateLimitPerSecond, cfg.Server.RateLimitBurst)))

	RegisterRoutes(r, chatController)

	return r
}

func RegisterRoutes(r *gin.Engine, chatController *controllers.ChatController) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	chatController.RegisterRoutes(api)
}
