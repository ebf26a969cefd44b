package config_fx

import (
	"go.uber.org/fx"

	"tripmate/internal/config"
)

// Module expects a *viper.Viper with the command-line flags bound.
var Module = fx.Provide(config.Load)
