package bootstrap

import (
	"casita-reservations/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		// The approval commands only need their own slice of the config.
		func(cfg config.Config) config.ApprovalConfig {
			return cfg.Approval
		},
	),
)
