package bootstrap

import (
	"casita-reservations/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	DBModule,
	components.RepositoryModule,
	components.NotifierModule,
	components.UseCaseModule,
	components.HandlerModule,
)
