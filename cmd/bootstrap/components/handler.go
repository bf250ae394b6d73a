package components

import (
	"casita-reservations/internal/handler"
	"casita-reservations/internal/handler/api"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewReservationHandler,
		api.NewWebhookHandler,
	),
	fx.Invoke(handler.NewRouter),
)
