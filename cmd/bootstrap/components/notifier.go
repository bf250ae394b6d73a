package components

import (
	"casita-reservations/internal/infra/mailer"
	"casita-reservations/internal/infra/telegram"
	"casita-reservations/internal/pkg/config"
	"casita-reservations/internal/usecase"

	"go.uber.org/fx"
)

var NotifierModule = fx.Module("notifier",
	fx.Provide(
		NewTelegramClient,
		fx.Annotate(
			telegram.NewOperatorConsole,
			fx.As(new(usecase.OperatorNotifier)),
		),
		fx.Annotate(
			mailer.NewMailer,
			fx.As(new(usecase.CustomerMailer)),
		),
	),
)

func NewTelegramClient(cfg config.Config) *telegram.Client {
	return telegram.NewClient(cfg.Telegram)
}
