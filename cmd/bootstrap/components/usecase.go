package components

import (
	"context"
	"log/slog"
	"time"

	"casita-reservations/internal/domain/approval"
	"casita-reservations/internal/pkg/clock"
	"casita-reservations/internal/pkg/config"
	"casita-reservations/internal/usecase"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		clock.NewRealClock,
		approval.NewTable,
		usecase.NewReservationCommands,
		usecase.NewReservationQueries,
		usecase.NewApprovalCommands,
	),
	fx.Invoke(StartApprovalJanitor),
)

// StartApprovalJanitor runs the periodic sweep that releases deny prompts
// whose reason deadline has passed.
func StartApprovalJanitor(lc fx.Lifecycle, commands usecase.ApprovalCommands, cfg config.Config, logger *slog.Logger) {
	interval := cfg.Approval.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}

	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				ticker := time.NewTicker(interval)
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						commands.ExpireStale(context.Background())
					case <-done:
						return
					}
				}
			}()
			logger.Info("approval janitor started", "interval", interval)
			return nil
		},
		OnStop: func(_ context.Context) error {
			close(done)
			return nil
		},
	})
}
