package components

import (
	"casita-reservations/internal/infra/repository"
	"casita-reservations/internal/usecase"

	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		fx.Annotate(
			repository.NewReservationRepository,
			fx.As(new(usecase.ReservationRepository)),
		),
	),
)
