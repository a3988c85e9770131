package racepack

import (
	"context"
	"net/http"

	"github.com/Black-And-White-Club/racepack/app/eventbus"
	racepackservice "github.com/Black-And-White-Club/racepack/app/modules/racepack/application"
	racepackhandlers "github.com/Black-And-White-Club/racepack/app/modules/racepack/infrastructure/handlers"
	racepackdb "github.com/Black-And-White-Club/racepack/app/modules/racepack/infrastructure/repositories"
	"github.com/Black-And-White-Club/racepack/app/shared/observability"
	"github.com/Black-And-White-Club/racepack/app/shared/txn"
	"github.com/uptrace/bun"
)

// Module represents the race-pack module.
type Module struct {
	Repository racepackdb.Repository
	Service    *racepackservice.RacePackService
	Handlers   *racepackhandlers.RacePackHandlers
}

// NewRacePackModule creates and initializes a new race-pack module.
// claimLimiter wraps the public claim route.
func NewRacePackModule(
	ctx context.Context,
	obs *observability.Observability,
	db *bun.DB,
	coord *txn.Coordinator,
	publisher eventbus.Publisher,
	claimLimiter func(http.Handler) http.Handler,
) *Module {
	logger := obs.Logger
	logger.InfoContext(ctx, "racepack.NewRacePackModule initializing")

	repo := racepackdb.NewRepository(db)
	service := racepackservice.NewRacePackService(
		repo,
		publisher,
		logger,
		obs.Metrics("racepack"),
		obs.Tracer("racepack"),
		coord,
	)

	var mws []func(http.Handler) http.Handler
	if claimLimiter != nil {
		mws = append(mws, claimLimiter)
	}

	return &Module{
		Repository: repo,
		Service:    service,
		Handlers:   racepackhandlers.NewRacePackHandlers(service, logger, mws...),
	}
}
