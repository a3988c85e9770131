package registration

import (
	"context"

	registrationservice "github.com/Black-And-White-Club/racepack/app/modules/registration/application"
	registrationhandlers "github.com/Black-And-White-Club/racepack/app/modules/registration/infrastructure/handlers"
	registrationdb "github.com/Black-And-White-Club/racepack/app/modules/registration/infrastructure/repositories"
	"github.com/Black-And-White-Club/racepack/app/shared/observability"
	"github.com/Black-And-White-Club/racepack/app/shared/txn"
	"github.com/uptrace/bun"
)

// Module represents the registration module.
type Module struct {
	Repository registrationdb.Repository
	Service    registrationservice.Service
	Handlers   *registrationhandlers.RegistrationHandlers
}

// NewRegistrationModule creates and initializes a new registration module.
// deps carries the catalog, capacity, racepack and notification pieces the
// payment lifecycle coordinates.
func NewRegistrationModule(
	ctx context.Context,
	obs *observability.Observability,
	db *bun.DB,
	coord *txn.Coordinator,
	deps registrationservice.Deps,
) *Module {
	logger := obs.Logger
	logger.InfoContext(ctx, "registration.NewRegistrationModule initializing", "qr_slack", deps.Slack)

	repo := registrationdb.NewRepository(db)
	service := registrationservice.NewRegistrationService(
		repo,
		deps,
		logger,
		obs.Metrics("registration"),
		obs.Tracer("registration"),
		coord,
	)

	return &Module{
		Repository: repo,
		Service:    service,
		Handlers:   registrationhandlers.NewRegistrationHandlers(service, deps.Blobs, logger),
	}
}
