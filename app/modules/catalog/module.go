package catalog

import (
	"context"

	catalogservice "github.com/Black-And-White-Club/racepack/app/modules/catalog/application"
	cataloghandlers "github.com/Black-And-White-Club/racepack/app/modules/catalog/infrastructure/handlers"
	catalogdb "github.com/Black-And-White-Club/racepack/app/modules/catalog/infrastructure/repositories"
	"github.com/Black-And-White-Club/racepack/app/shared/observability"
	"github.com/Black-And-White-Club/racepack/app/shared/txn"
	"github.com/uptrace/bun"
)

// Module represents the catalog module.
type Module struct {
	Repository catalogdb.Repository
	Service    catalogservice.Service
	Handlers   *cataloghandlers.CatalogHandlers
}

// NewCatalogModule creates and initializes a new catalog module.
func NewCatalogModule(
	ctx context.Context,
	obs *observability.Observability,
	db *bun.DB,
	coord *txn.Coordinator,
	usage catalogservice.CapacityUsage,
) *Module {
	logger := obs.Logger
	logger.InfoContext(ctx, "catalog.NewCatalogModule initializing")

	repo := catalogdb.NewRepository(db)
	service := catalogservice.NewCatalogService(
		repo,
		usage,
		logger,
		obs.Metrics("catalog"),
		obs.Tracer("catalog"),
		coord,
	)

	return &Module{
		Repository: repo,
		Service:    service,
		Handlers:   cataloghandlers.NewCatalogHandlers(service, logger),
	}
}
