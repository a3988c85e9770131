package capacity

import (
	"context"

	capacityservice "github.com/Black-And-White-Club/racepack/app/modules/capacity/application"
	capacitydb "github.com/Black-And-White-Club/racepack/app/modules/capacity/infrastructure/repositories"
	"github.com/Black-And-White-Club/racepack/app/shared/observability"
	"github.com/Black-And-White-Club/racepack/app/shared/txn"
	"github.com/uptrace/bun"
)

// Module represents the capacity module. It has no HTTP surface; the catalog
// and registration modules consume its Ledger.
type Module struct {
	Service *capacityservice.CapacityService
	Ledger  *capacityservice.Ledger
}

// NewCapacityModule creates and initializes a new capacity module.
func NewCapacityModule(
	ctx context.Context,
	obs *observability.Observability,
	db *bun.DB,
	coord *txn.Coordinator,
	policy capacityservice.ReleasePolicy,
) *Module {
	obs.Logger.InfoContext(ctx, "capacity.NewCapacityModule initializing", "release_policy", string(policy))

	service := capacityservice.NewCapacityService(
		capacitydb.NewRepository(db),
		policy,
		obs.Logger,
		obs.Metrics("capacity"),
		obs.Tracer("capacity"),
		coord,
	)
	return &Module{Service: service, Ledger: service.Ledger()}
}
