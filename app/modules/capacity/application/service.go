package capacityservice

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	capacitydb "github.com/Black-And-White-Club/racepack/app/modules/capacity/infrastructure/repositories"
	"github.com/Black-And-White-Club/racepack/app/shared/observability"
	"github.com/Black-And-White-Club/racepack/app/shared/operation"
	"github.com/Black-And-White-Club/racepack/app/shared/results"
	"github.com/Black-And-White-Club/racepack/app/shared/txn"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// CapacityService implements the Service interface.
type CapacityService struct {
	ledger    *Ledger
	coord     *txn.Coordinator
	telemetry operation.Telemetry
}

// NewCapacityService creates a new CapacityService.
func NewCapacityService(
	repo capacitydb.Repository,
	policy ReleasePolicy,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	coord *txn.Coordinator,
) *CapacityService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CapacityService{
		ledger: NewLedger(repo, policy),
		coord:  coord,
		telemetry: operation.Telemetry{
			Service: "CapacityService",
			Logger:  logger,
			Metrics: metrics,
			Tracer:  tracer,
		},
	}
}

var _ Service = (*CapacityService)(nil)

// Ledger returns the transaction-scoped ledger other modules compose into
// their own units of work.
func (s *CapacityService) Ledger() *Ledger { return s.ledger }

func (s *CapacityService) Reserve(ctx context.Context, categoryID, registrationID int64, count int) ([]int64, error) {
	return operation.Unwrap(operation.WithTelemetry(ctx, s.telemetry, "Reserve", strconv.FormatInt(categoryID, 10), func(ctx context.Context) (results.OperationResult[[]int64, error], error) {
		return operation.InTx(ctx, s.coord, "Reserve", func(ctx context.Context, db bun.IDB) (results.OperationResult[[]int64, error], error) {
			ids, err := s.ledger.Reserve(ctx, db, categoryID, registrationID, count)
			return operation.DomainResult(ids, err)
		})
	}))
}

func (s *CapacityService) Release(ctx context.Context, claimIDs []int64) (int, error) {
	return operation.Unwrap(operation.WithTelemetry(ctx, s.telemetry, "Release", fmt.Sprint(claimIDs), func(ctx context.Context) (results.OperationResult[int, error], error) {
		return operation.InTx(ctx, s.coord, "Release", func(ctx context.Context, db bun.IDB) (results.OperationResult[int, error], error) {
			n, err := s.ledger.Release(ctx, db, claimIDs)
			return operation.DomainResult(n, err)
		})
	}))
}

func (s *CapacityService) Remaining(ctx context.Context, categoryID int64) (Availability, error) {
	return operation.Unwrap(operation.WithTelemetry(ctx, s.telemetry, "Remaining", strconv.FormatInt(categoryID, 10), func(ctx context.Context) (results.OperationResult[Availability, error], error) {
		return operation.InTx(ctx, s.coord, "Remaining", func(ctx context.Context, db bun.IDB) (results.OperationResult[Availability, error], error) {
			left, limited, err := s.ledger.Remaining(ctx, db, categoryID)
			return operation.DomainResult(Availability{CategoryID: categoryID, Remaining: left, Limited: limited}, err)
		})
	}))
}
