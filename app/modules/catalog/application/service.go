package catalogservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	catalogdb "github.com/Black-And-White-Club/racepack/app/modules/catalog/infrastructure/repositories"
	"github.com/Black-And-White-Club/racepack/app/shared/apperr"
	"github.com/Black-And-White-Club/racepack/app/shared/observability"
	"github.com/Black-And-White-Club/racepack/app/shared/operation"
	"github.com/Black-And-White-Club/racepack/app/shared/results"
	"github.com/Black-And-White-Club/racepack/app/shared/txn"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// CatalogService implements the Service interface.
type CatalogService struct {
	repo      catalogdb.Repository
	usage     CapacityUsage
	coord     *txn.Coordinator
	telemetry operation.Telemetry
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(
	repo catalogdb.Repository,
	usage CapacityUsage,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	coord *txn.Coordinator,
) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{
		repo:  repo,
		usage: usage,
		coord: coord,
		telemetry: operation.Telemetry{
			Service: "CatalogService",
			Logger:  logger,
			Metrics: metrics,
			Tracer:  tracer,
		},
	}
}

var _ Service = (*CatalogService)(nil)

// ListCategories retrieves categories with earlyBirdRemaining = max(0, capacity - claims).
func (s *CatalogService) ListCategories(ctx context.Context) ([]CategoryView, error) {
	return operation.Unwrap(operation.WithTelemetry(ctx, s.telemetry, "ListCategories", "all", func(ctx context.Context) (results.OperationResult[[]CategoryView, error], error) {
		return operation.InTx(ctx, s.coord, "ListCategories", s.listCategoriesLogic)
	}))
}

func (s *CatalogService) listCategoriesLogic(ctx context.Context, db bun.IDB) (results.OperationResult[[]CategoryView, error], error) {
	models, err := s.repo.ListCategories(ctx, db)
	if err != nil {
		return results.OperationResult[[]CategoryView, error]{}, err
	}
	claimed, err := s.usage.ClaimedByCategory(ctx, db)
	if err != nil {
		return results.OperationResult[[]CategoryView, error]{}, fmt.Errorf("failed to count early-bird claims: %w", err)
	}

	views := make([]CategoryView, 0, len(models))
	for i := range models {
		c := CategoryFromModel(&models[i])
		views = append(views, CategoryView{
			Category:           c,
			EarlyBirdRemaining: remaining(c.EarlyBirdCapacity, claimed[c.ID]),
		})
	}
	return results.SuccessResult[[]CategoryView, error](views), nil
}

func remaining(capacity *int, claimed int) *int {
	if capacity == nil {
		return nil
	}
	left := max(0, *capacity-claimed)
	return &left
}

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (Category, error) {
	return operation.Unwrap(operation.WithTelemetry(ctx, s.telemetry, "GetCategory", strconv.FormatInt(id, 10), func(ctx context.Context) (results.OperationResult[Category, error], error) {
		return operation.InTx(ctx, s.coord, "GetCategory", func(ctx context.Context, db bun.IDB) (results.OperationResult[Category, error], error) {
			m, err := s.repo.GetCategory(ctx, db, id)
			if err != nil {
				if errors.Is(err, catalogdb.ErrNotFound) {
					return results.FailureResult[Category, error](apperr.NotFoundf("category %d", id)), nil
				}
				return results.OperationResult[Category, error]{}, err
			}
			return results.SuccessResult[Category, error](CategoryFromModel(m)), nil
		})
	}))
}

func (s *CatalogService) UpsertCategory(ctx context.Context, category Category) (Category, error) {
	return operation.Unwrap(operation.WithTelemetry(ctx, s.telemetry, "UpsertCategory", category.Name, func(ctx context.Context) (results.OperationResult[Category, error], error) {
		if err := ValidateCategory(category); err != nil {
			return results.FailureResult[Category, error](err), nil
		}
		return operation.InTx(ctx, s.coord, "UpsertCategory", func(ctx context.Context, db bun.IDB) (results.OperationResult[Category, error], error) {
			m := category.ToModel()
			if err := s.repo.UpsertCategory(ctx, db, m); err != nil {
				return results.OperationResult[Category, error]{}, err
			}
			stored := category
			stored.ID = m.ID
			return results.SuccessResult[Category, error](stored), nil
		})
	}))
}

func (s *CatalogService) ListJerseys(ctx context.Context) ([]Jersey, error) {
	return operation.Unwrap(operation.WithTelemetry(ctx, s.telemetry, "ListJerseys", "all", func(ctx context.Context) (results.OperationResult[[]Jersey, error], error) {
		return operation.InTx(ctx, s.coord, "ListJerseys", func(ctx context.Context, db bun.IDB) (results.OperationResult[[]Jersey, error], error) {
			models, err := s.repo.ListJerseys(ctx, db)
			if err != nil {
				return results.OperationResult[[]Jersey, error]{}, err
			}
			jerseys := make([]Jersey, 0, len(models))
			for _, m := range models {
				jerseys = append(jerseys, Jersey{ID: m.ID, Size: m.Size})
			}
			return results.SuccessResult[[]Jersey, error](jerseys), nil
		})
	}))
}

// RenderCapacityChart renders the categories that have an early-bird capacity.
func (s *CatalogService) RenderCapacityChart(ctx context.Context) ([]byte, error) {
	return operation.Unwrap(operation.WithTelemetry(ctx, s.telemetry, "RenderCapacityChart", "all", func(ctx context.Context) (results.OperationResult[[]byte, error], error) {
		listed, err := operation.InTx(ctx, s.coord, "RenderCapacityChart", s.listCategoriesLogic)
		if err != nil || listed.IsFailure() {
			return results.OperationResult[[]byte, error]{Failure: listed.Failure}, err
		}
		png, err := GenerateCapacityChart(*listed.Success)
		if err != nil {
			if errors.Is(err, errNoCappedCategories) {
				return results.FailureResult[[]byte, error](apperr.NotFoundf("no category has an early-bird capacity")), nil
			}
			return results.OperationResult[[]byte, error]{}, err
		}
		return results.SuccessResult[[]byte, error](png), nil
	}))
}
