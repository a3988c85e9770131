package catalogservice

import (
	"context"

	"github.com/uptrace/bun"
)

// Service defines the catalog operations.
type Service interface {
	// ListCategories returns every category with its remaining early-bird slots.
	ListCategories(ctx context.Context) ([]CategoryView, error)
	GetCategory(ctx context.Context, id int64) (Category, error)
	// UpsertCategory validates and stores a category keyed by name.
	UpsertCategory(ctx context.Context, category Category) (Category, error)
	ListJerseys(ctx context.Context) ([]Jersey, error)
	// RenderCapacityChart draws early-bird usage for capped categories as a PNG.
	RenderCapacityChart(ctx context.Context) ([]byte, error)
}

// CapacityUsage reports live early-bird claims per category id.
type CapacityUsage interface {
	ClaimedByCategory(ctx context.Context, db bun.IDB) (map[int64]int, error)
}

// Jersey is an orderable jersey size.
type Jersey struct {
	ID   int64  `json:"id"`
	Size string `json:"size"`
}
