package catalogdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for catalog persistence.
type Repository interface {
	// ListCategories returns every category ordered by id.
	ListCategories(ctx context.Context, db bun.IDB) ([]RaceCategory, error)

	GetCategory(ctx context.Context, db bun.IDB, id int64) (*RaceCategory, error)

	// LockCategories loads the given categories with FOR UPDATE, in ascending
	// id order so concurrent callers acquire locks in the same sequence.
	LockCategories(ctx context.Context, db bun.IDB, ids []int64) ([]RaceCategory, error)

	// UpsertCategory inserts or updates a category keyed by name.
	UpsertCategory(ctx context.Context, db bun.IDB, category *RaceCategory) error

	ListJerseys(ctx context.Context, db bun.IDB) ([]JerseyOption, error)

	// GetJerseysBySize returns the jersey options for sizes, keyed by size.
	GetJerseysBySize(ctx context.Context, db bun.IDB, sizes []string) (map[string]JerseyOption, error)
}
