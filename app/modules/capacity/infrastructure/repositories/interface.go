package capacitydb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for early-bird claim persistence.
type Repository interface {
	// LockCategoryCapacity takes a FOR UPDATE lock on the category row and
	// returns its early-bird capacity. Nil means unlimited.
	LockCategoryCapacity(ctx context.Context, db bun.IDB, categoryID int64) (*int, error)

	// CountLive counts the claims currently held against a category.
	CountLive(ctx context.Context, db bun.IDB, categoryID int64) (int, error)

	InsertClaims(ctx context.Context, db bun.IDB, claims []EarlyBirdClaim) error

	// DeleteByIDs removes claims by id and reports how many rows existed.
	DeleteByIDs(ctx context.Context, db bun.IDB, ids []int64) (int, error)

	// DeleteByRegistration removes every claim linked to a registration.
	DeleteByRegistration(ctx context.Context, db bun.IDB, registrationID int64) (int, error)

	// DeleteNewest removes the n most recent claims of a category.
	DeleteNewest(ctx context.Context, db bun.IDB, categoryID int64, n int) (int, error)

	// ClaimedByCategory counts live claims grouped by category id.
	ClaimedByCategory(ctx context.Context, db bun.IDB) (map[int64]int, error)
}
