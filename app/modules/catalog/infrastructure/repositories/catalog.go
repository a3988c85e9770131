package catalogdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a category does not exist.
var ErrNotFound = errors.New("category not found")

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new catalog repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) ListCategories(ctx context.Context, db bun.IDB) ([]RaceCategory, error) {
	db = r.resolveDB(db)
	var categories []RaceCategory
	if err := db.NewSelect().Model(&categories).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *Impl) GetCategory(ctx context.Context, db bun.IDB, id int64) (*RaceCategory, error) {
	db = r.resolveDB(db)
	category := new(RaceCategory)
	err := db.NewSelect().Model(category).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

func (r *Impl) LockCategories(ctx context.Context, db bun.IDB, ids []int64) ([]RaceCategory, error) {
	db = r.resolveDB(db)
	if len(ids) == 0 {
		return nil, nil
	}
	var categories []RaceCategory
	err := db.NewSelect().
		Model(&categories).
		Where("id IN (?)", bun.In(ids)).
		Order("id ASC").
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to lock categories: %w", err)
	}
	if len(categories) != len(uniqueIDs(ids)) {
		return categories, ErrNotFound
	}
	return categories, nil
}

func (r *Impl) UpsertCategory(ctx context.Context, db bun.IDB, category *RaceCategory) error {
	db = r.resolveDB(db)
	category.UpdatedAt = time.Now().UTC()
	_, err := db.NewInsert().
		Model(category).
		ExcludeColumn("id", "created_at").
		On("CONFLICT (name) DO UPDATE").
		Set("base_price = EXCLUDED.base_price").
		Set("early_bird_price = EXCLUDED.early_bird_price").
		Set("tier1_price = EXCLUDED.tier1_price").
		Set("tier1_min = EXCLUDED.tier1_min").
		Set("tier1_max = EXCLUDED.tier1_max").
		Set("tier2_price = EXCLUDED.tier2_price").
		Set("tier2_min = EXCLUDED.tier2_min").
		Set("tier2_max = EXCLUDED.tier2_max").
		Set("tier3_price = EXCLUDED.tier3_price").
		Set("tier3_min = EXCLUDED.tier3_min").
		Set("tier3_max = EXCLUDED.tier3_max").
		Set("bundle_price = EXCLUDED.bundle_price").
		Set("bundle_size = EXCLUDED.bundle_size").
		Set("early_bird_capacity = EXCLUDED.early_bird_capacity").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("id, created_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert category: %w", err)
	}
	return nil
}

func (r *Impl) ListJerseys(ctx context.Context, db bun.IDB) ([]JerseyOption, error) {
	db = r.resolveDB(db)
	var jerseys []JerseyOption
	if err := db.NewSelect().Model(&jerseys).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list jerseys: %w", err)
	}
	return jerseys, nil
}

func (r *Impl) GetJerseysBySize(ctx context.Context, db bun.IDB, sizes []string) (map[string]JerseyOption, error) {
	db = r.resolveDB(db)
	out := make(map[string]JerseyOption, len(sizes))
	if len(sizes) == 0 {
		return out, nil
	}
	var jerseys []JerseyOption
	err := db.NewSelect().Model(&jerseys).Where("size IN (?)", bun.In(sizes)).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get jerseys by size: %w", err)
	}
	for _, j := range jerseys {
		out[j.Size] = j
	}
	return out, nil
}

func uniqueIDs(ids []int64) map[int64]struct{} {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return seen
}
