package capacitydb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// ErrCategoryNotFound is returned when the locked category does not exist.
var ErrCategoryNotFound = errors.New("category not found")

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new capacity repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) LockCategoryCapacity(ctx context.Context, db bun.IDB, categoryID int64) (*int, error) {
	db = r.resolveDB(db)
	row := new(categoryCapacity)
	err := db.NewSelect().
		Model(row).
		Column("id", "early_bird_capacity").
		Where("id = ?", categoryID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to lock category %d: %w", categoryID, err)
	}
	return row.EarlyBirdCapacity, nil
}

func (r *Impl) CountLive(ctx context.Context, db bun.IDB, categoryID int64) (int, error) {
	db = r.resolveDB(db)
	n, err := db.NewSelect().
		Model((*EarlyBirdClaim)(nil)).
		Where("category_id = ?", categoryID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count early-bird claims: %w", err)
	}
	return n, nil
}

func (r *Impl) InsertClaims(ctx context.Context, db bun.IDB, claims []EarlyBirdClaim) error {
	db = r.resolveDB(db)
	if len(claims) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&claims).Returning("id, created_at").Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert early-bird claims: %w", err)
	}
	return nil
}

func (r *Impl) DeleteByIDs(ctx context.Context, db bun.IDB, ids []int64) (int, error) {
	db = r.resolveDB(db)
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := db.NewDelete().
		Model((*EarlyBirdClaim)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete early-bird claims: %w", err)
	}
	return rowsAffected(res)
}

func (r *Impl) DeleteByRegistration(ctx context.Context, db bun.IDB, registrationID int64) (int, error) {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*EarlyBirdClaim)(nil)).
		Where("registration_id = ?", registrationID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to release claims of registration %d: %w", registrationID, err)
	}
	return rowsAffected(res)
}

func (r *Impl) DeleteNewest(ctx context.Context, db bun.IDB, categoryID int64, n int) (int, error) {
	db = r.resolveDB(db)
	if n <= 0 {
		return 0, nil
	}
	newest := db.NewSelect().
		Model((*EarlyBirdClaim)(nil)).
		Column("id").
		Where("category_id = ?", categoryID).
		Order("id DESC").
		Limit(n)
	res, err := db.NewDelete().
		Model((*EarlyBirdClaim)(nil)).
		Where("id IN (?)", newest).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to release newest claims of category %d: %w", categoryID, err)
	}
	return rowsAffected(res)
}

func (r *Impl) ClaimedByCategory(ctx context.Context, db bun.IDB) (map[int64]int, error) {
	db = r.resolveDB(db)
	var rows []struct {
		CategoryID int64 `bun:"category_id"`
		Claimed    int   `bun:"claimed"`
	}
	err := db.NewSelect().
		Model((*EarlyBirdClaim)(nil)).
		Column("category_id").
		ColumnExpr("COUNT(*) AS claimed").
		Group("category_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to count claims by category: %w", err)
	}
	out := make(map[int64]int, len(rows))
	for _, row := range rows {
		out[row.CategoryID] = row.Claimed
	}
	return out, nil
}

func rowsAffected(res sql.Result) (int, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return int(n), nil
}
