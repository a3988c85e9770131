package catalogservice

import (
	"context"

	catalogdb "github.com/Black-And-White-Club/racepack/app/modules/catalog/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Catalog Repo
// ------------------------

type FakeCatalogRepo struct {
	trace []string

	ListCategoriesFunc   func(ctx context.Context, db bun.IDB) ([]catalogdb.RaceCategory, error)
	GetCategoryFunc      func(ctx context.Context, db bun.IDB, id int64) (*catalogdb.RaceCategory, error)
	LockCategoriesFunc   func(ctx context.Context, db bun.IDB, ids []int64) ([]catalogdb.RaceCategory, error)
	UpsertCategoryFunc   func(ctx context.Context, db bun.IDB, category *catalogdb.RaceCategory) error
	ListJerseysFunc      func(ctx context.Context, db bun.IDB) ([]catalogdb.JerseyOption, error)
	GetJerseysBySizeFunc func(ctx context.Context, db bun.IDB, sizes []string) (map[string]catalogdb.JerseyOption, error)
}

func NewFakeCatalogRepo() *FakeCatalogRepo {
	return &FakeCatalogRepo{trace: []string{}}
}

func (f *FakeCatalogRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeCatalogRepo) ListCategories(ctx context.Context, db bun.IDB) ([]catalogdb.RaceCategory, error) {
	f.record("ListCategories")
	if f.ListCategoriesFunc != nil {
		return f.ListCategoriesFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeCatalogRepo) GetCategory(ctx context.Context, db bun.IDB, id int64) (*catalogdb.RaceCategory, error) {
	f.record("GetCategory")
	if f.GetCategoryFunc != nil {
		return f.GetCategoryFunc(ctx, db, id)
	}
	return nil, catalogdb.ErrNotFound
}

func (f *FakeCatalogRepo) LockCategories(ctx context.Context, db bun.IDB, ids []int64) ([]catalogdb.RaceCategory, error) {
	f.record("LockCategories")
	if f.LockCategoriesFunc != nil {
		return f.LockCategoriesFunc(ctx, db, ids)
	}
	return nil, nil
}

func (f *FakeCatalogRepo) UpsertCategory(ctx context.Context, db bun.IDB, category *catalogdb.RaceCategory) error {
	f.record("UpsertCategory")
	if f.UpsertCategoryFunc != nil {
		return f.UpsertCategoryFunc(ctx, db, category)
	}
	return nil
}

func (f *FakeCatalogRepo) ListJerseys(ctx context.Context, db bun.IDB) ([]catalogdb.JerseyOption, error) {
	f.record("ListJerseys")
	if f.ListJerseysFunc != nil {
		return f.ListJerseysFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeCatalogRepo) GetJerseysBySize(ctx context.Context, db bun.IDB, sizes []string) (map[string]catalogdb.JerseyOption, error) {
	f.record("GetJerseysBySize")
	if f.GetJerseysBySizeFunc != nil {
		return f.GetJerseysBySizeFunc(ctx, db, sizes)
	}
	return map[string]catalogdb.JerseyOption{}, nil
}

func (f *FakeCatalogRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ catalogdb.Repository = (*FakeCatalogRepo)(nil)

// ------------------------
// Fake Capacity Usage
// ------------------------

type FakeCapacityUsage struct {
	Claimed map[int64]int
	Err     error
}

func (f *FakeCapacityUsage) ClaimedByCategory(ctx context.Context, db bun.IDB) (map[int64]int, error) {
	return f.Claimed, f.Err
}

var _ CapacityUsage = (*FakeCapacityUsage)(nil)
