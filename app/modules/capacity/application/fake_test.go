package capacityservice

import (
	"context"
	"sort"

	capacitydb "github.com/Black-And-White-Club/racepack/app/modules/capacity/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// FakeCapacityRepo keeps claims in memory. Set a Func field to override a
// method, for example to inject an error.
type FakeCapacityRepo struct {
	trace []string

	capacities map[int64]*int
	claims     []capacitydb.EarlyBirdClaim
	nextID     int64

	LockCategoryCapacityFunc func(ctx context.Context, db bun.IDB, categoryID int64) (*int, error)
	InsertClaimsFunc         func(ctx context.Context, db bun.IDB, claims []capacitydb.EarlyBirdClaim) error
}

func NewFakeCapacityRepo() *FakeCapacityRepo {
	return &FakeCapacityRepo{trace: []string{}, capacities: map[int64]*int{}}
}

func (f *FakeCapacityRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeCapacityRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// SetCapacity registers a category. A nil capacity is unlimited.
func (f *FakeCapacityRepo) SetCapacity(categoryID int64, capacity *int) {
	f.capacities[categoryID] = capacity
}

func (f *FakeCapacityRepo) LockCategoryCapacity(ctx context.Context, db bun.IDB, categoryID int64) (*int, error) {
	f.record("LockCategoryCapacity")
	if f.LockCategoryCapacityFunc != nil {
		return f.LockCategoryCapacityFunc(ctx, db, categoryID)
	}
	capacity, ok := f.capacities[categoryID]
	if !ok {
		return nil, capacitydb.ErrCategoryNotFound
	}
	return capacity, nil
}

func (f *FakeCapacityRepo) CountLive(ctx context.Context, db bun.IDB, categoryID int64) (int, error) {
	f.record("CountLive")
	n := 0
	for _, c := range f.claims {
		if c.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (f *FakeCapacityRepo) InsertClaims(ctx context.Context, db bun.IDB, claims []capacitydb.EarlyBirdClaim) error {
	f.record("InsertClaims")
	if f.InsertClaimsFunc != nil {
		return f.InsertClaimsFunc(ctx, db, claims)
	}
	for i := range claims {
		f.nextID++
		claims[i].ID = f.nextID
		f.claims = append(f.claims, claims[i])
	}
	return nil
}

func (f *FakeCapacityRepo) deleteWhere(match func(c capacitydb.EarlyBirdClaim) bool) int {
	kept := f.claims[:0]
	n := 0
	for _, c := range f.claims {
		if match(c) {
			n++
			continue
		}
		kept = append(kept, c)
	}
	f.claims = kept
	return n
}

func (f *FakeCapacityRepo) DeleteByIDs(ctx context.Context, db bun.IDB, ids []int64) (int, error) {
	f.record("DeleteByIDs")
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return f.deleteWhere(func(c capacitydb.EarlyBirdClaim) bool { return set[c.ID] }), nil
}

func (f *FakeCapacityRepo) DeleteByRegistration(ctx context.Context, db bun.IDB, registrationID int64) (int, error) {
	f.record("DeleteByRegistration")
	return f.deleteWhere(func(c capacitydb.EarlyBirdClaim) bool {
		return c.RegistrationID != nil && *c.RegistrationID == registrationID
	}), nil
}

func (f *FakeCapacityRepo) DeleteNewest(ctx context.Context, db bun.IDB, categoryID int64, n int) (int, error) {
	f.record("DeleteNewest")
	var ids []int64
	for _, c := range f.claims {
		if c.CategoryID == categoryID {
			ids = append(ids, c.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	if n < len(ids) {
		ids = ids[:n]
	}
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return f.deleteWhere(func(c capacitydb.EarlyBirdClaim) bool { return set[c.ID] }), nil
}

func (f *FakeCapacityRepo) ClaimedByCategory(ctx context.Context, db bun.IDB) (map[int64]int, error) {
	f.record("ClaimedByCategory")
	out := map[int64]int{}
	for _, c := range f.claims {
		out[c.CategoryID]++
	}
	return out, nil
}

var _ capacitydb.Repository = (*FakeCapacityRepo)(nil)
