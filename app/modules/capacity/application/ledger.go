package capacityservice

import (
	"context"
	"errors"
	"fmt"
	"sort"

	capacitydb "github.com/Black-And-White-Club/racepack/app/modules/capacity/infrastructure/repositories"
	"github.com/Black-And-White-Club/racepack/app/shared/apperr"
	"github.com/uptrace/bun"
)

// ReleasePolicy selects which claims a declined registration gives back.
type ReleasePolicy string

const (
	// ReleaseByRegistration deletes exactly the claims linked to the registration.
	ReleaseByRegistration ReleasePolicy = "registration"
	// ReleaseLIFO deletes the newest claims of each category, whoever holds them.
	ReleaseLIFO ReleasePolicy = "lifo"
)

// ParsePolicy maps a config value onto a ReleasePolicy. Empty selects
// ReleaseByRegistration.
func ParsePolicy(s string) (ReleasePolicy, error) {
	switch ReleasePolicy(s) {
	case "", ReleaseByRegistration:
		return ReleaseByRegistration, nil
	case ReleaseLIFO:
		return ReleaseLIFO, nil
	}
	return "", fmt.Errorf("unknown capacity release policy %q", s)
}

// Ledger reserves and releases early-bird slots. Every method runs on the
// caller's transaction handle, so a reservation commits or rolls back with
// the registration that holds it.
type Ledger struct {
	repo   capacitydb.Repository
	policy ReleasePolicy
}

func NewLedger(repo capacitydb.Repository, policy ReleasePolicy) *Ledger {
	if policy == "" {
		policy = ReleaseByRegistration
	}
	return &Ledger{repo: repo, policy: policy}
}

// Reserve takes count slots of a category for registrationID (0 for none).
// The category row stays locked until the surrounding transaction ends.
func (l *Ledger) Reserve(ctx context.Context, db bun.IDB, categoryID, registrationID int64, count int) ([]int64, error) {
	if count < 1 {
		return nil, apperr.Validationf("reserve count must be >= 1, got %d", count)
	}
	capacity, err := l.repo.LockCategoryCapacity(ctx, db, categoryID)
	if err != nil {
		if errors.Is(err, capacitydb.ErrCategoryNotFound) {
			return nil, apperr.NotFoundf("category %d", categoryID)
		}
		return nil, err
	}

	if capacity != nil {
		live, err := l.repo.CountLive(ctx, db, categoryID)
		if err != nil {
			return nil, err
		}
		if left := *capacity - live; left < count {
			return nil, fmt.Errorf("%w: category %d has %d of %d slots left, %d requested",
				apperr.ErrCapacityExceeded, categoryID, max(0, left), *capacity, count)
		}
	}

	var owner *int64
	if registrationID != 0 {
		owner = &registrationID
	}
	claims := make([]capacitydb.EarlyBirdClaim, count)
	for i := range claims {
		claims[i] = capacitydb.EarlyBirdClaim{CategoryID: categoryID, RegistrationID: owner}
	}
	if err := l.repo.InsertClaims(ctx, db, claims); err != nil {
		return nil, err
	}

	ids := make([]int64, len(claims))
	for i, c := range claims {
		ids[i] = c.ID
	}
	return ids, nil
}

// Release deletes claims by id. Ids that are already gone are ignored.
func (l *Ledger) Release(ctx context.Context, db bun.IDB, claimIDs []int64) (int, error) {
	return l.repo.DeleteByIDs(ctx, db, claimIDs)
}

// ReleaseForRegistration gives back the slots of a declined registration.
// perCategory holds its participant count per category, early bird or not, and
// is only consulted under ReleaseLIFO.
func (l *Ledger) ReleaseForRegistration(ctx context.Context, db bun.IDB, registrationID int64, perCategory map[int64]int) (int, error) {
	if l.policy == ReleaseByRegistration {
		return l.repo.DeleteByRegistration(ctx, db, registrationID)
	}

	categoryIDs := make([]int64, 0, len(perCategory))
	for id := range perCategory {
		categoryIDs = append(categoryIDs, id)
	}
	sort.Slice(categoryIDs, func(i, j int) bool { return categoryIDs[i] < categoryIDs[j] })

	released := 0
	for _, id := range categoryIDs {
		if _, err := l.repo.LockCategoryCapacity(ctx, db, id); err != nil && !errors.Is(err, capacitydb.ErrCategoryNotFound) {
			return released, err
		}
		n, err := l.repo.DeleteNewest(ctx, db, id, perCategory[id])
		if err != nil {
			return released, err
		}
		released += n
	}
	return released, nil
}

// Remaining reports the free slots of a category. limited is false when the
// category has no early-bird cap.
func (l *Ledger) Remaining(ctx context.Context, db bun.IDB, categoryID int64) (remaining int, limited bool, err error) {
	capacity, err := l.repo.LockCategoryCapacity(ctx, db, categoryID)
	if err != nil {
		if errors.Is(err, capacitydb.ErrCategoryNotFound) {
			return 0, false, apperr.NotFoundf("category %d", categoryID)
		}
		return 0, false, err
	}
	if capacity == nil {
		return 0, false, nil
	}
	live, err := l.repo.CountLive(ctx, db, categoryID)
	if err != nil {
		return 0, true, err
	}
	return max(0, *capacity-live), true, nil
}

// ClaimedByCategory counts live claims per category.
func (l *Ledger) ClaimedByCategory(ctx context.Context, db bun.IDB) (map[int64]int, error) {
	return l.repo.ClaimedByCategory(ctx, db)
}
