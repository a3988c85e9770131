package capacityservice

import "context"

// Service exposes the ledger as standalone units of work.
type Service interface {
	Reserve(ctx context.Context, categoryID, registrationID int64, count int) ([]int64, error)
	// Release is idempotent: releasing an id twice frees it once.
	Release(ctx context.Context, claimIDs []int64) (int, error)
	Remaining(ctx context.Context, categoryID int64) (Availability, error)
}

// Availability describes the early-bird slots left in a category.
type Availability struct {
	CategoryID int64 `json:"categoryId"`
	Remaining  int   `json:"remaining"`
	Limited    bool  `json:"limited"`
}
