package capacitydb

import (
	"time"

	"github.com/uptrace/bun"
)

// EarlyBirdClaim is one consumed early-bird slot. Live rows are the claims;
// releasing a slot deletes its row.
type EarlyBirdClaim struct {
	bun.BaseModel `bun:"table:early_bird_claims,alias:ebc"`

	ID             int64     `bun:"id,pk,autoincrement"`
	CategoryID     int64     `bun:"category_id,notnull"`
	RegistrationID *int64    `bun:"registration_id"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// categoryCapacity is the slice of race_categories the ledger locks.
type categoryCapacity struct {
	bun.BaseModel `bun:"table:race_categories,alias:rc"`

	ID                int64 `bun:"id,pk"`
	EarlyBirdCapacity *int  `bun:"early_bird_capacity"`
}
