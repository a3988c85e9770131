package catalogdb

import (
	"time"

	"github.com/uptrace/bun"
)

// RaceCategory is a race distance with its pricing rules and early-bird capacity.
// Prices are minor currency units. A nil tier max is unbounded; a nil
// EarlyBirdCapacity is unlimited.
type RaceCategory struct {
	bun.BaseModel `bun:"table:race_categories,alias:rc"`

	ID                int64     `bun:"id,pk,autoincrement"`
	Name              string    `bun:"name,notnull,unique"`
	BasePrice         int64     `bun:"base_price,notnull"`
	EarlyBirdPrice    *int64    `bun:"early_bird_price"`
	Tier1Price        *int64    `bun:"tier1_price"`
	Tier1Min          *int      `bun:"tier1_min"`
	Tier1Max          *int      `bun:"tier1_max"`
	Tier2Price        *int64    `bun:"tier2_price"`
	Tier2Min          *int      `bun:"tier2_min"`
	Tier2Max          *int      `bun:"tier2_max"`
	Tier3Price        *int64    `bun:"tier3_price"`
	Tier3Min          *int      `bun:"tier3_min"`
	Tier3Max          *int      `bun:"tier3_max"`
	BundlePrice       *int64    `bun:"bundle_price"`
	BundleSize        *int      `bun:"bundle_size"`
	EarlyBirdCapacity *int      `bun:"early_bird_capacity"`
	CreatedAt         time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt         time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// JerseyOption is an orderable jersey size.
type JerseyOption struct {
	bun.BaseModel `bun:"table:jersey_options,alias:jo"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Size      string    `bun:"size,notnull,unique"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
