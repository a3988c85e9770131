package catalogservice

import (
	catalogdb "github.com/Black-And-White-Club/racepack/app/modules/catalog/infrastructure/repositories"
	"github.com/Black-And-White-Club/racepack/app/shared/apperr"
)

// maxTiers is the number of volume tier slots a category carries.
const maxTiers = 3

// Tier is a volume price applying to group sizes in [Min, Max]. A nil Max is unbounded.
type Tier struct {
	Price int64 `json:"price"`
	Min   int   `json:"min"`
	Max   *int  `json:"max"`
}

func (t Tier) contains(groupSize int) bool {
	return groupSize >= t.Min && (t.Max == nil || groupSize <= *t.Max)
}

// Category is the pricing view of a race category.
type Category struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	BasePrice         int64  `json:"basePrice"`
	EarlyBirdPrice    *int64 `json:"earlyBirdPrice"`
	Tiers             []Tier `json:"tiers"`
	BundlePrice       *int64 `json:"bundlePrice"`
	BundleSize        *int   `json:"bundleSize"`
	EarlyBirdCapacity *int   `json:"earlyBirdCapacity"`
}

// CategoryView is a category as listed to registrants.
// EarlyBirdRemaining is nil when capacity is unlimited.
type CategoryView struct {
	Category
	EarlyBirdRemaining *int `json:"earlyBirdRemaining"`
}

// CategoryFromModel converts a stored category. Tier slots without a price are skipped.
func CategoryFromModel(m *catalogdb.RaceCategory) Category {
	c := Category{
		ID:                m.ID,
		Name:              m.Name,
		BasePrice:         m.BasePrice,
		EarlyBirdPrice:    m.EarlyBirdPrice,
		BundlePrice:       m.BundlePrice,
		BundleSize:        m.BundleSize,
		EarlyBirdCapacity: m.EarlyBirdCapacity,
	}
	slots := []struct {
		price    *int64
		min, max *int
	}{
		{m.Tier1Price, m.Tier1Min, m.Tier1Max},
		{m.Tier2Price, m.Tier2Min, m.Tier2Max},
		{m.Tier3Price, m.Tier3Min, m.Tier3Max},
	}
	for _, s := range slots {
		if s.price == nil {
			continue
		}
		t := Tier{Price: *s.price, Max: s.max}
		if s.min != nil {
			t.Min = *s.min
		}
		c.Tiers = append(c.Tiers, t)
	}
	return c
}

// ToModel converts c for storage. ID is left to the database.
func (c Category) ToModel() *catalogdb.RaceCategory {
	m := &catalogdb.RaceCategory{
		Name:              c.Name,
		BasePrice:         c.BasePrice,
		EarlyBirdPrice:    c.EarlyBirdPrice,
		BundlePrice:       c.BundlePrice,
		BundleSize:        c.BundleSize,
		EarlyBirdCapacity: c.EarlyBirdCapacity,
	}
	set := []func(t Tier){
		func(t Tier) { m.Tier1Price, m.Tier1Min, m.Tier1Max = &t.Price, &t.Min, t.Max },
		func(t Tier) { m.Tier2Price, m.Tier2Min, m.Tier2Max = &t.Price, &t.Min, t.Max },
		func(t Tier) { m.Tier3Price, m.Tier3Min, m.Tier3Max = &t.Price, &t.Min, t.Max },
	}
	for i, t := range c.Tiers {
		if i >= maxTiers {
			break
		}
		set[i](t)
	}
	return m
}

// ValidateCategory checks the pricing invariants: tiers ordered by increasing
// min, non-overlapping, and priced at or below the base price.
func ValidateCategory(c Category) error {
	if c.Name == "" {
		return apperr.Validationf("category name is required")
	}
	if c.BasePrice < 0 {
		return apperr.Validationf("base price must not be negative")
	}
	if c.EarlyBirdPrice != nil && *c.EarlyBirdPrice < 0 {
		return apperr.Validationf("early-bird price must not be negative")
	}
	if c.EarlyBirdCapacity != nil && *c.EarlyBirdCapacity < 0 {
		return apperr.Validationf("early-bird capacity must not be negative")
	}
	if (c.BundlePrice == nil) != (c.BundleSize == nil) {
		return apperr.Validationf("bundle price and bundle size must be set together")
	}
	if c.BundleSize != nil && *c.BundleSize < 1 {
		return apperr.Validationf("bundle size must be at least 1")
	}
	if len(c.Tiers) > maxTiers {
		return apperr.Validationf("at most %d volume tiers are supported", maxTiers)
	}

	for i, t := range c.Tiers {
		if t.Min < 1 {
			return apperr.Validationf("tier %d: min must be at least 1", i+1)
		}
		if t.Max != nil && *t.Max < t.Min {
			return apperr.Validationf("tier %d: max %d is below min %d", i+1, *t.Max, t.Min)
		}
		if t.Price < 0 || t.Price > c.BasePrice {
			return apperr.Validationf("tier %d: price %d must be between 0 and the base price %d", i+1, t.Price, c.BasePrice)
		}
		if i == 0 {
			continue
		}
		prev := c.Tiers[i-1]
		if t.Min <= prev.Min {
			return apperr.Validationf("tier %d: min %d must be greater than tier %d min %d", i+1, t.Min, i, prev.Min)
		}
		if prev.Max == nil || *prev.Max >= t.Min {
			return apperr.Validationf("tier %d overlaps tier %d", i+1, i)
		}
	}
	return nil
}
