package catalogservice

import (
	"github.com/Black-And-White-Club/racepack/app/shared/apperr"
)

// PriceRule names the rule that produced a unit price.
type PriceRule string

const (
	RuleEarlyBird PriceRule = "early_bird"
	RuleTier      PriceRule = "tier"
	RuleBase      PriceRule = "base"
	RuleBundle    PriceRule = "bundle"
)

// PriceRequest is the input to Price.
type PriceRequest struct {
	GroupSize int
	// EarlyBird opts into the early-bird rate.
	EarlyBird bool
	// EarlyBirdSlotsAvailable is the number of unreserved early-bird slots;
	// callers pass UnlimitedSlots for categories without a capacity.
	EarlyBirdSlotsAvailable int
	// Bundle selects the bundle rate explicitly. It is never chosen implicitly.
	Bundle bool
}

// UnlimitedSlots stands in for the remaining slots of an uncapped category.
const UnlimitedSlots = int(^uint32(0) >> 1)

// Quote is a unit price and the rule that produced it.
type Quote struct {
	UnitPrice int64     `json:"unitPrice"`
	Rule      PriceRule `json:"rule"`
}

// Price returns the unit price for one participant in category c. It has no
// side effects, so identical inputs always produce the same quote and
// historical totals can be recomputed from stored inputs.
//
// Precedence: early-bird (opted in, slots left, price configured), then the
// volume tier containing the group size, then the base price. Bundle pricing
// is a separate mode and requires a whole number of bundles.
func Price(c Category, req PriceRequest) (Quote, error) {
	if req.GroupSize < 1 {
		return Quote{}, apperr.Validationf("group size must be at least 1, got %d", req.GroupSize)
	}

	if req.Bundle {
		if req.EarlyBird {
			return Quote{}, apperr.Validationf("bundle and early-bird pricing cannot be combined")
		}
		if c.BundlePrice == nil || c.BundleSize == nil || *c.BundleSize < 1 {
			return Quote{}, apperr.Validationf("category %q has no bundle pricing", c.Name)
		}
		if req.GroupSize%*c.BundleSize != 0 {
			return Quote{}, apperr.Validationf("group size %d is not a multiple of the %q bundle size %d", req.GroupSize, c.Name, *c.BundleSize)
		}
		return Quote{UnitPrice: *c.BundlePrice, Rule: RuleBundle}, nil
	}

	if req.EarlyBird && req.EarlyBirdSlotsAvailable > 0 && c.EarlyBirdPrice != nil {
		return Quote{UnitPrice: *c.EarlyBirdPrice, Rule: RuleEarlyBird}, nil
	}

	if tier, ok := tierFor(c.Tiers, req.GroupSize); ok {
		return Quote{UnitPrice: tier.Price, Rule: RuleTier}, nil
	}

	return Quote{UnitPrice: c.BasePrice, Rule: RuleBase}, nil
}

// tierFor picks the tier containing groupSize. If data entry left tiers
// overlapping, the one with the higher min wins.
func tierFor(tiers []Tier, groupSize int) (Tier, bool) {
	var (
		best  Tier
		found bool
	)
	for _, t := range tiers {
		if !t.contains(groupSize) {
			continue
		}
		if !found || t.Min > best.Min {
			best, found = t, true
		}
	}
	return best, found
}
