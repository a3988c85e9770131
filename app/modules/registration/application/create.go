package registrationservice

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	catalogservice "github.com/Black-And-White-Club/racepack/app/modules/catalog/application"
	registrationdb "github.com/Black-And-White-Club/racepack/app/modules/registration/infrastructure/repositories"
	"github.com/Black-And-White-Club/racepack/app/shared/apperr"
	"github.com/Black-And-White-Club/racepack/app/shared/operation"
	"github.com/Black-And-White-Club/racepack/app/shared/results"
	"github.com/uptrace/bun"
)

const birthDateLayout = "2006-01-02"

// entry is one participant before it is priced and stored.
type entry struct {
	categoryID int64
	jerseySize string
	earlyBird  bool
	bundle     bool

	unitPrice   int64
	pricedEarly bool
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validate checks the request shape and fills defaults. It touches no storage.
func (req *CreateRegistrationRequest) validate() error {
	req.User.Name = strings.TrimSpace(req.User.Name)
	req.User.Email = normalizeEmail(req.User.Email)
	req.User.Phone = strings.TrimSpace(req.User.Phone)
	switch {
	case req.User.Name == "":
		return apperr.Validationf("user.name is required")
	case req.User.Email == "" || !strings.Contains(req.User.Email, "@"):
		return apperr.Validationf("user.email %q is not a valid address", req.User.Email)
	case req.User.Phone == "":
		return apperr.Validationf("user.phone is required")
	}
	if req.User.BirthDate != nil && *req.User.BirthDate != "" {
		if _, err := time.Parse(birthDateLayout, *req.User.BirthDate); err != nil {
			return apperr.Validationf("user.birthDate must be YYYY-MM-DD, got %q", *req.User.BirthDate)
		}
	}

	if req.Type == "" {
		req.Type = registrationdb.TypeIndividual
	}
	if req.Type != registrationdb.TypeIndividual && req.Type != registrationdb.TypeCommunity {
		return apperr.Validationf("unknown registration type %q", req.Type)
	}
	if req.GroupSize < 0 {
		return apperr.Validationf("groupSize must not be negative, got %d", req.GroupSize)
	}
	if len(req.Items) == 0 {
		return apperr.Validationf("at least one item is required")
	}

	for i := range req.Items {
		item := &req.Items[i]
		if item.Type == "" {
			item.Type = req.Type
		}
		if item.CategoryID <= 0 {
			return apperr.Validationf("items[%d].categoryId is required", i)
		}
		switch item.Type {
		case registrationdb.TypeIndividual:
			if strings.TrimSpace(item.JerseySize) == "" {
				return apperr.Validationf("items[%d].jerseySize is required", i)
			}
			if len(item.Jerseys) > 0 {
				return apperr.Validationf("items[%d] is individual and cannot carry a jerseys map", i)
			}
		case registrationdb.TypeCommunity:
			total := 0
			for size, n := range item.Jerseys {
				if n < 0 {
					return apperr.Validationf("items[%d].jerseys[%s] is negative", i, size)
				}
				total += n
			}
			if total == 0 {
				return apperr.Validationf("items[%d] has no jerseys", i)
			}
		default:
			return apperr.Validationf("items[%d] has unknown type %q", i, item.Type)
		}
	}
	return nil
}

// expand turns cart items into one entry per participant. Community sizes are
// expanded in sorted order so ids are assigned deterministically.
func expand(items []Item) []*entry {
	var out []*entry
	for _, item := range items {
		if item.Type == registrationdb.TypeIndividual {
			out = append(out, &entry{categoryID: item.CategoryID, jerseySize: strings.TrimSpace(item.JerseySize), earlyBird: item.EarlyBird, bundle: item.Bundle})
			continue
		}
		sizes := make([]string, 0, len(item.Jerseys))
		for size := range item.Jerseys {
			sizes = append(sizes, size)
		}
		sort.Strings(sizes)
		for _, size := range sizes {
			for range item.Jerseys[size] {
				out = append(out, &entry{categoryID: item.CategoryID, jerseySize: strings.TrimSpace(size), earlyBird: item.EarlyBird, bundle: item.Bundle})
			}
		}
	}
	return out
}

func (s *RegistrationService) CreateRegistration(ctx context.Context, req CreateRegistrationRequest) (CreateRegistrationResult, error) {
	return operation.Unwrap(operation.WithTelemetry(ctx, s.telemetry, "CreateRegistration", req.User.Email, func(ctx context.Context) (results.OperationResult[CreateRegistrationResult, error], error) {
		if err := req.validate(); err != nil {
			return results.FailureResult[CreateRegistrationResult, error](err), nil
		}
		return operation.InTx(ctx, s.coord, "CreateRegistration", func(ctx context.Context, db bun.IDB) (results.OperationResult[CreateRegistrationResult, error], error) {
			res, err := s.createLogic(ctx, db, req)
			return operation.DomainResult(res, err)
		})
	}))
}

// createLogic expects a validated request.
func (s *RegistrationService) createLogic(ctx context.Context, db bun.IDB, req CreateRegistrationRequest) (CreateRegistrationResult, error) {
	user, err := s.upsertUser(ctx, db, req.User)
	if err != nil {
		return CreateRegistrationResult{}, err
	}

	entries := expand(req.Items)
	jerseys, err := s.resolveJerseys(ctx, db, entries)
	if err != nil {
		return CreateRegistrationResult{}, err
	}

	byCategory := make(map[int64][]*entry)
	for _, e := range entries {
		byCategory[e.categoryID] = append(byCategory[e.categoryID], e)
	}
	categoryIDs := make([]int64, 0, len(byCategory))
	for id := range byCategory {
		categoryIDs = append(categoryIDs, id)
	}
	sort.Slice(categoryIDs, func(i, j int) bool { return categoryIDs[i] < categoryIDs[j] })

	// Category rows stay locked until commit, so the remaining slots read
	// here are still free when Reserve runs below.
	locked, err := s.deps.Catalog.LockCategories(ctx, db, categoryIDs)
	if err != nil {
		return CreateRegistrationResult{}, err
	}
	if len(locked) != len(categoryIDs) {
		return CreateRegistrationResult{}, apperr.NotFoundf("one or more of categories %v", categoryIDs)
	}

	var total int64
	earlyCounts := make(map[int64]int)
	for i := range locked {
		category := catalogservice.CategoryFromModel(&locked[i])
		group := byCategory[category.ID]
		if err := s.priceGroup(ctx, db, category, group, req.GroupSize); err != nil {
			return CreateRegistrationResult{}, err
		}
		for _, e := range group {
			total += e.unitPrice
			if e.pricedEarly {
				earlyCounts[category.ID]++
			}
		}
	}

	reg := &registrationdb.Registration{
		UserID:           user.ID,
		RegistrationType: req.Type,
		TotalAmount:      total,
		PaymentStatus:    registrationdb.StatusPending,
	}
	if err := s.repo.CreateRegistration(ctx, db, reg); err != nil {
		return CreateRegistrationResult{}, err
	}

	for _, categoryID := range categoryIDs {
		if n := earlyCounts[categoryID]; n > 0 {
			if _, err := s.deps.Ledger.Reserve(ctx, db, categoryID, reg.ID, n); err != nil {
				return CreateRegistrationResult{}, err
			}
		}
	}

	rows := make([]registrationdb.Participant, len(entries))
	for i, e := range entries {
		rows[i] = registrationdb.Participant{
			RegistrationID: reg.ID,
			CategoryID:     e.categoryID,
			JerseyID:       jerseys[e.jerseySize],
			EarlyBird:      e.pricedEarly,
			UnitPrice:      e.unitPrice,
		}
	}
	if err := s.repo.CreateParticipants(ctx, db, rows); err != nil {
		return CreateRegistrationResult{}, err
	}

	res := CreateRegistrationResult{
		RegistrationID: reg.ID,
		TotalAmount:    total,
		Participants:   make([]ParticipantView, len(rows)),
	}
	for i, p := range rows {
		res.Participants[i] = ParticipantView{
			ID:         p.ID,
			CategoryID: p.CategoryID,
			JerseySize: entries[i].jerseySize,
			EarlyBird:  p.EarlyBird,
			UnitPrice:  p.UnitPrice,
		}
	}
	return res, nil
}

// priceGroup prices every entry of one category. Early-bird entries consume
// the remaining slots in order; once they run out the rest fall through to
// tier or base pricing.
func (s *RegistrationService) priceGroup(ctx context.Context, db bun.IDB, category catalogservice.Category, group []*entry, groupSize int) error {
	remaining, limited, err := s.deps.Ledger.Remaining(ctx, db, category.ID)
	if err != nil {
		return err
	}
	slots := catalogservice.UnlimitedSlots
	if limited {
		slots = remaining
	}
	if groupSize == 0 {
		groupSize = len(group)
	}

	for _, e := range group {
		quote, err := catalogservice.Price(category, catalogservice.PriceRequest{
			GroupSize:               groupSize,
			EarlyBird:               e.earlyBird,
			EarlyBirdSlotsAvailable: slots,
			Bundle:                  e.bundle,
		})
		if err != nil {
			return fmt.Errorf("category %s: %w", category.Name, err)
		}
		e.unitPrice = quote.UnitPrice
		if quote.Rule == catalogservice.RuleEarlyBird {
			e.pricedEarly = true
			if limited {
				slots--
			}
		}
	}
	return nil
}

// resolveJerseys maps every requested size to its jersey option id.
func (s *RegistrationService) resolveJerseys(ctx context.Context, db bun.IDB, entries []*entry) (map[string]int64, error) {
	seen := make(map[string]bool)
	var sizes []string
	for _, e := range entries {
		if !seen[e.jerseySize] {
			seen[e.jerseySize] = true
			sizes = append(sizes, e.jerseySize)
		}
	}
	options, err := s.deps.Catalog.GetJerseysBySize(ctx, db, sizes)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(sizes))
	for _, size := range sizes {
		opt, ok := options[size]
		if !ok {
			return nil, apperr.Validationf("unknown jersey size %q", size)
		}
		ids[size] = opt.ID
	}
	return ids, nil
}

// upsertUser finds the registrant by email or creates them, applying any
// profile fields the request carries.
func (s *RegistrationService) upsertUser(ctx context.Context, db bun.IDB, in UserInput) (*registrationdb.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, db, in.Email)
	switch {
	case errors.Is(err, registrationdb.ErrNotFound):
		user = &registrationdb.User{
			Name:  in.Name,
			Email: in.Email,
			Phone: in.Phone,
			Role:  registrationdb.RoleUser,
		}
		applyProfile(user, in)
		if err := s.repo.CreateUser(ctx, db, user); err != nil {
			return nil, err
		}
		return user, nil
	case err != nil:
		return nil, err
	}

	user.Phone = in.Phone
	applyProfile(user, in)
	if err := s.repo.UpdateUserProfile(ctx, db, user); err != nil {
		return nil, err
	}
	return user, nil
}

// applyProfile copies the non-empty optional fields onto user. BirthDate has
// already been validated.
func applyProfile(user *registrationdb.User, in UserInput) {
	set := func(dst **string, v *string) {
		if v != nil && strings.TrimSpace(*v) != "" {
			val := strings.TrimSpace(*v)
			*dst = &val
		}
	}
	set(&user.Gender, in.Gender)
	set(&user.CurrentAddress, in.CurrentAddress)
	set(&user.Nationality, in.Nationality)
	set(&user.EmergencyPhone, in.EmergencyPhone)
	set(&user.MedicalHistory, in.MedicalHistory)
	set(&user.IDCardPhotoRef, in.IDCardPhotoRef)
	if in.BirthDate != nil && *in.BirthDate != "" {
		if t, err := time.Parse(birthDateLayout, *in.BirthDate); err == nil {
			user.BirthDate = &t
		}
	}
}
