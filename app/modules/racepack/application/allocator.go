package racepackservice

import (
	"context"
	"fmt"
	"sort"

	racepackdb "github.com/Black-And-White-Club/racepack/app/modules/racepack/infrastructure/repositories"
	"github.com/Black-And-White-Club/racepack/app/shared/apperr"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultSlack is the number of extra scans a QR code gets beyond its packs.
const DefaultSlack = 3

// Allocator issues QR codes inside a caller's transaction.
type Allocator struct {
	repo  racepackdb.Repository
	newID func() uuid.UUID
}

func NewAllocator(repo racepackdb.Repository) *Allocator {
	return &Allocator{repo: repo, newID: uuid.New}
}

// IssueQrCodes creates one code per category in counts, each with
// max_scans = packs + slack. A (registration, category) pair that already has
// a code keeps it.
func (a *Allocator) IssueQrCodes(ctx context.Context, db bun.IDB, registrationID int64, counts map[int64]int, slack int) ([]QrCode, error) {
	if slack < 0 {
		return nil, apperr.Validationf("slack must not be negative, got %d", slack)
	}

	categoryIDs := make([]int64, 0, len(counts))
	for id, n := range counts {
		if n < 1 {
			return nil, apperr.Validationf("category %d has %d packs", id, n)
		}
		categoryIDs = append(categoryIDs, id)
	}
	sort.Slice(categoryIDs, func(i, j int) bool { return categoryIDs[i] < categoryIDs[j] })

	issued := make([]QrCode, 0, len(categoryIDs))
	for _, categoryID := range categoryIDs {
		packs := counts[categoryID]
		row := &racepackdb.QrCode{
			RegistrationID: registrationID,
			CategoryID:     categoryID,
			Code:           a.newID(),
			TotalPacks:     packs,
			MaxScans:       packs + slack,
			ScansRemaining: packs + slack,
		}
		if _, err := a.repo.InsertQrCode(ctx, db, row); err != nil {
			return nil, fmt.Errorf("failed to issue qr code for category %d: %w", categoryID, err)
		}
		issued = append(issued, qrCodeFromModel(row))
	}
	return issued, nil
}

func qrCodeFromModel(m *racepackdb.QrCode) QrCode {
	return QrCode{
		ID:             m.ID,
		Code:           m.Code.String(),
		RegistrationID: m.RegistrationID,
		CategoryID:     m.CategoryID,
		TotalPacks:     m.TotalPacks,
		MaxScans:       m.MaxScans,
		ScansRemaining: m.ScansRemaining,
	}
}

// ListQrCodes returns the codes issued to a registration, ordered by category.
func (a *Allocator) ListQrCodes(ctx context.Context, db bun.IDB, registrationID int64) ([]QrCode, error) {
	rows, err := a.repo.ListQrCodes(ctx, db, registrationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list qr codes for registration %d: %w", registrationID, err)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CategoryID < rows[j].CategoryID })
	out := make([]QrCode, len(rows))
	for i := range rows {
		out[i] = qrCodeFromModel(&rows[i])
	}
	return out, nil
}
