package racepackdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for QR code and claim persistence.
type Repository interface {
	// InsertQrCode stores qr unless its (registration, category) pair already
	// has a code, in which case qr is overwritten with the stored row.
	InsertQrCode(ctx context.Context, db bun.IDB, qr *QrCode) (created bool, err error)
	ListQrCodes(ctx context.Context, db bun.IDB, registrationID int64) ([]QrCode, error)
	GetQrCodeByCode(ctx context.Context, db bun.IDB, code uuid.UUID) (*QrCode, error)
	// LockQrCodeByCode loads the code with FOR UPDATE.
	LockQrCodeByCode(ctx context.Context, db bun.IDB, code uuid.UUID) (*QrCode, error)
	// DecrementScans subtracts count when at least count scans remain and
	// returns the new balance, or ErrInsufficientScans.
	DecrementScans(ctx context.Context, db bun.IDB, qrCodeID int64, count int) (int, error)

	// ListParticipants returns the group's participants by ascending id, with jersey sizes.
	ListParticipants(ctx context.Context, db bun.IDB, registrationID, categoryID int64) ([]PackParticipant, error)
	LockParticipantsByIDs(ctx context.Context, db bun.IDB, ids []int64) ([]PackParticipant, error)
	// LockUnclaimedParticipants locks up to limit unclaimed participants of the group by ascending id.
	LockUnclaimedParticipants(ctx context.Context, db bun.IDB, registrationID, categoryID int64, limit int) ([]PackParticipant, error)
	// MarkClaimed flips pack_claimed for ids that are still unclaimed and returns how many changed.
	MarkClaimed(ctx context.Context, db bun.IDB, ids []int64) (int, error)

	InsertClaim(ctx context.Context, db bun.IDB, claim *RacePackClaim, participantIDs []int64) error
	ListClaims(ctx context.Context, db bun.IDB, qrCodeID int64) ([]ClaimWithParticipants, error)

	GetRegistrationSummary(ctx context.Context, db bun.IDB, registrationID int64) (*RegistrationSummary, error)
	CategoryNames(ctx context.Context, db bun.IDB) (map[int64]string, error)
	ClaimsReport(ctx context.Context, db bun.IDB) ([]ClaimReportRow, error)
	QrCodesReport(ctx context.Context, db bun.IDB) ([]QrReportRow, error)
}
