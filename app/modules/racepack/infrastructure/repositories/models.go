package racepackdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// QrCode carries the scan budget for one (registration, category) group.
// ScansRemaining only decreases, and never below zero.
type QrCode struct {
	bun.BaseModel `bun:"table:qr_codes,alias:qr"`

	ID             int64     `bun:"id,pk,autoincrement"`
	RegistrationID int64     `bun:"registration_id,notnull"`
	CategoryID     int64     `bun:"category_id,notnull"`
	Code           uuid.UUID `bun:"code,notnull,type:uuid,unique"`
	TotalPacks     int       `bun:"total_packs,notnull"`
	MaxScans       int       `bun:"max_scans,notnull"`
	ScansRemaining int       `bun:"scans_remaining,notnull"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// RacePackClaim is one successful desk scan.
type RacePackClaim struct {
	bun.BaseModel `bun:"table:race_pack_claims,alias:rpc"`

	ID                int64     `bun:"id,pk,autoincrement"`
	QrCodeID          int64     `bun:"qr_code_id,notnull"`
	ClaimedBy         string    `bun:"claimed_by,notnull"`
	PacksClaimedCount int       `bun:"packs_claimed_count,notnull"`
	CreatedAt         time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// RacePackClaimParticipant links a claim to a participant. A participant is
// linked at most once.
type RacePackClaimParticipant struct {
	bun.BaseModel `bun:"table:race_pack_claim_participants,alias:rpcp"`

	ClaimID       int64 `bun:"claim_id,pk"`
	ParticipantID int64 `bun:"participant_id,pk"`
}

// PackParticipant is the claim-relevant slice of a participant row.
type PackParticipant struct {
	bun.BaseModel `bun:"table:participants,alias:p"`

	ID             int64  `bun:"id,pk"`
	RegistrationID int64  `bun:"registration_id"`
	CategoryID     int64  `bun:"category_id"`
	PackClaimed    bool   `bun:"pack_claimed"`
	JerseySize     string `bun:"jersey_size,scanonly"`
}

// ClaimWithParticipants is a claim and the participant ids it marked.
type ClaimWithParticipants struct {
	RacePackClaim
	ParticipantIDs []int64
}

// RegistrationSummary is the registrant view shown at the desk.
type RegistrationSummary struct {
	RegistrationID int64  `bun:"registration_id"`
	PaymentStatus  string `bun:"payment_status"`
	Name           string `bun:"name"`
	Email          string `bun:"email"`
}

// ClaimReportRow is one line of the claims export.
type ClaimReportRow struct {
	ClaimID           int64     `bun:"claim_id"`
	Code              uuid.UUID `bun:"code"`
	CategoryName      string    `bun:"category_name"`
	ClaimedBy         string    `bun:"claimed_by"`
	PacksClaimedCount int       `bun:"packs_claimed_count"`
	CreatedAt         time.Time `bun:"created_at"`
}

// QrReportRow is one line of the QR code export.
type QrReportRow struct {
	Code           uuid.UUID `bun:"code"`
	RegistrationID int64     `bun:"registration_id"`
	CategoryName   string    `bun:"category_name"`
	TotalPacks     int       `bun:"total_packs"`
	MaxScans       int       `bun:"max_scans"`
	ScansRemaining int       `bun:"scans_remaining"`
}
