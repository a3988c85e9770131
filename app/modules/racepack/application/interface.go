package racepackservice

import (
	"context"
	"time"
)

// Service defines the race-pack desk operations.
type Service interface {
	// Claim consumes scan budget and marks participants' packs as handed out.
	Claim(ctx context.Context, req ClaimRequest) (ClaimResult, error)
	GetQrCodeState(ctx context.Context, code string) (QrCodeState, error)
	// ExportClaimsReport renders every claim and QR code as an XLSX workbook.
	ExportClaimsReport(ctx context.Context) ([]byte, error)
}

// ClaimRequest asks for RequestedCount packs from one QR code. ParticipantIDs
// optionally names the participants; otherwise the lowest unclaimed ids are used.
type ClaimRequest struct {
	QrCodeData     string  `json:"qrCodeData"`
	RequestedCount int     `json:"requestedCount"`
	ParticipantIDs []int64 `json:"participantIds,omitempty"`
	ClaimedBy      string  `json:"claimedBy"`
}

// ClaimResult is the outcome of a successful claim.
type ClaimResult struct {
	ClaimID            int64   `json:"claimId"`
	ParticipantsMarked []int64 `json:"participantsMarked"`
	ScansRemaining     int     `json:"scansRemaining"`
}

// QrCode is an issued QR code.
type QrCode struct {
	ID             int64  `json:"id"`
	Code           string `json:"code"`
	RegistrationID int64  `json:"registrationId"`
	CategoryID     int64  `json:"categoryId"`
	TotalPacks     int    `json:"totalPacks"`
	MaxScans       int    `json:"maxScans"`
	ScansRemaining int    `json:"scansRemaining"`
}

// QrCodeState is the desk view of a QR code.
type QrCodeState struct {
	QrCode
	CategoryName  string            `json:"categoryName"`
	Registrant    string            `json:"registrant"`
	Email         string            `json:"email"`
	PaymentStatus string            `json:"paymentStatus"`
	Participants  []ParticipantView `json:"participants"`
	Claims        []ClaimView       `json:"claims"`
}

type ParticipantView struct {
	ID          int64  `json:"id"`
	JerseySize  string `json:"jerseySize"`
	PackClaimed bool   `json:"packClaimed"`
}

type ClaimView struct {
	ID                int64     `json:"id"`
	ClaimedBy         string    `json:"claimedBy"`
	PacksClaimedCount int       `json:"packsClaimedCount"`
	ParticipantIDs    []int64   `json:"participantIds"`
	CreatedAt         time.Time `json:"createdAt"`
}
