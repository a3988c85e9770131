package registrationservice

import (
	"context"
	"time"

	racepackservice "github.com/Black-And-White-Club/racepack/app/modules/racepack/application"
	"github.com/uptrace/bun"
)

// Service defines the registration and payment review operations.
type Service interface {
	CreateRegistration(ctx context.Context, req CreateRegistrationRequest) (CreateRegistrationResult, error)
	// SubmitPayment records a proof of payment, creating the registration
	// first when the request carries one.
	SubmitPayment(ctx context.Context, req SubmitPaymentRequest) (SubmitPaymentResult, error)
	ConfirmPayment(ctx context.Context, registrationID int64) (RegistrationView, error)
	DeclinePayment(ctx context.Context, registrationID int64, reason string) (RegistrationView, error)
	GetRegistration(ctx context.Context, registrationID int64) (RegistrationView, error)
	// GetPaymentProof returns a short-lived link to the uploaded proof.
	GetPaymentProof(ctx context.Context, paymentID int64) (string, error)
}

// CapacityLedger is the slice of the early-bird ledger registration needs.
// Every method runs in the caller's transaction.
type CapacityLedger interface {
	Remaining(ctx context.Context, db bun.IDB, categoryID int64) (remaining int, limited bool, err error)
	Reserve(ctx context.Context, db bun.IDB, categoryID, registrationID int64, count int) ([]int64, error)
	ReleaseForRegistration(ctx context.Context, db bun.IDB, registrationID int64, perCategory map[int64]int) (int, error)
}

// QrIssuer issues and lists race-pack QR codes in the caller's transaction.
type QrIssuer interface {
	IssueQrCodes(ctx context.Context, db bun.IDB, registrationID int64, counts map[int64]int, slack int) ([]racepackservice.QrCode, error)
	ListQrCodes(ctx context.Context, db bun.IDB, registrationID int64) ([]racepackservice.QrCode, error)
}

// UserInput identifies the registrant. Email is the lookup key; the optional
// profile fields overwrite stored values when set.
type UserInput struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	BirthDate      *string `json:"birthDate,omitempty"`
	Gender         *string `json:"gender,omitempty"`
	CurrentAddress *string `json:"currentAddress,omitempty"`
	Nationality    *string `json:"nationality,omitempty"`
	EmergencyPhone *string `json:"emergencyPhone,omitempty"`
	MedicalHistory *string `json:"medicalHistory,omitempty"`
	// IDCardPhotoRef is the blob key of an uploaded ID card, set by the
	// payment handler.
	IDCardPhotoRef *string `json:"-"`
}

// Item is one cart line. Individual items carry JerseySize and yield one
// participant; community items carry Jerseys (size to count).
type Item struct {
	Type       string         `json:"type,omitempty"`
	CategoryID int64          `json:"categoryId"`
	JerseySize string         `json:"jerseySize,omitempty"`
	Jerseys    map[string]int `json:"jerseys,omitempty"`
	EarlyBird  bool           `json:"earlyBird,omitempty"`
	Bundle     bool           `json:"bundle,omitempty"`
}

// CreateRegistrationRequest creates a pending registration. GroupSize
// overrides the per-category participant count used for tier pricing.
type CreateRegistrationRequest struct {
	User      UserInput `json:"user"`
	Type      string    `json:"type"`
	Items     []Item    `json:"items"`
	GroupSize int       `json:"groupSize,omitempty"`
}

type CreateRegistrationResult struct {
	RegistrationID int64             `json:"registrationId"`
	TotalAmount    int64             `json:"totalAmount"`
	Participants   []ParticipantView `json:"participants"`
}

// SubmitPaymentRequest names an existing registration or carries a new one.
// Amount defaults to the registration total when zero.
type SubmitPaymentRequest struct {
	RegistrationID  int64                      `json:"registrationId,omitempty"`
	NewRegistration *CreateRegistrationRequest `json:"registration,omitempty"`
	Amount          int64                      `json:"amount,omitempty"`
	ProofRef        string                     `json:"-"`
}

type SubmitPaymentResult struct {
	PaymentID      int64  `json:"paymentId"`
	RegistrationID int64  `json:"registrationId"`
	TransactionID  string `json:"transactionId"`
	Amount         int64  `json:"amount"`
}

type ParticipantView struct {
	ID          int64  `json:"id"`
	CategoryID  int64  `json:"categoryId"`
	JerseySize  string `json:"jerseySize"`
	EarlyBird   bool   `json:"earlyBird"`
	UnitPrice   int64  `json:"unitPrice"`
	PackClaimed bool   `json:"packClaimed"`
}

type PaymentView struct {
	ID            int64     `json:"id"`
	TransactionID string    `json:"transactionId"`
	Amount        int64     `json:"amount"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

type UserView struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	AccessCode *string `json:"accessCode"`
}

// RegistrationView is the admin view of a registration.
type RegistrationView struct {
	ID            int64                    `json:"id"`
	Type          string                   `json:"type"`
	Status        string                   `json:"status"`
	TotalAmount   int64                    `json:"totalAmount"`
	DeclineReason *string                  `json:"declineReason,omitempty"`
	ConfirmedAt   *time.Time               `json:"confirmedAt,omitempty"`
	DeclinedAt    *time.Time               `json:"declinedAt,omitempty"`
	CreatedAt     time.Time                `json:"createdAt"`
	User          UserView                 `json:"user"`
	Participants  []ParticipantView        `json:"participants"`
	Payments      []PaymentView            `json:"payments"`
	QrCodes       []racepackservice.QrCode `json:"qrCodes"`
}
