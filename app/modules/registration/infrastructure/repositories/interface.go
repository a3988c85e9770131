package registrationdb

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Repository defines the contract for registration persistence.
type Repository interface {
	// --- Users ---

	GetUserByID(ctx context.Context, db bun.IDB, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, db bun.IDB, email string) (*User, error)
	GetUserByAccessCode(ctx context.Context, db bun.IDB, code string) (*User, error)
	CreateUser(ctx context.Context, db bun.IDB, user *User) error
	// UpdateUserProfile overwrites the optional profile columns and phone.
	UpdateUserProfile(ctx context.Context, db bun.IDB, user *User) error
	AccessCodeExists(ctx context.Context, db bun.IDB, code string) (bool, error)
	SetAccessCode(ctx context.Context, db bun.IDB, userID int64, code string) (string, error)

	// --- Registrations ---

	CreateRegistration(ctx context.Context, db bun.IDB, registration *Registration) error
	// GetRegistration loads a registration with its user.
	GetRegistration(ctx context.Context, db bun.IDB, id int64) (*Registration, error)
	// LockRegistration loads a registration with FOR UPDATE.
	LockRegistration(ctx context.Context, db bun.IDB, id int64) (*Registration, error)
	// ResolvePending moves a pending registration to status. It returns
	// ErrNotPending when the row is no longer pending.
	ResolvePending(ctx context.Context, db bun.IDB, id int64, status string, reason *string, at time.Time) error

	// --- Participants ---

	CreateParticipants(ctx context.Context, db bun.IDB, participants []Participant) error
	ListParticipants(ctx context.Context, db bun.IDB, registrationID int64) ([]Participant, error)

	// --- Payments ---

	CreatePayment(ctx context.Context, db bun.IDB, payment *Payment) error
	GetPayment(ctx context.Context, db bun.IDB, id int64) (*Payment, error)
	ListPayments(ctx context.Context, db bun.IDB, registrationID int64) ([]Payment, error)
	// ResolvePendingPayments moves every pending payment of a registration to
	// status and returns how many changed.
	ResolvePendingPayments(ctx context.Context, db bun.IDB, registrationID int64, status string) (int, error)
}
