package registrationdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

var (
	// ErrNotFound is returned when a user, registration or payment does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotPending is returned when a guarded status update finds no pending row.
	ErrNotPending = errors.New("registration is not pending")
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new registration repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

// --- Users ---

func (r *Impl) GetUserByID(ctx context.Context, db bun.IDB, id int64) (*User, error) {
	db = r.resolveDB(db)
	user := new(User)
	if err := db.NewSelect().Model(user).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

func (r *Impl) GetUserByEmail(ctx context.Context, db bun.IDB, email string) (*User, error) {
	db = r.resolveDB(db)
	user := new(User)
	if err := db.NewSelect().Model(user).Where("email = ?", email).Scan(ctx); err != nil {
		return nil, notFound(err, "user by email")
	}
	return user, nil
}

func (r *Impl) GetUserByAccessCode(ctx context.Context, db bun.IDB, code string) (*User, error) {
	db = r.resolveDB(db)
	user := new(User)
	if err := db.NewSelect().Model(user).Where("access_code = ?", code).Scan(ctx); err != nil {
		return nil, notFound(err, "user by access code")
	}
	return user, nil
}

func (r *Impl) CreateUser(ctx context.Context, db bun.IDB, user *User) error {
	db = r.resolveDB(db)
	if user.Role == "" {
		user.Role = RoleUser
	}
	if _, err := db.NewInsert().Model(user).Returning("id, created_at, updated_at").Exec(ctx); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *Impl) UpdateUserProfile(ctx context.Context, db bun.IDB, user *User) error {
	db = r.resolveDB(db)
	user.UpdatedAt = time.Now().UTC()
	_, err := db.NewUpdate().
		Model(user).
		Column("name", "phone", "birth_date", "gender", "current_address", "nationality",
			"id_card_photo_ref", "emergency_phone", "medical_history", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update user %d: %w", user.ID, err)
	}
	return nil
}

func (r *Impl) AccessCodeExists(ctx context.Context, db bun.IDB, code string) (bool, error) {
	db = r.resolveDB(db)
	exists, err := db.NewSelect().Model((*User)(nil)).Where("access_code = ?", code).Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check access code: %w", err)
	}
	return exists, nil
}

// SetAccessCode stores code unless the user already has one, and returns the
// code that is stored afterwards.
func (r *Impl) SetAccessCode(ctx context.Context, db bun.IDB, userID int64, code string) (string, error) {
	db = r.resolveDB(db)
	var stored string
	err := db.NewUpdate().
		Model((*User)(nil)).
		Set("access_code = COALESCE(access_code, ?)", code).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", userID).
		Returning("access_code").
		Scan(ctx, &stored)
	if err != nil {
		return "", notFound(err, fmt.Sprintf("user %d", userID))
	}
	return stored, nil
}

// --- Registrations ---

func (r *Impl) CreateRegistration(ctx context.Context, db bun.IDB, registration *Registration) error {
	db = r.resolveDB(db)
	if registration.PaymentStatus == "" {
		registration.PaymentStatus = StatusPending
	}
	if _, err := db.NewInsert().Model(registration).Returning("id, created_at").Exec(ctx); err != nil {
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

func (r *Impl) GetRegistration(ctx context.Context, db bun.IDB, id int64) (*Registration, error) {
	db = r.resolveDB(db)
	registration := new(Registration)
	err := db.NewSelect().
		Model(registration).
		Relation("User").
		Where("r.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "registration")
	}
	return registration, nil
}

func (r *Impl) LockRegistration(ctx context.Context, db bun.IDB, id int64) (*Registration, error) {
	db = r.resolveDB(db)
	registration := new(Registration)
	err := db.NewSelect().
		Model(registration).
		Where("id = ?", id).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "registration")
	}
	return registration, nil
}

func (r *Impl) ResolvePending(ctx context.Context, db bun.IDB, id int64, status string, reason *string, at time.Time) error {
	db = r.resolveDB(db)
	q := db.NewUpdate().
		Model((*Registration)(nil)).
		Set("payment_status = ?", status).
		Where("id = ?", id).
		Where("payment_status = ?", StatusPending)
	switch status {
	case StatusConfirmed:
		q = q.Set("confirmed_at = ?", at)
	case StatusDeclined:
		q = q.Set("declined_at = ?", at).Set("decline_reason = ?", reason)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update registration %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotPending
	}
	return nil
}

// --- Participants ---

func (r *Impl) CreateParticipants(ctx context.Context, db bun.IDB, participants []Participant) error {
	db = r.resolveDB(db)
	if len(participants) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&participants).Returning("id, created_at").Exec(ctx); err != nil {
		return fmt.Errorf("failed to create participants: %w", err)
	}
	return nil
}

func (r *Impl) ListParticipants(ctx context.Context, db bun.IDB, registrationID int64) ([]Participant, error) {
	db = r.resolveDB(db)
	var participants []Participant
	err := db.NewSelect().
		Model(&participants).
		Where("registration_id = ?", registrationID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return participants, nil
}

// --- Payments ---

func (r *Impl) CreatePayment(ctx context.Context, db bun.IDB, payment *Payment) error {
	db = r.resolveDB(db)
	if payment.Status == "" {
		payment.Status = StatusPending
	}
	if _, err := db.NewInsert().Model(payment).Returning("id, created_at, updated_at").Exec(ctx); err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *Impl) GetPayment(ctx context.Context, db bun.IDB, id int64) (*Payment, error) {
	db = r.resolveDB(db)
	payment := new(Payment)
	if err := db.NewSelect().Model(payment).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, "payment")
	}
	return payment, nil
}

func (r *Impl) ListPayments(ctx context.Context, db bun.IDB, registrationID int64) ([]Payment, error) {
	db = r.resolveDB(db)
	var payments []Payment
	err := db.NewSelect().
		Model(&payments).
		Where("registration_id = ?", registrationID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (r *Impl) ResolvePendingPayments(ctx context.Context, db bun.IDB, registrationID int64, status string) (int, error) {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Payment)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now().UTC()).
		Where("registration_id = ?", registrationID).
		Where("status = ?", StatusPending).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to update payments of registration %d: %w", registrationID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return int(n), nil
}
