package registrationdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Registration and payment statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusDeclined  = "declined"
)

// Registration types.
const (
	TypeIndividual = "individual"
	TypeCommunity  = "community"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registrant. AccessCode is minted on the first confirmed payment.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID             int64      `bun:"id,pk,autoincrement"`
	Name           string     `bun:"name,notnull"`
	Email          string     `bun:"email,notnull,unique"`
	Phone          string     `bun:"phone,notnull"`
	AccessCode     *string    `bun:"access_code,unique"`
	Role           string     `bun:"role,notnull,default:'user'"`
	BirthDate      *time.Time `bun:"birth_date"`
	Gender         *string    `bun:"gender"`
	CurrentAddress *string    `bun:"current_address"`
	Nationality    *string    `bun:"nationality"`
	IDCardPhotoRef *string    `bun:"id_card_photo_ref"`
	EmergencyPhone *string    `bun:"emergency_phone"`
	MedicalHistory *string    `bun:"medical_history"`
	CreatedAt      time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt      time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

// Registration is one purchase. TotalAmount is fixed at creation.
type Registration struct {
	bun.BaseModel `bun:"table:registrations,alias:r"`

	ID               int64      `bun:"id,pk,autoincrement"`
	UserID           int64      `bun:"user_id,notnull"`
	RegistrationType string     `bun:"registration_type,notnull"`
	TotalAmount      int64      `bun:"total_amount,notnull"`
	PaymentStatus    string     `bun:"payment_status,notnull,default:'pending'"`
	DeclineReason    *string    `bun:"decline_reason"`
	ConfirmedAt      *time.Time `bun:"confirmed_at"`
	DeclinedAt       *time.Time `bun:"declined_at"`
	CreatedAt        time.Time  `bun:"created_at,notnull,default:current_timestamp"`

	User *User `bun:"rel:belongs-to,join:user_id=id"`
}

// Participant is one race entry. EarlyBird marks entries priced at the
// early-bird rate, each holding one early-bird claim.
type Participant struct {
	bun.BaseModel `bun:"table:participants,alias:p"`

	ID             int64     `bun:"id,pk,autoincrement"`
	RegistrationID int64     `bun:"registration_id,notnull"`
	CategoryID     int64     `bun:"category_id,notnull"`
	JerseyID       int64     `bun:"jersey_id,notnull"`
	EarlyBird      bool      `bun:"early_bird,notnull,default:false"`
	UnitPrice      int64     `bun:"unit_price,notnull"`
	PackClaimed    bool      `bun:"pack_claimed,notnull,default:false"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Payment is a submitted proof of payment awaiting review.
type Payment struct {
	bun.BaseModel `bun:"table:payments,alias:pay"`

	ID             int64     `bun:"id,pk,autoincrement"`
	RegistrationID int64     `bun:"registration_id,notnull"`
	TransactionID  uuid.UUID `bun:"transaction_id,notnull,type:uuid,unique"`
	Amount         int64     `bun:"amount,notnull"`
	ProofRef       string    `bun:"proof_ref,notnull"`
	Status         string    `bun:"status,notnull,default:'pending'"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt      time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
