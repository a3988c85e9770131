package authservice

import (
	"context"
	"time"

	registrationdb "github.com/Black-And-White-Club/racepack/app/modules/registration/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// Service defines the interface for admin authentication.
type Service interface {
	// CreateSession exchanges an admin access code for a signed bearer token.
	CreateSession(ctx context.Context, accessCode string) (*Session, error)
}

// UserLookup is the slice of the registration repository the auth service reads.
type UserLookup interface {
	GetUserByAccessCode(ctx context.Context, db bun.IDB, code string) (*registrationdb.User, error)
}

// Session is the result of a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
