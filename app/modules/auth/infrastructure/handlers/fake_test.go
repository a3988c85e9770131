package authhandlers

import (
	"context"
	"time"

	authservice "github.com/Black-And-White-Club/racepack/app/modules/auth/application"
	authdomain "github.com/Black-And-White-Club/racepack/app/modules/auth/domain"
)

type FakeAuthService struct {
	CreateSessionFunc func(ctx context.Context, accessCode string) (*authservice.Session, error)
}

func (f *FakeAuthService) CreateSession(ctx context.Context, accessCode string) (*authservice.Session, error) {
	if f.CreateSessionFunc != nil {
		return f.CreateSessionFunc(ctx, accessCode)
	}
	return &authservice.Session{Token: "t", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

// FakeProvider accepts a fixed token table.
type FakeProvider struct {
	tokens map[string]*authdomain.Claims
}

func (f *FakeProvider) GenerateToken(*authdomain.Claims, time.Duration) (string, error) {
	return "", nil
}

func (f *FakeProvider) ValidateToken(token string) (*authdomain.Claims, error) {
	c, ok := f.tokens[token]
	if !ok {
		return nil, errInvalid
	}
	return c, nil
}
