package authservice

import (
	"context"
	"time"

	authdomain "github.com/Black-And-White-Club/racepack/app/modules/auth/domain"
	registrationdb "github.com/Black-And-White-Club/racepack/app/modules/registration/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// FakeUserLookup is an in-memory access code index.
type FakeUserLookup struct {
	users map[string]*registrationdb.User
	err   error
	trace []string
}

func NewFakeUserLookup(users ...*registrationdb.User) *FakeUserLookup {
	f := &FakeUserLookup{users: map[string]*registrationdb.User{}}
	for _, u := range users {
		f.users[*u.AccessCode] = u
	}
	return f
}

func (f *FakeUserLookup) GetUserByAccessCode(_ context.Context, _ bun.IDB, code string) (*registrationdb.User, error) {
	f.trace = append(f.trace, "GetUserByAccessCode:"+code)
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[code]
	if !ok {
		return nil, registrationdb.ErrNotFound
	}
	return u, nil
}

// FakeProvider records the claims it was asked to sign.
type FakeProvider struct {
	GenerateTokenFunc func(claims *authdomain.Claims, ttl time.Duration) (string, error)
	signed            []*authdomain.Claims
}

func (f *FakeProvider) GenerateToken(claims *authdomain.Claims, ttl time.Duration) (string, error) {
	f.signed = append(f.signed, claims)
	if f.GenerateTokenFunc != nil {
		return f.GenerateTokenFunc(claims, ttl)
	}
	return "token-for-" + claims.Role.String(), nil
}

func (f *FakeProvider) ValidateToken(string) (*authdomain.Claims, error) {
	return nil, nil
}
