package authjwt

import (
	"errors"
	"testing"
	"time"

	authdomain "github.com/Black-And-White-Club/racepack/app/modules/auth/domain"
)

func TestProvider_RoundTrip(t *testing.T) {
	p := NewProvider("test-secret")
	claims := &authdomain.Claims{UserID: 7, Role: authdomain.RoleAdmin}

	token, err := p.GenerateToken(claims, time.Hour)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	got, err := p.ValidateToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UserID != 7 {
		t.Errorf("expected user 7, got %d", got.UserID)
	}
	if got.Role != authdomain.RoleAdmin {
		t.Errorf("expected role admin, got %s", got.Role)
	}
	if got.IsExpired() {
		t.Error("token should not be expired")
	}
}

func TestProvider_ValidateToken_Errors(t *testing.T) {
	p := NewProvider("test-secret")
	claims := &authdomain.Claims{UserID: 7, Role: authdomain.RoleAdmin}

	tests := []struct {
		name        string
		token       func(t *testing.T) string
		validator   Provider
		expectedErr error
	}{
		{
			name: "expired token",
			token: func(t *testing.T) string {
				tok, err := p.GenerateToken(claims, -time.Hour)
				if err != nil {
					t.Fatalf("failed to generate token: %v", err)
				}
				return tok
			},
			validator:   p,
			expectedErr: ErrExpiredToken,
		},
		{
			name: "invalid signature",
			token: func(t *testing.T) string {
				tok, err := p.GenerateToken(claims, time.Hour)
				if err != nil {
					t.Fatalf("failed to generate token: %v", err)
				}
				return tok
			},
			validator:   NewProvider("wrong-secret"),
			expectedErr: ErrInvalidSignature,
		},
		{
			name:        "malformed token",
			token:       func(*testing.T) string { return "not.a.jwt" },
			validator:   p,
			expectedErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.validator.ValidateToken(tt.token(t))
			if !errors.Is(err, tt.expectedErr) {
				t.Errorf("expected error %v, got %v", tt.expectedErr, err)
			}
		})
	}
}
