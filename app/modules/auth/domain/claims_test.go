package authdomain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClaims_IsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{name: "future", expiresAt: time.Now().Add(time.Hour), want: false},
		{name: "past", expiresAt: time.Now().Add(-time.Minute), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Claims{ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.want, c.IsExpired())
		})
	}
}

func TestClaimsContext(t *testing.T) {
	_, ok := ClaimsFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithClaims(context.Background(), &Claims{UserID: 4, Role: RoleAdmin})
	c, ok := ClaimsFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(4), c.UserID)
	assert.True(t, c.Role.IsValid())
	assert.False(t, Role("editor").IsValid())
}
