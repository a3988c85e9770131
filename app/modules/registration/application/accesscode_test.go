package registrationservice

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccessCodeBase(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	tests := []struct {
		name  string
		user  string
		email string
		id    int64
		want  string
	}{
		{name: "name", user: "Ana Pratiwi", want: "ana_pratiwi"},
		{name: "punctuation dropped", user: "  Dr. Budi   O'Neil! ", want: "dr_budi_oneil"},
		{name: "email fallback", email: "Citra.Dewi@Example.com", want: "citradewiexamplecom"},
		{name: "id fallback", id: 42, want: "user42"},
		{name: "capped at 30", user: "abcdefghij abcdefghij abcdefghij abcdefghij", want: "abcdefghij_abcdefghij_abcdefgh"},
		{name: "no trailing underscore after cap", user: "abcdefghijklmnopqrstuvwxyzabc d", want: "abcdefghijklmnopqrstuvwxyzabc"},
		{name: "nothing usable", user: "日本語", want: "u" + strconv.FormatInt(1700000000000, 36)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AccessCodeBase(tt.user, tt.email, tt.id, now)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), 30)
		})
	}
}
