package notificationservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderConfirmation(t *testing.T) {
	email, err := RenderConfirmation(ConfirmationEmailJob{
		RegistrationID: 12,
		Email:          "ana@example.com",
		Name:           "Ana",
		AccessCode:     "ana_putri",
		TotalAmount:    1350000,
		QrCodes: []QrCodeLine{
			{Code: "c0ffee", CategoryName: "5km", TotalPacks: 4, MaxScans: 7},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", email.To)
	assert.Equal(t, "Registration #12 confirmed", email.Subject)
	assert.Contains(t, email.Body, "Hi Ana,")
	assert.Contains(t, email.Body, "(1.350.000)")
	assert.Contains(t, email.Body, "Your access code: ana_putri")
	assert.Contains(t, email.Body, "5km: c0ffee (4 pack(s), 7 scans)")
}

func TestRenderDecline(t *testing.T) {
	email, err := RenderDecline(DeclineEmailJob{RegistrationID: 3, Email: "b@example.com", Name: "Budi", Reason: "Blurry receipt"})
	require.NoError(t, err)

	assert.Equal(t, "Registration #3 payment declined", email.Subject)
	assert.Contains(t, email.Body, "Reason: Blurry receipt")
}

func TestFormatMoney(t *testing.T) {
	tests := map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1.000",
		225000:   "225.000",
		10125000: "10.125.000",
		-150000:  "-150.000",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatMoney(in))
	}
}
