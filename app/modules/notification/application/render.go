package notificationservice

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

var confirmationTemplate = template.Must(template.New("confirmation").Funcs(template.FuncMap{
	"money": formatMoney,
}).Parse(`Hi {{.Name}},

Your payment for registration #{{.RegistrationID}} ({{money .TotalAmount}}) has been confirmed.
{{if .AccessCode}}
Your access code: {{.AccessCode}}
{{end}}
Show these QR codes at the race-pack desk:
{{range .QrCodes}}
  {{.CategoryName}}: {{.Code}} ({{.TotalPacks}} pack(s), {{.MaxScans}} scans)
{{- end}}

See you at the start line!
`))

var declineTemplate = template.Must(template.New("decline").Parse(`Hi {{.Name}},

We could not accept the payment for registration #{{.RegistrationID}}.

Reason: {{.Reason}}

Your registration has been cancelled and any early-bird slots were released.
Reply to this email if you believe this is a mistake.
`))

// RenderConfirmation renders the confirmation email for job.
func RenderConfirmation(job ConfirmationEmailJob) (Email, error) {
	var body bytes.Buffer
	if err := confirmationTemplate.Execute(&body, job); err != nil {
		return Email{}, fmt.Errorf("failed to render confirmation email: %w", err)
	}
	return Email{
		To:      job.Email,
		Subject: fmt.Sprintf("Registration #%d confirmed", job.RegistrationID),
		Body:    body.String(),
	}, nil
}

// RenderDecline renders the decline email for job.
func RenderDecline(job DeclineEmailJob) (Email, error) {
	var body bytes.Buffer
	if err := declineTemplate.Execute(&body, job); err != nil {
		return Email{}, fmt.Errorf("failed to render decline email: %w", err)
	}
	return Email{
		To:      job.Email,
		Subject: fmt.Sprintf("Registration #%d payment declined", job.RegistrationID),
		Body:    body.String(),
	}, nil
}

// formatMoney renders minor units with thousands separators, e.g. 1350000 -> "1.350.000".
func formatMoney(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := fmt.Sprint(amount)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
