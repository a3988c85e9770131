package mailer

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	notificationservice "github.com/Black-And-White-Club/racepack/app/modules/notification/application"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FallsBackToLog(t *testing.T) {
	var buf bytes.Buffer
	m := New(Config{}, slog.New(slog.NewTextHandler(&buf, nil)))

	require.IsType(t, &LogMailer{}, m)
	require.NoError(t, m.Send(context.Background(), notificationservice.Email{To: "a@example.com", Subject: "hi"}))
	assert.Contains(t, buf.String(), "a@example.com")

	assert.IsType(t, &SMTPMailer{}, New(Config{Host: "smtp.example.com", Port: 587}, slog.Default()))
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("race@example.com", notificationservice.Email{
		To:      "a@example.com",
		Subject: "Registration #1 confirmed",
		Body:    "line one\nline two\n",
	}))

	assert.Contains(t, msg, "From: race@example.com\r\n")
	assert.Contains(t, msg, "Subject: Registration #1 confirmed\r\n")
	assert.Contains(t, msg, "\r\n\r\nline one\r\nline two\r\n")
}
