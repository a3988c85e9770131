// Package mailer delivers notification emails over SMTP, or to the log when
// no SMTP server is configured.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	notificationservice "github.com/Black-And-White-Club/racepack/app/modules/notification/application"
	"github.com/Black-And-White-Club/racepack/app/shared/observability/attr"
)

// Config holds SMTP settings. Port 465 uses implicit TLS; other ports use STARTTLS
// when the server offers it.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// New returns an SMTP mailer, or a LogMailer when cfg.Host is empty.
func New(cfg Config, logger *slog.Logger) notificationservice.Mailer {
	if cfg.Host == "" {
		return &LogMailer{logger: logger}
	}
	return &SMTPMailer{cfg: cfg}
}

// SMTPMailer sends plain-text email through an SMTP relay.
type SMTPMailer struct {
	cfg Config
}

func (m *SMTPMailer) Send(ctx context.Context, email notificationservice.Email) error {
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	var conn net.Conn
	var err error
	if m.cfg.Port == 465 {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: m.cfg.Host}}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to start SMTP session: %w", err)
	}
	defer client.Close()

	if m.cfg.Port != 465 {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
				return fmt.Errorf("STARTTLS failed: %w", err)
			}
		}
	}
	if m.cfg.Username != "" {
		if err := client.Auth(smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)); err != nil {
			return fmt.Errorf("SMTP auth failed: %w", err)
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}
	if err := client.Rcpt(email.To); err != nil {
		return fmt.Errorf("RCPT TO failed: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA failed: %w", err)
	}
	if _, err := w.Write(buildMessage(m.cfg.From, email)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}
	return client.Quit()
}

func buildMessage(from string, email notificationservice.Email) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + email.To + "\r\n")
	b.WriteString("Subject: " + email.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(email.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// LogMailer writes emails to the log instead of sending them.
type LogMailer struct {
	logger *slog.Logger
}

func (m *LogMailer) Send(ctx context.Context, email notificationservice.Email) error {
	m.logger.InfoContext(ctx, "Email (SMTP not configured)",
		attr.String("to", email.To),
		attr.String("subject", email.Subject),
		attr.String("body", email.Body),
	)
	return nil
}
