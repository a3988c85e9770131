package notificationservice

import "context"

// Notifier schedules registrant emails. Callers enqueue after their
// transaction commits and treat a failure as non-fatal.
type Notifier interface {
	EnqueueConfirmation(ctx context.Context, job ConfirmationEmailJob) error
	EnqueueDecline(ctx context.Context, job DeclineEmailJob) error
}

// Email is a rendered plain-text message.
type Email struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers rendered emails.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// NoopNotifier drops every notification.
type NoopNotifier struct{}

func (NoopNotifier) EnqueueConfirmation(context.Context, ConfirmationEmailJob) error { return nil }
func (NoopNotifier) EnqueueDecline(context.Context, DeclineEmailJob) error           { return nil }
