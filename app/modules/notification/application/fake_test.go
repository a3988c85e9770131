package notificationservice

import (
	"context"
	"sync"
)

type FakeMailer struct {
	mu   sync.Mutex
	sent []Email

	SendFunc func(ctx context.Context, email Email) error
}

func (f *FakeMailer) Send(ctx context.Context, email Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendFunc != nil {
		if err := f.SendFunc(ctx, email); err != nil {
			return err
		}
	}
	f.sent = append(f.sent, email)
	return nil
}

func (f *FakeMailer) Sent() []Email {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Email(nil), f.sent...)
}

var _ Mailer = (*FakeMailer)(nil)
