package notification

import (
	"context"
	"fmt"

	notificationservice "github.com/Black-And-White-Club/racepack/app/modules/notification/application"
	"github.com/Black-And-White-Club/racepack/app/modules/notification/infrastructure/mailer"
	notificationqueue "github.com/Black-And-White-Club/racepack/app/modules/notification/infrastructure/queue"
	"github.com/Black-And-White-Club/racepack/app/shared/observability"
)

// Module represents the notification module.
type Module struct {
	Notifier notificationservice.Notifier
	queue    *notificationqueue.Service
}

// NewNotificationModule builds the mailer and the River queue over dsn.
func NewNotificationModule(
	ctx context.Context,
	obs *observability.Observability,
	dsn string,
	queueCfg notificationqueue.Config,
	mailCfg mailer.Config,
) (*Module, error) {
	obs.Logger.InfoContext(ctx, "notification.NewNotificationModule initializing")

	m := mailer.New(mailCfg, obs.Logger)
	queue, err := notificationqueue.NewService(ctx, dsn, queueCfg, m, obs.Logger, obs.Metrics("notification"))
	if err != nil {
		return nil, fmt.Errorf("failed to create notification queue: %w", err)
	}
	return &Module{Notifier: queue, queue: queue}, nil
}

// Start starts the email workers.
func (m *Module) Start(ctx context.Context) error {
	return m.queue.Start(ctx)
}

// Stop drains the email workers.
func (m *Module) Stop(ctx context.Context) error {
	return m.queue.Stop(ctx)
}
