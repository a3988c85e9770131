package notificationservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/racepack/app/shared/apperr"
	"github.com/Black-And-White-Club/racepack/app/shared/observability/attr"
	"github.com/riverqueue/river"
)

// ConfirmationEmailWorker sends confirmation emails.
type ConfirmationEmailWorker struct {
	river.WorkerDefaults[ConfirmationEmailJob]
	mailer Mailer
	logger *slog.Logger
}

func NewConfirmationEmailWorker(mailer Mailer, logger *slog.Logger) *ConfirmationEmailWorker {
	return &ConfirmationEmailWorker{mailer: mailer, logger: logger}
}

func (w *ConfirmationEmailWorker) Work(ctx context.Context, job *river.Job[ConfirmationEmailJob]) error {
	email, err := RenderConfirmation(job.Args)
	if err != nil {
		return river.JobCancel(err)
	}
	return send(ctx, w.mailer, w.logger, job.JobRow.Attempt, job.Args.RegistrationID, email)
}

// DeclineEmailWorker sends decline emails.
type DeclineEmailWorker struct {
	river.WorkerDefaults[DeclineEmailJob]
	mailer Mailer
	logger *slog.Logger
}

func NewDeclineEmailWorker(mailer Mailer, logger *slog.Logger) *DeclineEmailWorker {
	return &DeclineEmailWorker{mailer: mailer, logger: logger}
}

func (w *DeclineEmailWorker) Work(ctx context.Context, job *river.Job[DeclineEmailJob]) error {
	email, err := RenderDecline(job.Args)
	if err != nil {
		return river.JobCancel(err)
	}
	return send(ctx, w.mailer, w.logger, job.JobRow.Attempt, job.Args.RegistrationID, email)
}

func send(ctx context.Context, mailer Mailer, logger *slog.Logger, attempt int, registrationID int64, email Email) error {
	if email.To == "" {
		return river.JobCancel(fmt.Errorf("registration %d has no recipient", registrationID))
	}
	if err := mailer.Send(ctx, email); err != nil {
		logger.WarnContext(ctx, "Email delivery failed",
			attr.Int64("registration_id", registrationID),
			attr.Int("attempt", attempt),
			attr.Error(err),
		)
		return fmt.Errorf("%w: %v", apperr.ErrExternalService, err)
	}
	logger.InfoContext(ctx, "Email sent",
		attr.Int64("registration_id", registrationID),
		attr.String("subject", email.Subject),
	)
	return nil
}
