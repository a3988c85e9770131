package notificationqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	notificationservice "github.com/Black-And-White-Club/racepack/app/modules/notification/application"
	"github.com/Black-And-White-Club/racepack/app/shared/observability"
	"github.com/Black-And-White-Club/racepack/app/shared/observability/attr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

// Config tunes the notification queue.
type Config struct {
	MaxAttempts int
	MaxWorkers  int
}

// Service runs the email workers and enqueues email jobs through River.
type Service struct {
	client      *river.Client[pgx.Tx]
	pool        *pgxpool.Pool
	logger      *slog.Logger
	metrics     observability.OperationMetrics
	maxAttempts int
}

var _ notificationservice.Notifier = (*Service)(nil)

// NewService creates a River client over its own pgx pool (River requires
// pgx, not database/sql) with the email workers registered.
func NewService(ctx context.Context, dsn string, cfg Config, mailer notificationservice.Mailer, logger *slog.Logger, metrics observability.OperationMetrics) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("component", "river_queue"),
		attr.String("queue", notificationservice.QueueNotifications),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", "river")

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	svc, err := newService(pool, cfg, mailer, ctxLogger, metrics)
	if err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, err
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", "river")
	metrics.RecordOperationDuration(ctx, "initialize_service", "river", time.Since(start))
	ctxLogger.InfoContext(ctx, "Notification queue service initialized")
	return svc, nil
}

func newService(pool *pgxpool.Pool, cfg Config, mailer notificationservice.Mailer, logger *slog.Logger, metrics observability.OperationMetrics) (*Service, error) {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 3
	}
	if cfg.MaxWorkers < 1 {
		cfg.MaxWorkers = 10
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, notificationservice.NewConfirmationEmailWorker(mailer, logger))
	river.AddWorker(workers, notificationservice.NewDeclineEmailWorker(mailer, logger))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			notificationservice.QueueNotifications: {MaxWorkers: cfg.MaxWorkers},
		},
		Workers:     workers,
		MaxAttempts: cfg.MaxAttempts,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	return &Service{
		client:      client,
		pool:        pool,
		logger:      logger,
		metrics:     metrics,
		maxAttempts: cfg.MaxAttempts,
	}, nil
}

// Start starts the River client.
func (s *Service) Start(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Starting notification queue")
	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start River client: %w", err)
	}
	return nil
}

// Stop waits for running jobs and closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Stopping notification queue")
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	return nil
}

func (s *Service) EnqueueConfirmation(ctx context.Context, job notificationservice.ConfirmationEmailJob) error {
	return s.insert(ctx, "enqueue_confirmation", job.RegistrationID, job)
}

func (s *Service) EnqueueDecline(ctx context.Context, job notificationservice.DeclineEmailJob) error {
	return s.insert(ctx, "enqueue_decline", job.RegistrationID, job)
}

func (s *Service) insert(ctx context.Context, operation string, registrationID int64, args river.JobArgs) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, operation, "river")
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operation, "river", time.Since(start))
	}()

	res, err := s.client.Insert(ctx, args, &river.InsertOpts{MaxAttempts: s.maxAttempts})
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, operation, "river")
		return fmt.Errorf("failed to enqueue %s: %w", args.Kind(), err)
	}

	s.metrics.RecordOperationSuccess(ctx, operation, "river")
	s.logger.InfoContext(ctx, "Email job enqueued",
		attr.ExtractCorrelationID(ctx),
		attr.String("kind", args.Kind()),
		attr.Int64("registration_id", registrationID),
		attr.Int64("job_id", res.Job.ID),
		attr.Bool("duplicate", res.UniqueSkippedAsDuplicate),
	)
	return nil
}
