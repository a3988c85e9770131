// Package app is the composition root: it opens the database, builds every
// module in dependency order and serves the HTTP API.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/racepack/app/eventbus"
	"github.com/Black-And-White-Club/racepack/app/modules/auth"
	authhandlers "github.com/Black-And-White-Club/racepack/app/modules/auth/infrastructure/handlers"
	"github.com/Black-And-White-Club/racepack/app/modules/capacity"
	capacityservice "github.com/Black-And-White-Club/racepack/app/modules/capacity/application"
	"github.com/Black-And-White-Club/racepack/app/modules/catalog"
	"github.com/Black-And-White-Club/racepack/app/modules/notification"
	"github.com/Black-And-White-Club/racepack/app/modules/notification/infrastructure/mailer"
	notificationqueue "github.com/Black-And-White-Club/racepack/app/modules/notification/infrastructure/queue"
	"github.com/Black-And-White-Club/racepack/app/modules/racepack"
	"github.com/Black-And-White-Club/racepack/app/modules/registration"
	registrationservice "github.com/Black-And-White-Club/racepack/app/modules/registration/application"
	"github.com/Black-And-White-Club/racepack/app/shared/observability"
	"github.com/Black-And-White-Club/racepack/app/shared/observability/attr"
	"github.com/Black-And-White-Club/racepack/app/shared/storage"
	"github.com/Black-And-White-Club/racepack/app/shared/txn"
	"github.com/Black-And-White-Club/racepack/config"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Modules groups the initialized application modules.
type Modules struct {
	Capacity     *capacity.Module
	Catalog      *catalog.Module
	Notification *notification.Module
	RacePack     *racepack.Module
	Registration *registration.Module
	Auth         *auth.Module
}

// App holds the process-wide dependencies.
type App struct {
	Config        *config.Config
	Observability *observability.Observability
	DB            *bun.DB
	Publisher     eventbus.Publisher
	Blobs         storage.BlobStore
	Modules       Modules
	logger        *slog.Logger
}

// OpenDB opens a bun handle over pgdriver.
func OpenDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Initialize builds the application from cfg. On error everything opened so
// far is closed again.
func Initialize(ctx context.Context, cfg *config.Config) (*App, error) {
	obs, err := observability.Init(ctx, observability.Config{
		ServiceName:    cfg.Observability.ServiceName,
		LogLevel:       cfg.Observability.LogLevel,
		LogFormat:      cfg.Observability.LogFormat,
		MetricsAddress: cfg.Observability.MetricsAddress,
		OTLPEndpoint:   cfg.Observability.OTLPEndpoint,
		SampleRate:     cfg.Observability.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	a := &App{Config: cfg, Observability: obs, logger: obs.Logger}
	if err := a.initialize(ctx); err != nil {
		if closeErr := a.Close(context.Background()); closeErr != nil {
			obs.Logger.ErrorContext(ctx, "Cleanup after failed start", attr.Error(closeErr))
		}
		return nil, err
	}

	obs.Logger.InfoContext(ctx, "Application initialized")
	return a, nil
}

func (app *App) initialize(ctx context.Context) error {
	var err error
	app.DB = OpenDB(app.Config.Postgres.DSN)
	if err = app.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if app.Publisher, err = newPublisher(ctx, app.Config.NATS, app.logger); err != nil {
		return err
	}
	if app.Blobs, err = newBlobStore(ctx, app.Config.Storage); err != nil {
		return err
	}
	return app.initializeModules(ctx)
}

func (app *App) initializeModules(ctx context.Context) error {
	cfg := app.Config
	obs := app.Observability

	policy, err := capacityservice.ParsePolicy(cfg.Capacity.ReleasePolicy)
	if err != nil {
		return err
	}

	coord := txn.New(app.DB,
		txn.WithMaxAttempts(cfg.Txn.MaxAttempts),
		txn.WithLogger(obs.Logger),
	)

	app.Modules.Capacity = capacity.NewCapacityModule(ctx, obs, app.DB, coord, policy)
	app.Modules.Catalog = catalog.NewCatalogModule(ctx, obs, app.DB, coord, app.Modules.Capacity.Ledger)

	app.Modules.Notification, err = notification.NewNotificationModule(ctx, obs, cfg.Postgres.DSN,
		notificationqueue.Config{MaxAttempts: cfg.Queue.MaxAttempts, MaxWorkers: cfg.Queue.MaxWorkers},
		mailer.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to initialize notification module: %w", err)
	}

	limiter := authhandlers.NewIPRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)

	app.Modules.RacePack = racepack.NewRacePackModule(ctx, obs, app.DB, coord, app.Publisher,
		authhandlers.RateLimitMiddleware(limiter))

	app.Modules.Registration = registration.NewRegistrationModule(ctx, obs, app.DB, coord, registrationservice.Deps{
		Catalog:   app.Modules.Catalog.Repository,
		Ledger:    app.Modules.Capacity.Ledger,
		QrIssuer:  app.Modules.RacePack.Service.Allocator(),
		Notifier:  app.Modules.Notification.Notifier,
		Publisher: app.Publisher,
		Blobs:     app.Blobs,
		Slack:     cfg.RacePack.Slack,
	})

	app.Modules.Auth = auth.NewAuthModule(ctx, obs, app.Modules.Registration.Repository, auth.Config{
		JWTSecret:      cfg.JWT.Secret,
		TokenTTL:       cfg.JWT.TokenTTL,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}, limiter)
	return nil
}

// newPublisher connects to NATS, or falls back to an in-process channel when
// no URL is configured so local runs work without a broker.
func newPublisher(ctx context.Context, cfg config.NATSConfig, logger *slog.Logger) (eventbus.Publisher, error) {
	if cfg.URL == "" {
		logger.WarnContext(ctx, "NATS URL not set, events stay in process")
		pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(logger))
		return eventbus.NewWatermillPublisher(pubSub, logger), nil
	}
	publisher, err := eventbus.NewNATSPublisher(ctx, cfg.URL, cfg.ProvisionStream, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create event publisher: %w", err)
	}
	return publisher, nil
}

func newBlobStore(ctx context.Context, cfg config.StorageConfig) (storage.BlobStore, error) {
	switch cfg.Driver {
	case "s3":
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Endpoint:        cfg.Endpoint,
			Region:          cfg.Region,
			Bucket:          cfg.Bucket,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			UsePathStyle:    cfg.UsePathStyle,
			PresignTTL:      cfg.PresignTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 store: %w", err)
		}
		return store, nil
	default:
		store, err := storage.NewDiskStore(cfg.DiskRoot, cfg.DiskBaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

// Close releases the publisher, the database and the tracer provider.
func (app *App) Close(ctx context.Context) error {
	var errs []error
	if app.Publisher != nil {
		if err := app.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if app.Observability != nil {
		if err := app.Observability.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
		}
	}
	return errors.Join(errs...)
}
