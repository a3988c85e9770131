package app

import (
	"context"
	"fmt"
	"log/slog"

	capacitymigrations "github.com/Black-And-White-Club/racepack/app/modules/capacity/infrastructure/repositories/migrations"
	catalogmigrations "github.com/Black-And-White-Club/racepack/app/modules/catalog/infrastructure/repositories/migrations"
	racepackmigrations "github.com/Black-And-White-Club/racepack/app/modules/racepack/infrastructure/repositories/migrations"
	registrationmigrations "github.com/Black-And-White-Club/racepack/app/modules/registration/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/racepack/app/shared/observability/attr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// ModuleMigrations names one module's migration set.
type ModuleMigrations struct {
	Name       string
	Migrations *migrate.Migrations
}

// OrderedMigrations lists module migrations in foreign key order. All sets
// share the bun_migrations table, so names must stay unique across modules.
func OrderedMigrations() []ModuleMigrations {
	return []ModuleMigrations{
		{Name: "catalog", Migrations: catalogmigrations.Migrations},
		{Name: "registration", Migrations: registrationmigrations.Migrations},
		{Name: "capacity", Migrations: capacitymigrations.Migrations},
		{Name: "racepack", Migrations: racepackmigrations.Migrations},
	}
}

// Migrate brings the schema up to date: the migration tables, River's own
// tables, then every module in order.
func Migrate(ctx context.Context, db *bun.DB, dsn string, logger *slog.Logger) error {
	sets := OrderedMigrations()
	if err := migrate.NewMigrator(db, sets[0].Migrations).Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration tables: %w", err)
	}

	if err := MigrateRiver(ctx, dsn); err != nil {
		return err
	}

	for _, set := range sets {
		group, err := migrate.NewMigrator(db, set.Migrations).Migrate(ctx)
		if err != nil {
			return fmt.Errorf("failed to run %s migrations: %w", set.Name, err)
		}
		if group.IsZero() {
			logger.DebugContext(ctx, "No migrations to run", attr.String("module", set.Name))
		} else {
			logger.InfoContext(ctx, "Ran migrations", attr.String("module", set.Name), attr.Int64("group", group.ID))
		}
	}
	return nil
}

// MigrateRiver runs River's queue migrations over a short-lived pgx pool.
func MigrateRiver(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool for River migrations: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{}); err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}
	return nil
}
