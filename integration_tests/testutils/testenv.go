package testutils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/Black-And-White-Club/racepack/app"
	"github.com/Black-And-White-Club/racepack/app/eventbus"
	"github.com/Black-And-White-Club/racepack/integration_tests/containers"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
)

// TestEnvironment holds all resources needed for integration testing
type TestEnvironment struct {
	Ctx           context.Context
	Cancel        context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer testcontainers.Container
	DSN           string
	DB            *bun.DB
	NatsConn      *nats.Conn
	JetStream     jetstream.JetStream
	Publisher     eventbus.Publisher
	Logger        *slog.Logger
}

// NewTestEnvironment starts Postgres and NATS, migrates the schema and
// provisions the event stream.
func NewTestEnvironment(ctx context.Context) (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(ctx)
	env := &TestEnvironment{
		Ctx:    ctx,
		Cancel: cancel,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	if err := env.setup(ctx); err != nil {
		env.Close()
		return nil, err
	}
	return env, nil
}

func (env *TestEnvironment) setup(ctx context.Context) error {
	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return err
	}
	env.PgContainer = pgContainer
	env.DSN = dsn

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		return err
	}
	env.NatsContainer = natsContainer

	env.DB = app.OpenDB(dsn)
	if err := app.Migrate(ctx, env.DB, dsn, env.Logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	publisher, err := eventbus.NewNATSPublisher(ctx, natsURL, true, env.Logger)
	if err != nil {
		return err
	}
	env.Publisher = publisher

	env.NatsConn, err = nats.Connect(natsURL)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	env.JetStream, err = jetstream.New(env.NatsConn)
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}
	return nil
}

// Close releases connections and terminates the containers.
func (env *TestEnvironment) Close() {
	if env.Publisher != nil {
		_ = env.Publisher.Close()
	}
	if env.NatsConn != nil {
		env.NatsConn.Close()
	}
	if env.DB != nil {
		_ = env.DB.Close()
	}
	ctx := context.Background()
	if env.NatsContainer != nil {
		_ = env.NatsContainer.Terminate(ctx)
	}
	if env.PgContainer != nil {
		_ = env.PgContainer.Terminate(ctx)
	}
	env.Cancel()
}

// appTables are cleared between tests. Catalog rows are seeded by migrations
// and kept.
var appTables = []string{
	"race_pack_claim_participants",
	"race_pack_claims",
	"qr_codes",
	"early_bird_claims",
	"payments",
	"participants",
	"registrations",
	"users",
}

// TruncateTables truncates the specified tables
func TruncateTables(ctx context.Context, db bun.IDB, tables ...string) error {
	quoted := make([]string, len(tables))
	for i, t := range tables {
		quoted[i] = fmt.Sprintf("%q", t)
	}
	query := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(quoted, ", "))
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to truncate tables %v: %w", tables, err)
	}
	return nil
}

// CleanupDatabase empties every application table and the River job table.
func CleanupDatabase(t *testing.T, env *TestEnvironment) {
	t.Helper()
	if err := TruncateTables(env.Ctx, env.DB, appTables...); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if _, err := env.DB.ExecContext(env.Ctx, "DELETE FROM river_job"); err != nil {
		t.Fatalf("cleanup river jobs: %v", err)
	}
}
