package flowintegrationtests

import (
	"context"
	"testing"

	capacityservice "github.com/Black-And-White-Club/racepack/app/modules/capacity/application"
	capacitydb "github.com/Black-And-White-Club/racepack/app/modules/capacity/infrastructure/repositories"
	catalogdb "github.com/Black-And-White-Club/racepack/app/modules/catalog/infrastructure/repositories"
	"github.com/Black-And-White-Club/racepack/app/modules/notification/infrastructure/mailer"
	notificationqueue "github.com/Black-And-White-Club/racepack/app/modules/notification/infrastructure/queue"
	racepackservice "github.com/Black-And-White-Club/racepack/app/modules/racepack/application"
	racepackdb "github.com/Black-And-White-Club/racepack/app/modules/racepack/infrastructure/repositories"
	registrationservice "github.com/Black-And-White-Club/racepack/app/modules/registration/application"
	registrationdb "github.com/Black-And-White-Club/racepack/app/modules/registration/infrastructure/repositories"
	"github.com/Black-And-White-Club/racepack/app/shared/observability"
	"github.com/Black-And-White-Club/racepack/app/shared/storage"
	"github.com/Black-And-White-Club/racepack/app/shared/txn"
	"github.com/Black-And-White-Club/racepack/integration_tests/testutils"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

// TestDeps holds the services wired over the shared database.
type TestDeps struct {
	Ctx          context.Context
	Registration *registrationservice.RegistrationService
	RacePack     *racepackservice.RacePackService
	Ledger       *capacityservice.Ledger
	Gen          *testutils.DataGenerator
}

// SetupServices cleans the database and wires the services the way the
// application does, with the River queue in insert-only mode.
func SetupServices(t *testing.T) TestDeps {
	t.Helper()
	testutils.CleanupDatabase(t, testEnv)

	ctx := testEnv.Ctx
	db := testEnv.DB
	logger := testEnv.Logger
	tracer := noop.NewTracerProvider().Tracer("test")
	metrics := observability.NoopMetrics{}
	coord := txn.New(db, txn.WithMaxAttempts(5), txn.WithLogger(logger))

	queue, err := notificationqueue.NewService(ctx, testEnv.DSN,
		notificationqueue.Config{MaxAttempts: 3, MaxWorkers: 1},
		mailer.New(mailer.Config{}, logger), logger, metrics)
	require.NoError(t, err)

	blobs, err := storage.NewDiskStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	ledger := capacityservice.NewLedger(capacitydb.NewRepository(db), capacityservice.ReleaseByRegistration)
	racePack := racepackservice.NewRacePackService(racepackdb.NewRepository(db), testEnv.Publisher, logger, metrics, tracer, coord)
	registration := registrationservice.NewRegistrationService(registrationdb.NewRepository(db), registrationservice.Deps{
		Catalog:   catalogdb.NewRepository(db),
		Ledger:    ledger,
		QrIssuer:  racePack.Allocator(),
		Notifier:  queue,
		Publisher: testEnv.Publisher,
		Blobs:     blobs,
		Slack:     racepackservice.DefaultSlack,
	}, logger, metrics, tracer, coord)

	return TestDeps{
		Ctx:          ctx,
		Registration: registration,
		RacePack:     racePack,
		Ledger:       ledger,
		Gen:          testutils.NewDataGenerator(uint64(len(t.Name()))),
	}
}

// categoryID looks up a seeded category.
func categoryID(t *testing.T, name string) int64 {
	t.Helper()
	var id int64
	err := testEnv.DB.NewSelect().Table("race_categories").Column("id").Where("name = ?", name).Scan(testEnv.Ctx, &id)
	require.NoError(t, err)
	return id
}

// setEarlyBirdCapacity limits a category's early-bird slots; nil removes the limit.
func setEarlyBirdCapacity(t *testing.T, categoryID int64, capacity *int) {
	t.Helper()
	_, err := testEnv.DB.NewUpdate().Table("race_categories").
		Set("early_bird_capacity = ?", capacity).
		Where("id = ?", categoryID).
		Exec(testEnv.Ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = testEnv.DB.NewUpdate().Table("race_categories").
			Set("early_bird_capacity = NULL").
			Where("id = ?", categoryID).
			Exec(context.Background())
	})
}

func (d TestDeps) user() registrationservice.UserInput {
	r := d.Gen.Runner()
	return registrationservice.UserInput{Name: r.Name, Email: r.Email, Phone: r.Phone}
}

// register creates a registration and submits its payment.
func (d TestDeps) register(t *testing.T, item registrationservice.Item, regType string) registrationservice.CreateRegistrationResult {
	t.Helper()
	res, err := d.Registration.CreateRegistration(d.Ctx, registrationservice.CreateRegistrationRequest{
		User:  d.user(),
		Type:  regType,
		Items: []registrationservice.Item{item},
	})
	require.NoError(t, err)
	_, err = d.Registration.SubmitPayment(d.Ctx, registrationservice.SubmitPaymentRequest{
		RegistrationID: res.RegistrationID,
		ProofRef:       "proofs/test.png",
	})
	require.NoError(t, err)
	return res
}

func ptr(v int) *int { return &v }
