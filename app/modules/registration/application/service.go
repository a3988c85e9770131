package registrationservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/racepack/app/eventbus"
	catalogdb "github.com/Black-And-White-Club/racepack/app/modules/catalog/infrastructure/repositories"
	notificationservice "github.com/Black-And-White-Club/racepack/app/modules/notification/application"
	racepackservice "github.com/Black-And-White-Club/racepack/app/modules/racepack/application"
	registrationdb "github.com/Black-And-White-Club/racepack/app/modules/registration/infrastructure/repositories"
	"github.com/Black-And-White-Club/racepack/app/shared/apperr"
	"github.com/Black-And-White-Club/racepack/app/shared/observability"
	"github.com/Black-And-White-Club/racepack/app/shared/observability/attr"
	"github.com/Black-And-White-Club/racepack/app/shared/operation"
	"github.com/Black-And-White-Club/racepack/app/shared/storage"
	"github.com/Black-And-White-Club/racepack/app/shared/txn"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// DefaultDeclineReason is used when an admin declines without a reason.
const DefaultDeclineReason = "Payment proof was not valid or could not be verified."

// Deps are the collaborators a RegistrationService coordinates inside its
// transactions and after commit.
type Deps struct {
	Catalog   catalogdb.Repository
	Ledger    CapacityLedger
	QrIssuer  QrIssuer
	Notifier  notificationservice.Notifier
	Publisher eventbus.Publisher
	Blobs     storage.BlobStore
	// Slack is the number of extra scans each issued QR code gets.
	Slack int
}

// RegistrationService implements the Service interface.
type RegistrationService struct {
	repo      registrationdb.Repository
	deps      Deps
	coord     *txn.Coordinator
	logger    *slog.Logger
	telemetry operation.Telemetry

	now      func() time.Time
	newTxnID func() uuid.UUID
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(
	repo registrationdb.Repository,
	deps Deps,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	coord *txn.Coordinator,
) *RegistrationService {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Notifier == nil {
		deps.Notifier = notificationservice.NoopNotifier{}
	}
	if deps.Slack < 0 {
		deps.Slack = racepackservice.DefaultSlack
	}
	return &RegistrationService{
		repo:   repo,
		deps:   deps,
		coord:  coord,
		logger: logger,
		telemetry: operation.Telemetry{
			Service: "RegistrationService",
			Logger:  logger,
			Metrics: metrics,
			Tracer:  tracer,
		},
		now:      time.Now,
		newTxnID: uuid.New,
	}
}

var _ Service = (*RegistrationService)(nil)

// notifyBestEffort runs an enqueue after commit. A failure is logged and
// never changes the operation's outcome.
func (s *RegistrationService) notifyBestEffort(ctx context.Context, kind string, registrationID int64, enqueue func(context.Context) error) {
	if err := enqueue(ctx); err != nil {
		s.logger.WarnContext(ctx, "Notification enqueue failed",
			attr.ExtractCorrelationID(ctx),
			attr.String("kind", kind),
			attr.Int64("registration_id", registrationID),
			attr.Error(fmt.Errorf("%w: %v", apperr.ErrExternalService, err)),
		)
	}
}
