package racepackservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Black-And-White-Club/racepack/app/eventbus"
	racepackdb "github.com/Black-And-White-Club/racepack/app/modules/racepack/infrastructure/repositories"
	"github.com/Black-And-White-Club/racepack/app/shared/apperr"
	"github.com/Black-And-White-Club/racepack/app/shared/observability"
	"github.com/Black-And-White-Club/racepack/app/shared/operation"
	"github.com/Black-And-White-Club/racepack/app/shared/results"
	"github.com/Black-And-White-Club/racepack/app/shared/txn"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// RacePackService implements the Service interface.
type RacePackService struct {
	repo      racepackdb.Repository
	allocator *Allocator
	publisher eventbus.Publisher
	coord     *txn.Coordinator
	logger    *slog.Logger
	telemetry operation.Telemetry
}

// NewRacePackService creates a new RacePackService.
func NewRacePackService(
	repo racepackdb.Repository,
	publisher eventbus.Publisher,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	coord *txn.Coordinator,
) *RacePackService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RacePackService{
		repo:      repo,
		allocator: NewAllocator(repo),
		publisher: publisher,
		coord:     coord,
		logger:    logger,
		telemetry: operation.Telemetry{
			Service: "RacePackService",
			Logger:  logger,
			Metrics: metrics,
			Tracer:  tracer,
		},
	}
}

var _ Service = (*RacePackService)(nil)

// Allocator returns the transaction-scoped QR issuer.
func (s *RacePackService) Allocator() *Allocator { return s.allocator }

// parseCode maps a malformed code to not found; a code that cannot be parsed
// cannot exist.
func parseCode(code string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(code))
	if err != nil {
		return uuid.Nil, apperr.NotFoundf("qr code %q", code)
	}
	return id, nil
}

// normalize validates req and returns the number of packs to claim.
func (req ClaimRequest) normalize() (int, error) {
	if strings.TrimSpace(req.ClaimedBy) == "" {
		return 0, apperr.Validationf("claimedBy is required")
	}
	count := req.RequestedCount
	if len(req.ParticipantIDs) > 0 {
		seen := make(map[int64]bool, len(req.ParticipantIDs))
		for _, id := range req.ParticipantIDs {
			if seen[id] {
				return 0, apperr.Validationf("participant %d listed twice", id)
			}
			seen[id] = true
		}
		if count == 0 {
			count = len(req.ParticipantIDs)
		}
		if count != len(req.ParticipantIDs) {
			return 0, apperr.Validationf("requestedCount %d does not match %d participant ids", count, len(req.ParticipantIDs))
		}
	}
	if count < 1 {
		return 0, apperr.Validationf("requestedCount must be >= 1, got %d", count)
	}
	return count, nil
}

func (s *RacePackService) Claim(ctx context.Context, req ClaimRequest) (ClaimResult, error) {
	var event eventbus.RacePackClaimed

	res, err := operation.Unwrap(operation.WithTelemetry(ctx, s.telemetry, "Claim", req.QrCodeData, func(ctx context.Context) (results.OperationResult[ClaimResult, error], error) {
		count, err := req.normalize()
		if err != nil {
			return results.FailureResult[ClaimResult, error](err), nil
		}
		code, err := parseCode(req.QrCodeData)
		if err != nil {
			return results.FailureResult[ClaimResult, error](err), nil
		}

		return operation.InTx(ctx, s.coord, "Claim", func(ctx context.Context, db bun.IDB) (results.OperationResult[ClaimResult, error], error) {
			result, qr, err := s.claimLogic(ctx, db, code, count, req)
			if err == nil {
				event = eventbus.RacePackClaimed{
					ClaimID:        result.ClaimID,
					Code:           qr.Code.String(),
					CategoryID:     qr.CategoryID,
					ParticipantIDs: result.ParticipantsMarked,
					ClaimedBy:      req.ClaimedBy,
					ScansRemaining: result.ScansRemaining,
					ClaimedAt:      time.Now().UTC(),
				}
			}
			return operation.DomainResult(result, err)
		})
	}))
	if err != nil {
		return ClaimResult{}, err
	}

	eventbus.PublishBestEffort(ctx, s.publisher, s.logger, eventbus.TopicRacePackClaimed, event)
	return res, nil
}

func (s *RacePackService) claimLogic(ctx context.Context, db bun.IDB, code uuid.UUID, count int, req ClaimRequest) (ClaimResult, *racepackdb.QrCode, error) {
	qr, err := s.repo.LockQrCodeByCode(ctx, db, code)
	if err != nil {
		if errors.Is(err, racepackdb.ErrNotFound) {
			return ClaimResult{}, nil, apperr.NotFoundf("qr code %q", req.QrCodeData)
		}
		return ClaimResult{}, nil, err
	}

	if qr.ScansRemaining < count {
		return ClaimResult{}, qr, fmt.Errorf("%w: %d requested, %d scans remaining",
			apperr.ErrInsufficientScanBudget, count, qr.ScansRemaining)
	}

	participants, err := s.selectParticipants(ctx, db, qr, count, req.ParticipantIDs)
	if err != nil {
		return ClaimResult{}, qr, err
	}
	ids := make([]int64, len(participants))
	for i, p := range participants {
		ids[i] = p.ID
	}

	marked, err := s.repo.MarkClaimed(ctx, db, ids)
	if err != nil {
		return ClaimResult{}, qr, err
	}
	if marked != len(ids) {
		return ClaimResult{}, qr, fmt.Errorf("%w: %d of %d participants were claimed concurrently",
			apperr.ErrAlreadyClaimed, len(ids)-marked, len(ids))
	}

	claim := &racepackdb.RacePackClaim{
		QrCodeID:          qr.ID,
		ClaimedBy:         strings.TrimSpace(req.ClaimedBy),
		PacksClaimedCount: count,
	}
	if err := s.repo.InsertClaim(ctx, db, claim, ids); err != nil {
		return ClaimResult{}, qr, err
	}

	remaining, err := s.repo.DecrementScans(ctx, db, qr.ID, count)
	if err != nil {
		if errors.Is(err, racepackdb.ErrInsufficientScans) {
			return ClaimResult{}, qr, fmt.Errorf("%w: budget changed during claim", apperr.ErrInsufficientScanBudget)
		}
		return ClaimResult{}, qr, err
	}

	return ClaimResult{ClaimID: claim.ID, ParticipantsMarked: ids, ScansRemaining: remaining}, qr, nil
}

func (s *RacePackService) selectParticipants(ctx context.Context, db bun.IDB, qr *racepackdb.QrCode, count int, requested []int64) ([]racepackdb.PackParticipant, error) {
	if len(requested) == 0 {
		participants, err := s.repo.LockUnclaimedParticipants(ctx, db, qr.RegistrationID, qr.CategoryID, count)
		if err != nil {
			return nil, err
		}
		if len(participants) < count {
			return nil, fmt.Errorf("%w: %d requested, %d unclaimed", apperr.ErrInsufficientUnclaimedPacks, count, len(participants))
		}
		return participants, nil
	}

	participants, err := s.repo.LockParticipantsByIDs(ctx, db, requested)
	if err != nil {
		return nil, err
	}
	found := make(map[int64]racepackdb.PackParticipant, len(participants))
	for _, p := range participants {
		found[p.ID] = p
	}
	for _, id := range requested {
		p, ok := found[id]
		if !ok || p.RegistrationID != qr.RegistrationID || p.CategoryID != qr.CategoryID {
			return nil, fmt.Errorf("%w: participant %d is not covered by this qr code", apperr.ErrInvalidParticipant, id)
		}
	}
	for _, id := range requested {
		if found[id].PackClaimed {
			return nil, fmt.Errorf("%w: participant %d", apperr.ErrAlreadyClaimed, id)
		}
	}
	return participants, nil
}

func (s *RacePackService) GetQrCodeState(ctx context.Context, code string) (QrCodeState, error) {
	return operation.Unwrap(operation.WithTelemetry(ctx, s.telemetry, "GetQrCodeState", code, func(ctx context.Context) (results.OperationResult[QrCodeState, error], error) {
		parsed, err := parseCode(code)
		if err != nil {
			return results.FailureResult[QrCodeState, error](err), nil
		}
		return operation.InTx(ctx, s.coord, "GetQrCodeState", func(ctx context.Context, db bun.IDB) (results.OperationResult[QrCodeState, error], error) {
			state, err := s.qrCodeStateLogic(ctx, db, parsed)
			return operation.DomainResult(state, err)
		})
	}))
}

func (s *RacePackService) qrCodeStateLogic(ctx context.Context, db bun.IDB, code uuid.UUID) (QrCodeState, error) {
	qr, err := s.repo.GetQrCodeByCode(ctx, db, code)
	if err != nil {
		if errors.Is(err, racepackdb.ErrNotFound) {
			return QrCodeState{}, apperr.NotFoundf("qr code %q", code)
		}
		return QrCodeState{}, err
	}
	summary, err := s.repo.GetRegistrationSummary(ctx, db, qr.RegistrationID)
	if err != nil {
		return QrCodeState{}, fmt.Errorf("failed to load registration %d: %w", qr.RegistrationID, err)
	}
	names, err := s.repo.CategoryNames(ctx, db)
	if err != nil {
		return QrCodeState{}, err
	}
	participants, err := s.repo.ListParticipants(ctx, db, qr.RegistrationID, qr.CategoryID)
	if err != nil {
		return QrCodeState{}, err
	}
	claims, err := s.repo.ListClaims(ctx, db, qr.ID)
	if err != nil {
		return QrCodeState{}, err
	}

	state := QrCodeState{
		QrCode:        qrCodeFromModel(qr),
		CategoryName:  names[qr.CategoryID],
		Registrant:    summary.Name,
		Email:         summary.Email,
		PaymentStatus: summary.PaymentStatus,
		Participants:  make([]ParticipantView, len(participants)),
		Claims:        make([]ClaimView, len(claims)),
	}
	for i, p := range participants {
		state.Participants[i] = ParticipantView{ID: p.ID, JerseySize: p.JerseySize, PackClaimed: p.PackClaimed}
	}
	for i, c := range claims {
		state.Claims[i] = ClaimView{
			ID:                c.ID,
			ClaimedBy:         c.ClaimedBy,
			PacksClaimedCount: c.PacksClaimedCount,
			ParticipantIDs:    c.ParticipantIDs,
			CreatedAt:         c.CreatedAt,
		}
	}
	return state, nil
}
