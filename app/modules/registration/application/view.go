package registrationservice

import (
	"context"
	"errors"
	"strconv"
	"time"

	registrationdb "github.com/Black-And-White-Club/racepack/app/modules/registration/infrastructure/repositories"
	"github.com/Black-And-White-Club/racepack/app/shared/apperr"
	"github.com/Black-And-White-Club/racepack/app/shared/operation"
	"github.com/Black-And-White-Club/racepack/app/shared/results"
	"github.com/uptrace/bun"
)

func (s *RegistrationService) GetRegistration(ctx context.Context, registrationID int64) (RegistrationView, error) {
	return operation.Unwrap(operation.WithTelemetry(ctx, s.telemetry, "GetRegistration", strconv.FormatInt(registrationID, 10), func(ctx context.Context) (results.OperationResult[RegistrationView, error], error) {
		return operation.InTx(ctx, s.coord, "GetRegistration", func(ctx context.Context, db bun.IDB) (results.OperationResult[RegistrationView, error], error) {
			view, err := s.viewLogic(ctx, db, registrationID)
			return operation.DomainResult(view, err)
		})
	}))
}

func (s *RegistrationService) viewLogic(ctx context.Context, db bun.IDB, registrationID int64) (RegistrationView, error) {
	reg, err := s.repo.GetRegistration(ctx, db, registrationID)
	if err != nil {
		if errors.Is(err, registrationdb.ErrNotFound) {
			return RegistrationView{}, apperr.NotFoundf("registration %d", registrationID)
		}
		return RegistrationView{}, err
	}
	participants, err := s.repo.ListParticipants(ctx, db, reg.ID)
	if err != nil {
		return RegistrationView{}, err
	}
	payments, err := s.repo.ListPayments(ctx, db, reg.ID)
	if err != nil {
		return RegistrationView{}, err
	}
	codes, err := s.deps.QrIssuer.ListQrCodes(ctx, db, reg.ID)
	if err != nil {
		return RegistrationView{}, err
	}
	jerseys, err := s.deps.Catalog.ListJerseys(ctx, db)
	if err != nil {
		return RegistrationView{}, err
	}
	sizes := make(map[int64]string, len(jerseys))
	for _, j := range jerseys {
		sizes[j.ID] = j.Size
	}

	view := RegistrationView{
		ID:            reg.ID,
		Type:          reg.RegistrationType,
		Status:        reg.PaymentStatus,
		TotalAmount:   reg.TotalAmount,
		DeclineReason: reg.DeclineReason,
		ConfirmedAt:   reg.ConfirmedAt,
		DeclinedAt:    reg.DeclinedAt,
		CreatedAt:     reg.CreatedAt,
		Participants:  make([]ParticipantView, len(participants)),
		Payments:      make([]PaymentView, len(payments)),
		QrCodes:       codes,
	}
	if reg.User != nil {
		view.User = UserView{
			ID:         reg.User.ID,
			Name:       reg.User.Name,
			Email:      reg.User.Email,
			Phone:      reg.User.Phone,
			AccessCode: reg.User.AccessCode,
		}
	}
	for i, p := range participants {
		view.Participants[i] = ParticipantView{
			ID:          p.ID,
			CategoryID:  p.CategoryID,
			JerseySize:  sizes[p.JerseyID],
			EarlyBird:   p.EarlyBird,
			UnitPrice:   p.UnitPrice,
			PackClaimed: p.PackClaimed,
		}
	}
	for i, p := range payments {
		view.Payments[i] = PaymentView{
			ID:            p.ID,
			TransactionID: p.TransactionID.String(),
			Amount:        p.Amount,
			Status:        p.Status,
			CreatedAt:     p.CreatedAt,
		}
	}
	return view, nil
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
