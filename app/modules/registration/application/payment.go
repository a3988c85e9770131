package registrationservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Black-And-White-Club/racepack/app/eventbus"
	notificationservice "github.com/Black-And-White-Club/racepack/app/modules/notification/application"
	registrationdb "github.com/Black-And-White-Club/racepack/app/modules/registration/infrastructure/repositories"
	"github.com/Black-And-White-Club/racepack/app/shared/apperr"
	"github.com/Black-And-White-Club/racepack/app/shared/operation"
	"github.com/Black-And-White-Club/racepack/app/shared/results"
	"github.com/uptrace/bun"
)

func (req *SubmitPaymentRequest) validate() error {
	if strings.TrimSpace(req.ProofRef) == "" {
		return apperr.Validationf("proof of payment is required")
	}
	if req.Amount < 0 {
		return apperr.Validationf("amount must not be negative, got %d", req.Amount)
	}
	switch {
	case req.RegistrationID > 0 && req.NewRegistration != nil:
		return apperr.Validationf("registrationId and registration are mutually exclusive")
	case req.RegistrationID > 0:
		return nil
	case req.NewRegistration != nil:
		return req.NewRegistration.validate()
	default:
		return apperr.Validationf("registrationId or registration is required")
	}
}

func (s *RegistrationService) SubmitPayment(ctx context.Context, req SubmitPaymentRequest) (SubmitPaymentResult, error) {
	return operation.Unwrap(operation.WithTelemetry(ctx, s.telemetry, "SubmitPayment", strconv.FormatInt(req.RegistrationID, 10), func(ctx context.Context) (results.OperationResult[SubmitPaymentResult, error], error) {
		if err := req.validate(); err != nil {
			return results.FailureResult[SubmitPaymentResult, error](err), nil
		}
		return operation.InTx(ctx, s.coord, "SubmitPayment", func(ctx context.Context, db bun.IDB) (results.OperationResult[SubmitPaymentResult, error], error) {
			res, err := s.submitPaymentLogic(ctx, db, req)
			return operation.DomainResult(res, err)
		})
	}))
}

func (s *RegistrationService) submitPaymentLogic(ctx context.Context, db bun.IDB, req SubmitPaymentRequest) (SubmitPaymentResult, error) {
	registrationID := req.RegistrationID
	if req.NewRegistration != nil {
		created, err := s.createLogic(ctx, db, *req.NewRegistration)
		if err != nil {
			return SubmitPaymentResult{}, err
		}
		registrationID = created.RegistrationID
	}

	reg, err := s.lockPending(ctx, db, registrationID)
	if err != nil {
		return SubmitPaymentResult{}, err
	}

	amount := req.Amount
	if amount == 0 {
		amount = reg.TotalAmount
	}
	payment := &registrationdb.Payment{
		RegistrationID: reg.ID,
		TransactionID:  s.newTxnID(),
		Amount:         amount,
		ProofRef:       req.ProofRef,
		Status:         registrationdb.StatusPending,
	}
	if err := s.repo.CreatePayment(ctx, db, payment); err != nil {
		return SubmitPaymentResult{}, err
	}
	return SubmitPaymentResult{
		PaymentID:      payment.ID,
		RegistrationID: reg.ID,
		TransactionID:  payment.TransactionID.String(),
		Amount:         amount,
	}, nil
}

// lockPending locks a registration and requires it to be pending.
func (s *RegistrationService) lockPending(ctx context.Context, db bun.IDB, registrationID int64) (*registrationdb.Registration, error) {
	reg, err := s.repo.LockRegistration(ctx, db, registrationID)
	if err != nil {
		if errors.Is(err, registrationdb.ErrNotFound) {
			return nil, apperr.NotFoundf("registration %d", registrationID)
		}
		return nil, err
	}
	if reg.PaymentStatus != registrationdb.StatusPending {
		return nil, fmt.Errorf("%w: registration %d is %s", apperr.ErrInvalidStateTransition, reg.ID, reg.PaymentStatus)
	}
	return reg, nil
}

// resolve moves the pending payments and then the registration to status.
// A registration without a pending payment cannot be reviewed.
func (s *RegistrationService) resolve(ctx context.Context, db bun.IDB, reg *registrationdb.Registration, status string, reason *string) error {
	n, err := s.repo.ResolvePendingPayments(ctx, db, reg.ID, status)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: registration %d has no pending payment", apperr.ErrInvalidStateTransition, reg.ID)
	}
	if err := s.repo.ResolvePending(ctx, db, reg.ID, status, reason, s.now().UTC()); err != nil {
		if errors.Is(err, registrationdb.ErrNotPending) {
			return fmt.Errorf("%w: registration %d changed concurrently", apperr.ErrInvalidStateTransition, reg.ID)
		}
		return err
	}
	return nil
}

func (s *RegistrationService) ConfirmPayment(ctx context.Context, registrationID int64) (RegistrationView, error) {
	var job notificationservice.ConfirmationEmailJob

	view, err := operation.Unwrap(operation.WithTelemetry(ctx, s.telemetry, "ConfirmPayment", strconv.FormatInt(registrationID, 10), func(ctx context.Context) (results.OperationResult[RegistrationView, error], error) {
		return operation.InTx(ctx, s.coord, "ConfirmPayment", func(ctx context.Context, db bun.IDB) (results.OperationResult[RegistrationView, error], error) {
			v, j, err := s.confirmLogic(ctx, db, registrationID)
			job = j
			return operation.DomainResult(v, err)
		})
	}))
	if err != nil {
		return RegistrationView{}, err
	}

	s.notifyBestEffort(ctx, job.Kind(), view.ID, func(ctx context.Context) error {
		return s.deps.Notifier.EnqueueConfirmation(ctx, job)
	})
	codes := make([]string, len(view.QrCodes))
	for i, qr := range view.QrCodes {
		codes[i] = qr.Code
	}
	eventbus.PublishBestEffort(ctx, s.deps.Publisher, s.logger, eventbus.TopicRegistrationConfirmed, eventbus.RegistrationConfirmed{
		RegistrationID: view.ID,
		UserID:         view.User.ID,
		Email:          view.User.Email,
		QrCodes:        codes,
		ConfirmedAt:    derefTime(view.ConfirmedAt),
	})
	return view, nil
}

func (s *RegistrationService) confirmLogic(ctx context.Context, db bun.IDB, registrationID int64) (RegistrationView, notificationservice.ConfirmationEmailJob, error) {
	var job notificationservice.ConfirmationEmailJob

	reg, err := s.lockPending(ctx, db, registrationID)
	if err != nil {
		return RegistrationView{}, job, err
	}
	if err := s.resolve(ctx, db, reg, registrationdb.StatusConfirmed, nil); err != nil {
		return RegistrationView{}, job, err
	}

	user, err := s.repo.GetUserByID(ctx, db, reg.UserID)
	if err != nil {
		return RegistrationView{}, job, fmt.Errorf("failed to load user %d: %w", reg.UserID, err)
	}
	if user.AccessCode == nil {
		if _, err := s.mintAccessCode(ctx, db, user); err != nil {
			return RegistrationView{}, job, err
		}
	}

	participants, err := s.repo.ListParticipants(ctx, db, reg.ID)
	if err != nil {
		return RegistrationView{}, job, err
	}
	counts := make(map[int64]int)
	for _, p := range participants {
		counts[p.CategoryID]++
	}
	if len(counts) > 0 {
		if _, err := s.deps.QrIssuer.IssueQrCodes(ctx, db, reg.ID, counts, s.deps.Slack); err != nil {
			return RegistrationView{}, job, err
		}
	}

	view, err := s.viewLogic(ctx, db, reg.ID)
	if err != nil {
		return RegistrationView{}, job, err
	}
	names, err := s.categoryNames(ctx, db)
	if err != nil {
		return RegistrationView{}, job, err
	}

	job = notificationservice.ConfirmationEmailJob{
		RegistrationID: view.ID,
		Email:          view.User.Email,
		Name:           view.User.Name,
		AccessCode:     *user.AccessCode,
		TotalAmount:    view.TotalAmount,
		QrCodes:        make([]notificationservice.QrCodeLine, len(view.QrCodes)),
	}
	for i, qr := range view.QrCodes {
		job.QrCodes[i] = notificationservice.QrCodeLine{
			Code:         qr.Code,
			CategoryName: names[qr.CategoryID],
			TotalPacks:   qr.TotalPacks,
			MaxScans:     qr.MaxScans,
		}
	}
	return view, job, nil
}

func (s *RegistrationService) DeclinePayment(ctx context.Context, registrationID int64, reason string) (RegistrationView, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultDeclineReason
	}
	var released int

	view, err := operation.Unwrap(operation.WithTelemetry(ctx, s.telemetry, "DeclinePayment", strconv.FormatInt(registrationID, 10), func(ctx context.Context) (results.OperationResult[RegistrationView, error], error) {
		return operation.InTx(ctx, s.coord, "DeclinePayment", func(ctx context.Context, db bun.IDB) (results.OperationResult[RegistrationView, error], error) {
			v, n, err := s.declineLogic(ctx, db, registrationID, reason)
			released = n
			return operation.DomainResult(v, err)
		})
	}))
	if err != nil {
		return RegistrationView{}, err
	}

	job := notificationservice.DeclineEmailJob{
		RegistrationID: view.ID,
		Email:          view.User.Email,
		Name:           view.User.Name,
		Reason:         reason,
	}
	s.notifyBestEffort(ctx, job.Kind(), view.ID, func(ctx context.Context) error {
		return s.deps.Notifier.EnqueueDecline(ctx, job)
	})
	eventbus.PublishBestEffort(ctx, s.deps.Publisher, s.logger, eventbus.TopicRegistrationDeclined, eventbus.RegistrationDeclined{
		RegistrationID:         view.ID,
		UserID:                 view.User.ID,
		Reason:                 reason,
		ReleasedEarlyBirdSlots: released,
		DeclinedAt:             derefTime(view.DeclinedAt),
	})
	return view, nil
}

// declineLogic keeps the registration and its participants as an audit trail;
// only the early-bird claims are given back. The ledger gets the participant
// count of every category the registration touched, which is what the LIFO
// policy releases.
func (s *RegistrationService) declineLogic(ctx context.Context, db bun.IDB, registrationID int64, reason string) (RegistrationView, int, error) {
	reg, err := s.lockPending(ctx, db, registrationID)
	if err != nil {
		return RegistrationView{}, 0, err
	}
	if err := s.resolve(ctx, db, reg, registrationdb.StatusDeclined, &reason); err != nil {
		return RegistrationView{}, 0, err
	}

	participants, err := s.repo.ListParticipants(ctx, db, reg.ID)
	if err != nil {
		return RegistrationView{}, 0, err
	}
	perCategory := make(map[int64]int)
	for _, p := range participants {
		perCategory[p.CategoryID]++
	}
	released := 0
	if len(perCategory) > 0 {
		if released, err = s.deps.Ledger.ReleaseForRegistration(ctx, db, reg.ID, perCategory); err != nil {
			return RegistrationView{}, 0, err
		}
	}

	view, err := s.viewLogic(ctx, db, reg.ID)
	if err != nil {
		return RegistrationView{}, 0, err
	}
	return view, released, nil
}

func (s *RegistrationService) GetPaymentProof(ctx context.Context, paymentID int64) (string, error) {
	return operation.Unwrap(operation.WithTelemetry(ctx, s.telemetry, "GetPaymentProof", strconv.FormatInt(paymentID, 10), func(ctx context.Context) (results.OperationResult[string, error], error) {
		res, err := operation.InTx(ctx, s.coord, "GetPaymentProof", func(ctx context.Context, db bun.IDB) (results.OperationResult[string, error], error) {
			payment, err := s.repo.GetPayment(ctx, db, paymentID)
			if errors.Is(err, registrationdb.ErrNotFound) {
				err = apperr.NotFoundf("payment %d", paymentID)
			}
			if err != nil {
				return operation.DomainResult("", err)
			}
			return operation.DomainResult(payment.ProofRef, nil)
		})
		if err != nil || res.IsFailure() {
			return res, err
		}
		if s.deps.Blobs == nil {
			return results.OperationResult[string, error]{}, fmt.Errorf("%w: no blob store configured", apperr.ErrExternalService)
		}
		url, err := s.deps.Blobs.URL(ctx, *res.Success)
		if err != nil {
			return results.OperationResult[string, error]{}, fmt.Errorf("%w: %v", apperr.ErrExternalService, err)
		}
		return results.SuccessResult[string, error](url), nil
	}))
}

func (s *RegistrationService) categoryNames(ctx context.Context, db bun.IDB) (map[int64]string, error) {
	categories, err := s.deps.Catalog.ListCategories(ctx, db)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

