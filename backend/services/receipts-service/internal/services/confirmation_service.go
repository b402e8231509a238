package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/config"
	internal_utils "github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/utils"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-models"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-repositories"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-utils"
	"github.com/sirupsen/logrus"
)

type ConfirmResult struct {
	Action        *models.ReceiptAction
	Decision      models.Decision
	Receipt       *models.RentReceipt
	EmailDisabled bool
}

// ConfirmationService drives a confirmation token through
// pending -> processing -> consumed|error.
type ConfirmationService interface {
	Confirm(ctx context.Context, rawToken, decision string) (*ConfirmResult, error)

	// ListStuck returns actions left in processing for longer than olderThan.
	ListStuck(ctx context.Context, olderThan time.Duration) ([]*models.ReceiptAction, error)
	// ResetStuck moves a processing action to error so the landlord can be
	// issued a fresh token.
	ResetStuck(ctx context.Context, actionID uuid.UUID) error
}

func NewConfirmationService(
	cfg *config.Config,
	actionRepo repositories.ReceiptActionRepository,
	leaseRepo repositories.LeaseRepository,
	paymentRepo repositories.RentPaymentRepository,
	propertyRepo repositories.PropertyRepository,
	receipts ReceiptService,
) ConfirmationService {
	return &confirmationService{
		cfg:          cfg,
		actionRepo:   actionRepo,
		leaseRepo:    leaseRepo,
		paymentRepo:  paymentRepo,
		propertyRepo: propertyRepo,
		receipts:     receipts,
		now:          time.Now,
	}
}

type confirmationService struct {
	cfg          *config.Config
	actionRepo   repositories.ReceiptActionRepository
	leaseRepo    repositories.LeaseRepository
	paymentRepo  repositories.RentPaymentRepository
	propertyRepo repositories.PropertyRepository
	receipts     ReceiptService
	now          func() time.Time
}

func (s *confirmationService) Confirm(ctx context.Context, rawToken, decisionStr string) (*ConfirmResult, error) {
	decision, ok := models.ParseDecision(decisionStr)
	if !ok {
		return nil, internal_utils.ErrInvalidAction
	}
	if rawToken == "" {
		return nil, internal_utils.ErrInvalidToken
	}

	action, err := s.actionRepo.GetByTokenHash(ctx, utils.HashToken(rawToken))
	if err != nil {
		return nil, err
	}
	if action == nil {
		return nil, internal_utils.ErrInvalidToken
	}

	logger := utils.Logger.WithFields(logrus.Fields{
		"action_id": action.ID,
		"lease_id":  action.LeaseID,
		"decision":  decision,
	})

	if action.Status != models.ActionStatusPending {
		logger.Warnf("Confirmation replayed on %s action", action.Status)
		return nil, internal_utils.ErrTokenAlreadyUsed
	}

	if action.IsExpired(s.now(), s.cfg.ConfirmTokenTTL) {
		if _, err := s.move(ctx, action, models.ActionStatusExpired, models.ActionUpdate{}); err != nil {
			logger.WithError(err).Warn("Failed to persist expired status")
		}
		return nil, internal_utils.ErrTokenExpired
	}

	// Sole guard against double submission: one conditional UPDATE.
	locked, err := s.move(ctx, action, models.ActionStatusProcessing, models.ActionUpdate{Decision: &decision})
	if err != nil {
		return nil, err
	}
	if !locked {
		logger.Warn("Confirmation lost the processing lock")
		return nil, internal_utils.ErrLockFailed
	}

	result := &ConfirmResult{Action: action, Decision: decision}

	if decision == models.DecisionNo {
		outcome := models.ActionOutcomeNotPaid
		if err := s.finish(ctx, action, models.ActionStatusConsumed, models.ActionUpdate{Outcome: &outcome}); err != nil {
			return nil, err
		}
		logger.Info("Landlord reported rent as unpaid")
		return result, nil
	}

	sendRes, err := s.processPaid(ctx, action)
	if err != nil {
		logger.WithError(err).Error("Paid confirmation failed")
		msg := err.Error()
		outcome := models.ActionOutcomeSendFailed
		upd := models.ActionUpdate{Outcome: &outcome, ErrorMessage: &msg}
		if ferr := s.finish(ctx, action, models.ActionStatusError, upd); ferr != nil {
			logger.WithError(ferr).Error("Failed to record action error")
		}
		if errors.Is(err, internal_utils.ErrSendFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", internal_utils.ErrSendFailed, err)
	}

	outcome := models.ActionOutcomeSent
	if sendRes.EmailDisabled {
		outcome = models.ActionOutcomeEmailDisabled
	}
	receiptID := sendRes.Receipt.ID
	if err := s.finish(ctx, action, models.ActionStatusConsumed, models.ActionUpdate{
		Outcome:         &outcome,
		ResultReceiptID: &receiptID,
	}); err != nil {
		return nil, err
	}

	if err := s.advanceWatermark(ctx, action); err != nil {
		logger.WithError(err).Warn("Failed to advance lease watermark")
	}

	result.Receipt = sendRes.Receipt
	result.EmailDisabled = sendRes.EmailDisabled
	logger.WithField("receipt_id", receiptID).Infof("Paid confirmation processed (%s)", outcome)
	return result, nil
}

// advanceWatermark marks the lease's current local month as handled when the
// confirmed period is that month. Other months never move the watermark.
func (s *confirmationService) advanceWatermark(ctx context.Context, action *models.ReceiptAction) error {
	lease, err := s.leaseRepo.GetByID(ctx, action.LeaseID)
	if err != nil || lease == nil {
		return err
	}
	var property *models.Property
	if s.propertyRepo != nil {
		if property, err = s.propertyRepo.GetByID(ctx, lease.PropertyID); err != nil {
			return err
		}
	}
	loc := leaseLocation(lease, property, s.cfg.DefaultTimezone)
	current := internal_utils.CurrentPeriod(s.now().In(loc)).Key()
	if action.Period().Key() != current {
		return nil
	}
	_, err = s.leaseRepo.MarkAutoSentPeriod(ctx, lease.ID, current)
	return err
}

// processPaid records the payment, then generates and sends the receipt.
func (s *confirmationService) processPaid(ctx context.Context, action *models.ReceiptAction) (*SendResult, error) {
	lease, err := s.leaseRepo.GetByID(ctx, action.LeaseID)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, internal_utils.ErrLeaseNotFound
	}

	now := s.now().UTC()
	actionID := action.ID
	payment := &models.RentPayment{
		ID:          uuid.New(),
		LeaseID:     lease.ID,
		UserID:      lease.UserID,
		PeriodStart: action.PeriodStart,
		PeriodEnd:   action.PeriodEnd,
		AmountCents: lease.TotalCents(),
		PaidAt:      now,
		Method:      lease.PaymentMethod,
		Source:      models.PaymentSourceConfirmation,
		ActionID:    &actionID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.paymentRepo.Upsert(ctx, payment); err != nil {
		return nil, fmt.Errorf("record rent payment: %w", err)
	}

	return s.receipts.GenerateAndSend(ctx, lease, action.Period())
}

// move performs a conditional transition from the action's current status.
// false means the row was no longer in that status.
func (s *confirmationService) move(
	ctx context.Context,
	action *models.ReceiptAction,
	to models.ActionStatusType,
	upd models.ActionUpdate,
) (bool, error) {
	if err := models.ValidateActionTransition(action.Status, to); err != nil {
		return false, err
	}
	tag, err := s.actionRepo.TransitionIf(ctx, action.ID, action.Status, to, upd)
	if err != nil {
		return false, fmt.Errorf("transition action %s -> %s: %w", action.Status, to, err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	action.Status = to
	applyUpdate(action, upd)
	return true, nil
}

func (s *confirmationService) finish(
	ctx context.Context,
	action *models.ReceiptAction,
	to models.ActionStatusType,
	upd models.ActionUpdate,
) error {
	ok, err := s.move(ctx, action, to, upd)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: action %s left processing concurrently", utils.ErrNoRowsUpdated, action.ID)
	}
	now := s.now().UTC()
	action.ConsumedAt = &now
	return nil
}

func (s *confirmationService) ListStuck(ctx context.Context, olderThan time.Duration) ([]*models.ReceiptAction, error) {
	return s.actionRepo.ListStuckProcessing(ctx, s.now().Add(-olderThan))
}

func (s *confirmationService) ResetStuck(ctx context.Context, actionID uuid.UUID) error {
	action, err := s.actionRepo.GetByID(ctx, actionID)
	if err != nil {
		return err
	}
	if action == nil {
		return internal_utils.ErrActionNotFound
	}
	if action.Status != models.ActionStatusProcessing {
		return internal_utils.ErrActionNotStuck
	}
	outcome := models.ActionOutcomeOperatorReset
	msg := "reset by operator after stalled processing"
	if err := s.finish(ctx, action, models.ActionStatusError, models.ActionUpdate{Outcome: &outcome, ErrorMessage: &msg}); err != nil {
		if errors.Is(err, utils.ErrNoRowsUpdated) {
			return internal_utils.ErrActionNotStuck
		}
		return err
	}
	utils.Logger.WithField("action_id", actionID).Warn("Stuck confirmation reset to error")
	return nil
}

func applyUpdate(a *models.ReceiptAction, upd models.ActionUpdate) {
	if upd.Decision != nil {
		a.Decision = upd.Decision
	}
	if upd.Outcome != nil {
		a.Outcome = upd.Outcome
	}
	if upd.ResultReceiptID != nil {
		a.ResultReceiptID = upd.ResultReceiptID
	}
	if upd.ErrorMessage != nil {
		a.ErrorMessage = upd.ErrorMessage
	}
}
