package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/config"
	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/constants"
	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/routes"
	internal_utils "github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/utils"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-models"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-repositories"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-utils"
	"github.com/sirupsen/logrus"
)

const (
	SweepKindReminder = "reminder"
	SweepKindAutoSend = "auto_send"
)

// Per-lease sweep outcomes.
const (
	SweepStatusSent    = "sent"
	SweepStatusSkipped = "skipped"
	SweepStatusFailed  = "failed"
)

type SweepResult struct {
	LeaseID uuid.UUID `json:"lease_id"`
	Period  string    `json:"period,omitempty"`
	Status  string    `json:"status"`
	Reason  string    `json:"reason,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// SchedulerService runs the periodic reminder and auto-send sweeps. Each
// lease is evaluated in its own timezone; a failing lease never aborts the
// sweep.
type SchedulerService interface {
	RunReminderSweep(ctx context.Context, now time.Time) ([]SweepResult, error)
	RunAutoSendSweep(ctx context.Context, now time.Time) ([]SweepResult, error)
}

func NewSchedulerService(
	cfg *config.Config,
	leaseRepo repositories.LeaseRepository,
	landlordRepo repositories.LandlordRepository,
	propertyRepo repositories.PropertyRepository,
	plans PlanResolver,
	tokens TokenService,
	receipts ReceiptService,
	mailer Mailer,
	sms SMSSender,
	locker SweepLocker,
) SchedulerService {
	return &schedulerService{
		cfg:          cfg,
		leaseRepo:    leaseRepo,
		landlordRepo: landlordRepo,
		propertyRepo: propertyRepo,
		plans:        plans,
		tokens:       tokens,
		receipts:     receipts,
		mailer:       mailer,
		sms:          sms,
		locker:       locker,
	}
}

type schedulerService struct {
	cfg          *config.Config
	leaseRepo    repositories.LeaseRepository
	landlordRepo repositories.LandlordRepository
	propertyRepo repositories.PropertyRepository
	plans        PlanResolver
	tokens       TokenService
	receipts     ReceiptService
	mailer       Mailer
	sms          SMSSender
	locker       SweepLocker
}

type dispatchFunc func(ctx context.Context, lease *models.Lease, m internal_utils.ScheduleMatch, loc *time.Location) (SweepResult, error)

func (s *schedulerService) RunReminderSweep(ctx context.Context, now time.Time) ([]SweepResult, error) {
	return s.sweep(ctx, SweepKindReminder, now, s.sendReminder)
}

func (s *schedulerService) RunAutoSendSweep(ctx context.Context, now time.Time) ([]SweepResult, error) {
	return s.sweep(ctx, SweepKindAutoSend, now, s.autoSend)
}

func (s *schedulerService) sweep(ctx context.Context, kind string, now time.Time, dispatch dispatchFunc) ([]SweepResult, error) {
	leases, err := s.leaseRepo.ListAutomationEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("list automated leases: %w", err)
	}

	results := make([]SweepResult, 0, len(leases))
	var sent, failed int
	for _, lease := range leases {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		res := s.evaluate(ctx, kind, lease, now, dispatch)
		switch res.Status {
		case SweepStatusSent:
			sent++
		case SweepStatusFailed:
			failed++
		}
		results = append(results, res)
	}

	utils.Logger.WithFields(logrus.Fields{
		"kind":   kind,
		"leases": len(leases),
		"sent":   sent,
		"failed": failed,
	}).Info("Sweep finished")
	return results, nil
}

func (s *schedulerService) evaluate(ctx context.Context, kind string, lease *models.Lease, now time.Time, dispatch dispatchFunc) SweepResult {
	res := SweepResult{LeaseID: lease.ID, Status: SweepStatusSkipped}
	logger := utils.Logger.WithFields(logrus.Fields{"kind": kind, "lease_id": lease.ID})

	eligible, reason, err := s.eligible(ctx, kind, lease)
	if err != nil {
		return failedResult(res, err, logger)
	}
	if !eligible {
		res.Reason = reason
		return res
	}

	property, err := s.propertyRepo.GetByID(ctx, lease.PropertyID)
	if err != nil {
		logger.WithError(err).Warn("Property lookup failed; using lease timezone only")
	}
	loc := leaseLocation(lease, property, s.cfg.DefaultTimezone)

	m := internal_utils.MatchSchedule(lease, loc, now)
	res.Period = m.Period.Key()
	if !m.Due {
		res.Reason = m.Reason
		return res
	}

	lockKey := SweepLockKey(kind, lease.ID.String(), m.Period.Key())
	acquired, err := s.locker.Acquire(ctx, lockKey)
	if err != nil {
		// The watermark below still serialises runs.
		logger.WithError(err).Warn("Sweep lock unavailable; relying on watermark")
	} else if !acquired {
		res.Reason = internal_utils.SkipLocked
		return res
	}

	// Last gate before any dispatch.
	claimed, err := s.leaseRepo.MarkAutoSentPeriod(ctx, lease.ID, m.Period.Key())
	if err != nil {
		return failedResult(res, err, logger)
	}
	if !claimed {
		res.Reason = internal_utils.SkipAlreadySent
		return res
	}

	out, err := dispatch(ctx, lease, m, loc)
	if err != nil {
		// The period stays claimed; operators replay it via the reason below.
		res = failedResult(res, err, logger.WithField("period", m.Period.Key()))
		res.Reason = internal_utils.FailedAfterClaim
		return res
	}
	out.LeaseID, out.Period = lease.ID, m.Period.Key()
	return out
}

// eligible applies per-kind lease and plan filters.
func (s *schedulerService) eligible(ctx context.Context, kind string, lease *models.Lease) (bool, string, error) {
	if lease.Status != models.LeaseStatusActive {
		return false, internal_utils.SkipLeaseNotActive, nil
	}

	wantsAutoSend := lease.AutoSendEnabled
	canAutoSend := false
	if wantsAutoSend {
		ok, err := s.plans.CanAutoSend(ctx, lease.UserID)
		if err != nil {
			return false, "", err
		}
		canAutoSend = ok
	}

	switch kind {
	case SweepKindAutoSend:
		if !wantsAutoSend {
			return false, internal_utils.SkipAutoSendOff, nil
		}
		if !canAutoSend {
			return false, internal_utils.SkipPlanIneligible, nil
		}
	case SweepKindReminder:
		if !lease.AutoReminderEnabled {
			return false, internal_utils.SkipReminderOff, nil
		}
		// Leases sent automatically do not need the landlord's confirmation.
		if wantsAutoSend && canAutoSend {
			return false, internal_utils.SkipAutoSendActive, nil
		}
	}
	return true, "", nil
}

func (s *schedulerService) sendReminder(
	ctx context.Context,
	lease *models.Lease,
	m internal_utils.ScheduleMatch,
	loc *time.Location,
) (SweepResult, error) {
	landlord, err := s.landlordRepo.GetByID(ctx, lease.UserID)
	if err != nil {
		return SweepResult{}, err
	}
	to := utils.Val(lease.ReminderEmail)
	if to == "" && landlord != nil {
		to = landlord.Email
	}
	if to == "" {
		return SweepResult{Status: SweepStatusSkipped, Reason: internal_utils.SkipNoRecipient}, nil
	}

	raw, _, err := s.tokens.IssueConfirmToken(ctx, lease.ID, m.Period, lease.UserID)
	if err != nil {
		return SweepResult{}, err
	}

	links := s.linksFor(raw)
	expected := internal_utils.ExpectedPaymentDate(lease.PaymentDay, m.Period.Start.Year(), m.Period.Start.Month(), loc)
	var name string
	if landlord != nil {
		name = landlord.FullName
	}
	msg := reminderEmail(to, name, lease, m.Period, expected, links)

	res := SweepResult{Status: SweepStatusSent}
	if _, err := s.mailer.Send(ctx, msg); err != nil {
		if !errors.Is(err, ErrEmailDisabled) {
			return SweepResult{}, err
		}
		utils.Logger.WithField("lease_id", lease.ID).Warn("Email provider disabled; reminder not emailed")
		res.Reason = models.ActionOutcomeEmailDisabled
	}

	if phone := utils.Val(lease.ReminderPhone); phone != "" {
		body := fmt.Sprintf(constants.SMSPaymentReminder, s.cfg.OrganizationName, MonthLabel(m.Period), utils.FormatEuros(lease.TotalCents()), links.yes, links.no)
		if err := s.sms.SendSMS(ctx, phone, body); err != nil && !errors.Is(err, ErrSMSDisabled) {
			utils.Logger.WithError(err).WithField("lease_id", lease.ID).Warn("Reminder SMS failed")
		}
	}
	return res, nil
}

func (s *schedulerService) autoSend(
	ctx context.Context,
	lease *models.Lease,
	m internal_utils.ScheduleMatch,
	_ *time.Location,
) (SweepResult, error) {
	out, err := s.receipts.GenerateAndSend(ctx, lease, m.Period)
	if err != nil {
		return SweepResult{}, err
	}
	res := SweepResult{Status: SweepStatusSent}
	if out.EmailDisabled {
		res.Reason = models.ActionOutcomeEmailDisabled
	}
	return res, nil
}

type confirmLinks struct {
	yes, no string
}

func (s *schedulerService) linksFor(rawToken string) confirmLinks {
	yes, no := ConfirmURLs(s.cfg.AppUrl, rawToken)
	return confirmLinks{yes: yes, no: no}
}

// ConfirmURLs builds the yes/no confirmation links for a raw token.
func ConfirmURLs(appURL, rawToken string) (yes, no string) {
	build := func(d models.Decision) string {
		q := url.Values{"token": {rawToken}, "action": {string(d)}}
		return appURL + routes.ReceiptsConfirm + "?" + q.Encode()
	}
	return build(models.DecisionYes), build(models.DecisionNo)
}

func failedResult(res SweepResult, err error, logger *logrus.Entry) SweepResult {
	logger.WithError(err).Error("Sweep failed for lease")
	res.Status = SweepStatusFailed
	res.Error = err.Error()
	return res
}

func reminderEmail(to, name string, lease *models.Lease, period models.Period, expected time.Time, links confirmLinks) EmailMessage {
	month := MonthLabel(period)
	total := utils.FormatEuros(lease.TotalCents())
	due := expected.Format(frenchDate)

	plain := fmt.Sprintf(
		"Bonjour %s,\n\nLe loyer de %s (%s) était attendu le %s.\n\nAvez-vous reçu le paiement ?\n\nOui, envoyer la quittance : %s\nNon, pas encore : %s\n\nCe lien est valable 7 jours et ne peut être utilisé qu'une fois.\n\n%s",
		name, month, total, due, links.yes, links.no, utils.OrganizationName,
	)
	htmlBody := fmt.Sprintf(
		reminderEmailHTML,
		html.EscapeString(name),
		html.EscapeString(month),
		html.EscapeString(total),
		html.EscapeString(due),
		html.EscapeString(links.yes),
		html.EscapeString(links.no),
		html.EscapeString(utils.OrganizationName),
	)
	return EmailMessage{
		ToEmail:   to,
		ToName:    name,
		Subject:   fmt.Sprintf(constants.EmailSubjectPaymentReminder, month),
		PlainText: plain,
		HTML:      htmlBody,
	}
}

func receiptEmail(rec *models.RentReceipt, to, name string, pdf []byte) EmailMessage {
	period := rec.Period()
	month := MonthLabel(period)
	total := utils.FormatEuros(rec.TotalCents)

	plain := fmt.Sprintf(
		"Bonjour %s,\n\nVeuillez trouver ci-joint votre quittance de loyer pour %s (%s).\n\nCordialement,\n%s",
		name, month, total, utils.OrganizationName,
	)
	htmlBody := fmt.Sprintf(
		receiptEmailHTML,
		html.EscapeString(name),
		html.EscapeString(month),
		html.EscapeString(total),
		html.EscapeString(utils.OrganizationName),
	)
	return EmailMessage{
		ToEmail:   to,
		ToName:    name,
		Subject:   fmt.Sprintf(constants.EmailSubjectReceipt, month),
		PlainText: plain,
		HTML:      htmlBody,
		Attachments: []EmailAttachment{{
			Filename:    internal_utils.ReceiptFileName(period),
			ContentType: constants.ReceiptContentType,
			Content:     pdf,
		}},
	}
}
