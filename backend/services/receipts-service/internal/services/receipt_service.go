package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/config"
	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/constants"
	internal_utils "github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/utils"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-models"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-repositories"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-utils"
	"github.com/sirupsen/logrus"
)

type GeneratedReceipt struct {
	Receipt   *models.RentReceipt
	Created   bool
	SignedURL string
}

type SendResult struct {
	Receipt       *models.RentReceipt
	SignedURL     string
	EmailDisabled bool
	MessageID     string
}

// ReceiptService produces receipt documents and delivers them to tenants.
type ReceiptService interface {
	Generate(ctx context.Context, userID, leaseID uuid.UUID, period models.Period, contentText *string) (*GeneratedReceipt, error)
	Send(ctx context.Context, userID, receiptID uuid.UUID, resendOnly bool) (*SendResult, error)
	GenerateAndSend(ctx context.Context, lease *models.Lease, period models.Period) (*SendResult, error)
	SignedURL(ctx context.Context, userID, receiptID uuid.UUID) (string, error)
	ListForLease(ctx context.Context, userID, leaseID uuid.UUID) ([]*models.RentReceipt, error)
}

func NewReceiptService(
	cfg *config.Config,
	leaseRepo repositories.LeaseRepository,
	receiptRepo repositories.RentReceiptRepository,
	landlordRepo repositories.LandlordRepository,
	tenantRepo repositories.TenantRepository,
	propertyRepo repositories.PropertyRepository,
	store ObjectStore,
	renderer PDFRenderer,
	mailer Mailer,
) ReceiptService {
	return &receiptService{
		cfg:          cfg,
		leaseRepo:    leaseRepo,
		receiptRepo:  receiptRepo,
		landlordRepo: landlordRepo,
		tenantRepo:   tenantRepo,
		propertyRepo: propertyRepo,
		store:        store,
		renderer:     renderer,
		mailer:       mailer,
		now:          time.Now,
	}
}

type receiptService struct {
	cfg          *config.Config
	leaseRepo    repositories.LeaseRepository
	receiptRepo  repositories.RentReceiptRepository
	landlordRepo repositories.LandlordRepository
	tenantRepo   repositories.TenantRepository
	propertyRepo repositories.PropertyRepository
	store        ObjectStore // nil when storage is not configured
	renderer     PDFRenderer
	mailer       Mailer
	now          func() time.Time
}

func (s *receiptService) Generate(
	ctx context.Context,
	userID, leaseID uuid.UUID,
	period models.Period,
	contentText *string,
) (*GeneratedReceipt, error) {
	lease, err := s.ownedLease(ctx, userID, leaseID)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, lease, period, contentText)
}

func (s *receiptService) generate(
	ctx context.Context,
	lease *models.Lease,
	period models.Period,
	contentText *string,
) (*GeneratedReceipt, error) {
	if period.End.Before(period.Start) {
		return nil, internal_utils.ErrInvalidPeriod
	}

	parties, loc := s.loadParties(ctx, lease)
	content := utils.Val(contentText)
	if content == "" {
		content = DefaultReceiptContent(lease, period, parties)
	}

	now := s.now()
	rec := &models.RentReceipt{
		ID:           uuid.New(),
		LeaseID:      lease.ID,
		UserID:       lease.UserID,
		PeriodStart:  period.Start,
		PeriodEnd:    period.End,
		RentCents:    lease.RentCents,
		ChargesCents: lease.ChargesCents,
		TotalCents:   lease.TotalCents(),
		IssueDate:    issueDate(now, loc),
		ContentText:  content,
		Status:       models.ReceiptStatusGenerated,
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}
	created, err := s.receiptRepo.Upsert(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("upsert receipt: %w", err)
	}

	logger := utils.Logger.WithFields(logrus.Fields{
		"lease_id":   lease.ID,
		"receipt_id": rec.ID,
		"period":     period.Key(),
	})
	logger.Infof("Receipt upserted (created=%t)", created)

	out := &GeneratedReceipt{Receipt: rec, Created: created}
	if s.store == nil {
		logger.Warn("Object storage disabled; receipt kept without PDF")
		return out, nil
	}

	pdfBytes, err := s.renderer.Render(receiptDocument(rec, s.cfg.OrganizationName))
	if err != nil {
		return nil, err
	}
	key := internal_utils.ReceiptObjectKey(lease.UserID, lease.ID, rec.ID, period)
	stored, err := s.store.Put(ctx, key, pdfBytes, constants.ReceiptContentType)
	if err != nil {
		// The row stays without pdf_url until generate is called again.
		logger.WithError(err).Error("Receipt PDF upload failed")
		return nil, err
	}
	locator := stored.String()
	if err := s.receiptRepo.UpdatePDFURL(ctx, rec.ID, locator); err != nil {
		return nil, fmt.Errorf("persist pdf locator: %w", err)
	}
	rec.PDFURL = &locator

	out.SignedURL, err = s.store.SignedURL(ctx, stored, s.cfg.SignedURLTTL)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *receiptService) Send(ctx context.Context, userID, receiptID uuid.UUID, resendOnly bool) (*SendResult, error) {
	rec, err := s.ownedReceipt(ctx, userID, receiptID)
	if err != nil {
		return nil, err
	}
	lease, err := s.ownedLease(ctx, userID, rec.LeaseID)
	if err != nil {
		return nil, err
	}

	var signedURL string
	if !resendOnly {
		content := rec.ContentText
		gen, err := s.generate(ctx, lease, rec.Period(), &content)
		if err != nil {
			return nil, err
		}
		rec, signedURL = gen.Receipt, gen.SignedURL
	}
	return s.deliver(ctx, lease, rec, signedURL)
}

func (s *receiptService) GenerateAndSend(ctx context.Context, lease *models.Lease, period models.Period) (*SendResult, error) {
	existing, err := s.receiptRepo.GetByLeaseAndPeriod(ctx, lease.ID, period)
	if err != nil {
		return nil, err
	}
	var content *string
	if existing != nil && existing.ContentText != "" {
		content = &existing.ContentText
	}
	gen, err := s.generate(ctx, lease, period, content)
	if err != nil {
		return nil, err
	}
	return s.deliver(ctx, lease, gen.Receipt, gen.SignedURL)
}

func (s *receiptService) SignedURL(ctx context.Context, userID, receiptID uuid.UUID) (string, error) {
	rec, err := s.ownedReceipt(ctx, userID, receiptID)
	if err != nil {
		return "", err
	}
	if s.store == nil || !rec.HasPDF() {
		return "", internal_utils.ErrPDFNotAvailable
	}
	loc, err := internal_utils.ParseLocator(*rec.PDFURL)
	if err != nil {
		return "", err
	}
	return s.store.SignedURL(ctx, loc, s.cfg.SignedURLTTL)
}

func (s *receiptService) ListForLease(ctx context.Context, userID, leaseID uuid.UUID) ([]*models.RentReceipt, error) {
	if _, err := s.ownedLease(ctx, userID, leaseID); err != nil {
		return nil, err
	}
	return s.receiptRepo.ListByLease(ctx, leaseID)
}

// deliver emails the receipt and records the outcome on the row.
func (s *receiptService) deliver(
	ctx context.Context,
	lease *models.Lease,
	rec *models.RentReceipt,
	signedURL string,
) (*SendResult, error) {
	logger := utils.Logger.WithFields(logrus.Fields{"lease_id": lease.ID, "receipt_id": rec.ID})

	tenant, err := s.tenantRepo.GetByID(ctx, lease.TenantID)
	if err != nil {
		return nil, err
	}
	to, toName := s.recipient(lease, tenant)
	if to == "" {
		s.recordSendError(ctx, rec, "", internal_utils.ErrNoRecipient)
		return nil, internal_utils.ErrNoRecipient
	}

	pdfBytes, err := s.pdfBytes(ctx, rec)
	if err != nil {
		s.recordSendError(ctx, rec, to, err)
		return nil, fmt.Errorf("%w: %v", internal_utils.ErrSendFailed, err)
	}

	msg := receiptEmail(rec, to, toName, pdfBytes)
	id, sendErr := s.mailer.Send(ctx, msg)

	result := &SendResult{Receipt: rec, SignedURL: signedURL, MessageID: id}
	switch {
	case errors.Is(sendErr, ErrEmailDisabled):
		logger.Warn("Email provider disabled; receipt archived without sending")
		if err := s.transition(ctx, rec, models.ReceiptStatusArchived, func() error {
			return s.receiptRepo.MarkArchived(ctx, rec.ID)
		}); err != nil {
			return nil, err
		}
		result.EmailDisabled = true
		return result, nil

	case sendErr != nil:
		logger.WithError(sendErr).Error("Receipt email failed")
		s.recordSendError(ctx, rec, to, sendErr)
		return nil, fmt.Errorf("%w: %v", internal_utils.ErrSendFailed, sendErr)
	}

	sentAt := s.now().UTC()
	if err := s.transition(ctx, rec, models.ReceiptStatusSent, func() error {
		return s.receiptRepo.MarkSent(ctx, rec.ID, to, sentAt)
	}); err != nil {
		return nil, err
	}
	rec.SentTo, rec.SentAt, rec.SendError = &to, &sentAt, nil
	logger.Infof("Receipt sent to %s", to)
	return result, nil
}

func (s *receiptService) transition(ctx context.Context, rec *models.RentReceipt, to models.ReceiptStatusType, write func() error) error {
	if err := models.ValidateReceiptTransition(rec.Status, to); err != nil {
		return err
	}
	if err := write(); err != nil {
		return fmt.Errorf("mark receipt %s: %w", to, err)
	}
	rec.Status = to
	return nil
}

func (s *receiptService) recordSendError(ctx context.Context, rec *models.RentReceipt, to string, cause error) {
	msg := cause.Error()
	if err := s.transition(ctx, rec, models.ReceiptStatusError, func() error {
		return s.receiptRepo.MarkSendError(ctx, rec.ID, to, msg)
	}); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to record send error on receipt %s", rec.ID)
		return
	}
	rec.SendError = &msg
}

// pdfBytes reads the stored PDF, or renders it in memory when the object is
// not available (storage disabled, upload never completed).
func (s *receiptService) pdfBytes(ctx context.Context, rec *models.RentReceipt) ([]byte, error) {
	if s.store != nil && rec.HasPDF() {
		loc, err := internal_utils.ParseLocator(*rec.PDFURL)
		if err != nil {
			return nil, err
		}
		return s.store.Get(ctx, loc)
	}
	return s.renderer.Render(receiptDocument(rec, s.cfg.OrganizationName))
}

func (s *receiptService) recipient(lease *models.Lease, tenant *models.Tenant) (string, string) {
	var name string
	if tenant != nil {
		name = tenant.FullName
	}
	if e := utils.Val(lease.ReceiptEmail); e != "" {
		return e, name
	}
	if tenant != nil {
		return utils.Val(tenant.Email), name
	}
	return "", ""
}

func (s *receiptService) loadParties(ctx context.Context, lease *models.Lease) (receiptParties, *time.Location) {
	var p receiptParties
	var err error
	if p.landlord, err = s.landlordRepo.GetByID(ctx, lease.UserID); err != nil {
		utils.Logger.WithError(err).Warnf("Landlord lookup failed for lease %s", lease.ID)
	}
	if p.tenant, err = s.tenantRepo.GetByID(ctx, lease.TenantID); err != nil {
		utils.Logger.WithError(err).Warnf("Tenant lookup failed for lease %s", lease.ID)
	}
	if p.property, err = s.propertyRepo.GetByID(ctx, lease.PropertyID); err != nil {
		utils.Logger.WithError(err).Warnf("Property lookup failed for lease %s", lease.ID)
	}
	return p, leaseLocation(lease, p.property, s.cfg.DefaultTimezone)
}

func (s *receiptService) ownedLease(ctx context.Context, userID, leaseID uuid.UUID) (*models.Lease, error) {
	lease, err := s.leaseRepo.GetByID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, internal_utils.ErrLeaseNotFound
	}
	if lease.UserID != userID {
		return nil, internal_utils.ErrForbidden
	}
	return lease, nil
}

func (s *receiptService) ownedReceipt(ctx context.Context, userID, receiptID uuid.UUID) (*models.RentReceipt, error) {
	rec, err := s.receiptRepo.GetByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, internal_utils.ErrReceiptNotFound
	}
	if rec.UserID != userID {
		return nil, internal_utils.ErrForbidden
	}
	return rec, nil
}

// leaseLocation resolves the zone a lease's dates are computed in.
func leaseLocation(lease *models.Lease, property *models.Property, fallback string) *time.Location {
	candidates := []*string{lease.TimeZone}
	var lat, lng *float64
	if property != nil {
		candidates = append(candidates, property.TimeZone)
		lat, lng = property.Latitude, property.Longitude
	}
	return internal_utils.ResolveLocation(candidates, lat, lng, fallback)
}
