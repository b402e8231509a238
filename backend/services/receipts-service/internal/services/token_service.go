package services

import (
	"context"
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

// TokenService mints one-shot confirmation tokens bound to a lease period.
type TokenService interface {
	// IssueConfirmToken returns the raw token; only its hash is stored.
	IssueConfirmToken(ctx context.Context, leaseID uuid.UUID, period models.Period, userID uuid.UUID) (string, *models.ReceiptAction, error)
}

func NewTokenService(
	cfg *config.Config,
	leaseRepo repositories.LeaseRepository,
	actionRepo repositories.ReceiptActionRepository,
) TokenService {
	return &tokenService{
		cfg:        cfg,
		leaseRepo:  leaseRepo,
		actionRepo: actionRepo,
		now:        time.Now,
	}
}

type tokenService struct {
	cfg        *config.Config
	leaseRepo  repositories.LeaseRepository
	actionRepo repositories.ReceiptActionRepository
	now        func() time.Time
}

func (s *tokenService) IssueConfirmToken(
	ctx context.Context,
	leaseID uuid.UUID,
	period models.Period,
	userID uuid.UUID,
) (string, *models.ReceiptAction, error) {
	lease, err := s.leaseRepo.GetByID(ctx, leaseID)
	if err != nil {
		return "", nil, err
	}
	if lease == nil {
		return "", nil, internal_utils.ErrLeaseNotFound
	}
	if lease.UserID != userID {
		return "", nil, internal_utils.ErrForbidden
	}

	raw, err := utils.RandomToken(constants.ConfirmTokenBytes)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	now := s.now().UTC()
	action := &models.ReceiptAction{
		ID:          uuid.New(),
		LeaseID:     lease.ID,
		UserID:      lease.UserID,
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		TokenHash:   utils.HashToken(raw),
		Status:      models.ActionStatusPending,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.cfg.ConfirmTokenTTL),
		UpdatedAt:   now,
	}
	if err := s.actionRepo.Create(ctx, action); err != nil {
		return "", nil, fmt.Errorf("create receipt action: %w", err)
	}

	utils.Logger.WithFields(logrus.Fields{
		"lease_id":  lease.ID,
		"action_id": action.ID,
		"period":    period.Key(),
	}).Info("Issued confirmation token")
	return raw, action, nil
}
