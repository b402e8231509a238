package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-repositories"
)

// PlanResolver answers entitlement questions about a landlord account.
type PlanResolver interface {
	CanAutoSend(ctx context.Context, userID uuid.UUID) (bool, error)
}

func NewPlanResolver(landlords repositories.LandlordRepository) PlanResolver {
	return &landlordPlanResolver{landlords: landlords}
}

type landlordPlanResolver struct {
	landlords repositories.LandlordRepository
}

func (r *landlordPlanResolver) CanAutoSend(ctx context.Context, userID uuid.UUID) (bool, error) {
	l, err := r.landlords.GetByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("load landlord %s: %w", userID, err)
	}
	if l == nil {
		return false, nil
	}
	return l.Plan.AllowsAutoSend(), nil
}
