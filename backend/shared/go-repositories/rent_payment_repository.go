package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-models"
)

type RentPaymentRepository interface {
	// Upsert records the payment for the period, replacing any earlier record.
	Upsert(ctx context.Context, p *models.RentPayment) error
	GetByLeaseAndPeriod(ctx context.Context, leaseID uuid.UUID, period models.Period) (*models.RentPayment, error)
}

type rentPaymentRepo struct {
	db DB
}

func NewRentPaymentRepository(db DB) RentPaymentRepository {
	return &rentPaymentRepo{db: db}
}

func (r *rentPaymentRepo) Upsert(ctx context.Context, p *models.RentPayment) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO rent_payments (
            id, lease_id, user_id, period_start, period_end, amount_cents,
            paid_at, method, source, action_id, created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10, NOW(), NOW())
        ON CONFLICT (lease_id, period_start, period_end) DO UPDATE SET
            amount_cents = EXCLUDED.amount_cents,
            paid_at = EXCLUDED.paid_at,
            method = EXCLUDED.method,
            source = EXCLUDED.source,
            action_id = EXCLUDED.action_id,
            updated_at = NOW()
    `, p.ID, p.LeaseID, p.UserID, p.PeriodStart, p.PeriodEnd, p.AmountCents,
		p.PaidAt, p.Method, p.Source, p.ActionID)
	return err
}

func (r *rentPaymentRepo) GetByLeaseAndPeriod(ctx context.Context, leaseID uuid.UUID, period models.Period) (*models.RentPayment, error) {
	row := r.db.QueryRow(ctx, `
        SELECT id, lease_id, user_id, period_start, period_end, amount_cents,
               paid_at, method, source, action_id, created_at, updated_at
        FROM rent_payments
        WHERE lease_id=$1 AND period_start=$2 AND period_end=$3
    `, leaseID, period.Start, period.End)

	var p models.RentPayment
	err := row.Scan(&p.ID, &p.LeaseID, &p.UserID, &p.PeriodStart, &p.PeriodEnd, &p.AmountCents,
		&p.PaidAt, &p.Method, &p.Source, &p.ActionID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
