package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-models"
)

type LeaseRepository interface {
	Create(ctx context.Context, l *models.Lease) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Lease, error)
	ListAutomationEnabled(ctx context.Context) ([]*models.Lease, error)

	// MarkAutoSentPeriod advances the watermark to periodKey. The watermark
	// only moves forward; false means it already covers periodKey (another run
	// claimed the period, or a later period was processed).
	MarkAutoSentPeriod(ctx context.Context, id uuid.UUID, periodKey string) (bool, error)

	UpdateIfVersion(ctx context.Context, l *models.Lease, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Lease) error) error
}

type leaseRepo struct {
	*BaseVersionedRepo[*models.Lease]
	db DB
}

func NewLeaseRepository(db DB) LeaseRepository {
	r := &leaseRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectLease()+" WHERE id=$1", scanLease)
	return r
}

func (r *leaseRepo) Create(ctx context.Context, l *models.Lease) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO leases (
            id, user_id, tenant_id, property_id, rent_cents, charges_cents,
            payment_day, time_zone, status, auto_reminder_enabled, auto_send_enabled,
            schedule_day, schedule_hour, last_auto_sent_period, reminder_email,
            reminder_phone, receipt_email, payment_method, start_date, end_date,
            created_at, updated_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20, NOW(), NOW(), 1)
    `,
		l.ID, l.UserID, l.TenantID, l.PropertyID, l.RentCents, l.ChargesCents,
		l.PaymentDay, l.TimeZone, l.Status, l.AutoReminderEnabled, l.AutoSendEnabled,
		l.ScheduleDay, l.ScheduleHour, l.LastAutoSentPeriod, l.ReminderEmail,
		l.ReminderPhone, l.ReceiptEmail, l.PaymentMethod, l.StartDate, l.EndDate,
	)
	return err
}

func (r *leaseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *leaseRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Lease, error) {
	return r.list(ctx, baseSelectLease()+" WHERE user_id=$1 ORDER BY created_at", userID)
}

func (r *leaseRepo) ListAutomationEnabled(ctx context.Context) ([]*models.Lease, error) {
	return r.list(ctx, baseSelectLease()+`
        WHERE status = 'active'
          AND (auto_reminder_enabled OR auto_send_enabled)
        ORDER BY created_at
    `)
}

func (r *leaseRepo) MarkAutoSentPeriod(ctx context.Context, id uuid.UUID, periodKey string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
        UPDATE leases SET
            last_auto_sent_period = $1,
            updated_at = NOW(),
            row_version = row_version + 1
        WHERE id = $2
          AND (last_auto_sent_period IS NULL OR last_auto_sent_period < $1)
    `, periodKey, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *leaseRepo) UpdateIfVersion(ctx context.Context, l *models.Lease, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
        UPDATE leases SET
            rent_cents = $1,
            charges_cents = $2,
            payment_day = $3,
            time_zone = $4,
            status = $5,
            auto_reminder_enabled = $6,
            auto_send_enabled = $7,
            schedule_day = $8,
            schedule_hour = $9,
            last_auto_sent_period = $10,
            reminder_email = $11,
            reminder_phone = $12,
            receipt_email = $13,
            payment_method = $14,
            end_date = $15,
            updated_at = NOW(),
            row_version = row_version + 1
        WHERE id = $16 AND row_version = $17
    `,
		l.RentCents, l.ChargesCents, l.PaymentDay, l.TimeZone, l.Status,
		l.AutoReminderEnabled, l.AutoSendEnabled, l.ScheduleDay, l.ScheduleHour,
		l.LastAutoSentPeriod, l.ReminderEmail, l.ReminderPhone, l.ReceiptEmail,
		l.PaymentMethod, l.EndDate, l.ID, expected,
	)
}

func (r *leaseRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Lease) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *leaseRepo) list(ctx context.Context, q string, args ...any) ([]*models.Lease, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Lease
	for rows.Next() {
		l, err := scanLease(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func baseSelectLease() string {
	return `
        SELECT
            id, user_id, tenant_id, property_id, rent_cents, charges_cents,
            payment_day, time_zone, status, auto_reminder_enabled, auto_send_enabled,
            schedule_day, schedule_hour, last_auto_sent_period, reminder_email,
            reminder_phone, receipt_email, payment_method, start_date, end_date,
            created_at, updated_at, row_version
        FROM leases
    `
}

func scanLease(row pgx.Row) (*models.Lease, error) {
	var l models.Lease
	err := row.Scan(
		&l.ID, &l.UserID, &l.TenantID, &l.PropertyID, &l.RentCents, &l.ChargesCents,
		&l.PaymentDay, &l.TimeZone, &l.Status, &l.AutoReminderEnabled, &l.AutoSendEnabled,
		&l.ScheduleDay, &l.ScheduleHour, &l.LastAutoSentPeriod, &l.ReminderEmail,
		&l.ReminderPhone, &l.ReceiptEmail, &l.PaymentMethod, &l.StartDate, &l.EndDate,
		&l.CreatedAt, &l.UpdatedAt, &l.RowVersion,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}
