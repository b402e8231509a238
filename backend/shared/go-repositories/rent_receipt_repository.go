package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-models"
)

type RentReceiptRepository interface {
	// Upsert inserts the receipt or, when (lease_id, period_start, period_end)
	// already exists, refreshes amounts and content in place. The stored row is
	// written back into rec; created is true when a new row was inserted.
	Upsert(ctx context.Context, rec *models.RentReceipt) (created bool, err error)

	GetByID(ctx context.Context, id uuid.UUID) (*models.RentReceipt, error)
	GetByLeaseAndPeriod(ctx context.Context, leaseID uuid.UUID, period models.Period) (*models.RentReceipt, error)
	ListByLease(ctx context.Context, leaseID uuid.UUID) ([]*models.RentReceipt, error)

	UpdatePDFURL(ctx context.Context, id uuid.UUID, locator string) error
	MarkSent(ctx context.Context, id uuid.UUID, sentTo string, sentAt time.Time) error
	MarkArchived(ctx context.Context, id uuid.UUID) error
	MarkSendError(ctx context.Context, id uuid.UUID, sentTo, sendErr string) error
}

type rentReceiptRepo struct {
	db DB
}

func NewRentReceiptRepository(db DB) RentReceiptRepository {
	return &rentReceiptRepo{db: db}
}

func (r *rentReceiptRepo) Upsert(ctx context.Context, rec *models.RentReceipt) (bool, error) {
	q := `
        INSERT INTO rent_receipts (
            id, lease_id, user_id, period_start, period_end,
            rent_cents, charges_cents, total_cents, issue_date, content_text,
            status, created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,'generated', NOW(), NOW())
        ON CONFLICT (lease_id, period_start, period_end) DO UPDATE SET
            rent_cents = EXCLUDED.rent_cents,
            charges_cents = EXCLUDED.charges_cents,
            total_cents = EXCLUDED.total_cents,
            issue_date = EXCLUDED.issue_date,
            content_text = EXCLUDED.content_text,
            status = CASE WHEN rent_receipts.status = 'error' THEN 'generated' ELSE rent_receipts.status END,
            updated_at = NOW()
        RETURNING ` + receiptColumns + `, (xmax = 0) AS inserted
    `
	row := r.db.QueryRow(ctx, q,
		rec.ID, rec.LeaseID, rec.UserID, rec.PeriodStart, rec.PeriodEnd,
		rec.RentCents, rec.ChargesCents, rec.TotalCents, rec.IssueDate, rec.ContentText,
	)

	var inserted bool
	dest := append(receiptScanDest(rec), &inserted)
	if err := row.Scan(dest...); err != nil {
		return false, err
	}
	return inserted, nil
}

func (r *rentReceiptRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.RentReceipt, error) {
	return scanReceipt(r.db.QueryRow(ctx, "SELECT "+receiptColumns+" FROM rent_receipts WHERE id=$1", id))
}

func (r *rentReceiptRepo) GetByLeaseAndPeriod(ctx context.Context, leaseID uuid.UUID, period models.Period) (*models.RentReceipt, error) {
	return scanReceipt(r.db.QueryRow(ctx, `
        SELECT `+receiptColumns+` FROM rent_receipts
        WHERE lease_id=$1 AND period_start=$2 AND period_end=$3
    `, leaseID, period.Start, period.End))
}

func (r *rentReceiptRepo) ListByLease(ctx context.Context, leaseID uuid.UUID) ([]*models.RentReceipt, error) {
	rows, err := r.db.Query(ctx, "SELECT "+receiptColumns+" FROM rent_receipts WHERE lease_id=$1 ORDER BY period_start DESC", leaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.RentReceipt
	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *rentReceiptRepo) UpdatePDFURL(ctx context.Context, id uuid.UUID, locator string) error {
	return r.execOne(ctx, `UPDATE rent_receipts SET pdf_url=$1, updated_at=NOW() WHERE id=$2`, locator, id)
}

func (r *rentReceiptRepo) MarkSent(ctx context.Context, id uuid.UUID, sentTo string, sentAt time.Time) error {
	return r.execOne(ctx, `
        UPDATE rent_receipts SET
            status='sent', sent_to=$1, sent_at=$2, send_error=NULL, updated_at=NOW()
        WHERE id=$3
    `, sentTo, sentAt, id)
}

func (r *rentReceiptRepo) MarkArchived(ctx context.Context, id uuid.UUID) error {
	return r.execOne(ctx, `UPDATE rent_receipts SET status='archived', send_error=NULL, updated_at=NOW() WHERE id=$1`, id)
}

func (r *rentReceiptRepo) MarkSendError(ctx context.Context, id uuid.UUID, sentTo, sendErr string) error {
	return r.execOne(ctx, `
        UPDATE rent_receipts SET status='error', sent_to=$1, send_error=$2, updated_at=NOW()
        WHERE id=$3
    `, sentTo, sendErr, id)
}

func (r *rentReceiptRepo) execOne(ctx context.Context, q string, args ...any) error {
	tag, err := r.db.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const receiptColumns = `
    id, lease_id, user_id, period_start, period_end,
    rent_cents, charges_cents, total_cents, issue_date, content_text,
    pdf_url, status, sent_to, sent_at, send_error, created_at, updated_at`

func receiptScanDest(rec *models.RentReceipt) []any {
	return []any{
		&rec.ID, &rec.LeaseID, &rec.UserID, &rec.PeriodStart, &rec.PeriodEnd,
		&rec.RentCents, &rec.ChargesCents, &rec.TotalCents, &rec.IssueDate, &rec.ContentText,
		&rec.PDFURL, &rec.Status, &rec.SentTo, &rec.SentAt, &rec.SendError, &rec.CreatedAt, &rec.UpdatedAt,
	}
}

func scanReceipt(row pgx.Row) (*models.RentReceipt, error) {
	var rec models.RentReceipt
	if err := row.Scan(receiptScanDest(&rec)...); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}
