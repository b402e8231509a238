package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-models"
)

type ReceiptActionRepository interface {
	Create(ctx context.Context, a *models.ReceiptAction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ReceiptAction, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.ReceiptAction, error)

	// TransitionIf moves the action from -> to in a single conditional UPDATE.
	// RowsAffected() == 0 means the row was not in state `from` any more.
	TransitionIf(ctx context.Context, id uuid.UUID, from, to models.ActionStatusType, upd models.ActionUpdate) (pgconn.CommandTag, error)

	ListStuckProcessing(ctx context.Context, olderThan time.Time) ([]*models.ReceiptAction, error)
	ListByLease(ctx context.Context, leaseID uuid.UUID) ([]*models.ReceiptAction, error)
}

type receiptActionRepo struct {
	db DB
}

func NewReceiptActionRepository(db DB) ReceiptActionRepository {
	return &receiptActionRepo{db: db}
}

func (r *receiptActionRepo) Create(ctx context.Context, a *models.ReceiptAction) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO receipt_actions (
            id, lease_id, user_id, period_start, period_end, token_hash,
            status, created_at, expires_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW())
    `, a.ID, a.LeaseID, a.UserID, a.PeriodStart, a.PeriodEnd, a.TokenHash,
		a.Status, a.CreatedAt, a.ExpiresAt)
	return err
}

func (r *receiptActionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ReceiptAction, error) {
	return scanAction(r.db.QueryRow(ctx, baseSelectAction()+" WHERE id=$1", id))
}

func (r *receiptActionRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*models.ReceiptAction, error) {
	return scanAction(r.db.QueryRow(ctx, baseSelectAction()+" WHERE token_hash=$1", tokenHash))
}

func (r *receiptActionRepo) TransitionIf(
	ctx context.Context,
	id uuid.UUID,
	from, to models.ActionStatusType,
	upd models.ActionUpdate,
) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
        UPDATE receipt_actions SET
            status = $1,
            decision = COALESCE($2, decision),
            outcome = COALESCE($3, outcome),
            result_receipt_id = COALESCE($4, result_receipt_id),
            error_message = COALESCE($5, error_message),
            processing_at = CASE WHEN $1 = 'processing' THEN NOW() ELSE processing_at END,
            consumed_at = CASE WHEN $1 IN ('consumed', 'error') THEN NOW() ELSE consumed_at END,
            updated_at = NOW()
        WHERE id = $6 AND status = $7
    `, to, upd.Decision, upd.Outcome, upd.ResultReceiptID, upd.ErrorMessage, id, from)
}

func (r *receiptActionRepo) ListStuckProcessing(ctx context.Context, olderThan time.Time) ([]*models.ReceiptAction, error) {
	return r.list(ctx, baseSelectAction()+" WHERE status='processing' AND processing_at < $1 ORDER BY processing_at", olderThan)
}

func (r *receiptActionRepo) ListByLease(ctx context.Context, leaseID uuid.UUID) ([]*models.ReceiptAction, error) {
	return r.list(ctx, baseSelectAction()+" WHERE lease_id=$1 ORDER BY created_at DESC", leaseID)
}

func (r *receiptActionRepo) list(ctx context.Context, q string, args ...any) ([]*models.ReceiptAction, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ReceiptAction
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func baseSelectAction() string {
	return `
        SELECT
            id, lease_id, user_id, period_start, period_end, token_hash, status,
            decision, outcome, result_receipt_id, error_message,
            created_at, expires_at, processing_at, consumed_at, updated_at
        FROM receipt_actions
    `
}

func scanAction(row pgx.Row) (*models.ReceiptAction, error) {
	var a models.ReceiptAction
	err := row.Scan(
		&a.ID, &a.LeaseID, &a.UserID, &a.PeriodStart, &a.PeriodEnd, &a.TokenHash, &a.Status,
		&a.Decision, &a.Outcome, &a.ResultReceiptID, &a.ErrorMessage,
		&a.CreatedAt, &a.ExpiresAt, &a.ProcessingAt, &a.ConsumedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
