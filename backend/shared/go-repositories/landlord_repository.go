package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-models"
)

type LandlordRepository interface {
	Create(ctx context.Context, l *models.Landlord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Landlord, error)
}

type landlordRepo struct {
	db DB
}

func NewLandlordRepository(db DB) LandlordRepository {
	return &landlordRepo{db: db}
}

func (r *landlordRepo) Create(ctx context.Context, l *models.Landlord) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO landlords (id, email, full_name, phone, address, plan, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,NOW())
    `, l.ID, l.Email, l.FullName, l.Phone, l.Address, l.Plan)
	return err
}

func (r *landlordRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Landlord, error) {
	row := r.db.QueryRow(ctx, `
        SELECT id, email, full_name, phone, address, plan, created_at
        FROM landlords WHERE id=$1
    `, id)

	var l models.Landlord
	if err := row.Scan(&l.ID, &l.Email, &l.FullName, &l.Phone, &l.Address, &l.Plan, &l.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}
