package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-models"
)

type PropertyRepository interface {
	Create(ctx context.Context, p *models.Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Property, error)
}

type propertyRepo struct {
	db DB
}

func NewPropertyRepository(db DB) PropertyRepository {
	return &propertyRepo{db: db}
}

func (r *propertyRepo) Create(ctx context.Context, p *models.Property) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO properties (
            id, user_id, label, address, city, zip_code, time_zone,
            latitude, longitude, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW())
    `,
		p.ID,
		p.UserID,
		p.Label,
		p.Address,
		p.City,
		p.ZipCode,
		p.TimeZone,
		p.Latitude,
		p.Longitude,
	)
	return err
}

func (r *propertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	return scanProperty(r.db.QueryRow(ctx, baseSelectProperty()+" WHERE id=$1", id))
}

func (r *propertyRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Property, error) {
	rows, err := r.db.Query(ctx, baseSelectProperty()+" WHERE user_id=$1 ORDER BY created_at", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func baseSelectProperty() string {
	return `
        SELECT
            id, user_id, label,
            address, city, zip_code, time_zone,
            latitude, longitude, created_at
        FROM properties
    `
}

func scanProperty(row pgx.Row) (*models.Property, error) {
	var p models.Property
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Label,
		&p.Address,
		&p.City,
		&p.ZipCode,
		&p.TimeZone,
		&p.Latitude,
		&p.Longitude,
		&p.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
