package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DiogoBrazil/medimage-api/internal/domain"
)

// HealthUnitRepository encapsulates health unit persistence.
type HealthUnitRepository interface {
	Create(ctx context.Context, unit *domain.HealthUnit) error
	Update(ctx context.Context, unit *domain.HealthUnit) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.HealthUnit, error)
	ListByAdmin(ctx context.Context, adminID string, limit, offset int) ([]domain.HealthUnit, error)
	ListAll(ctx context.Context, limit, offset int) ([]domain.HealthUnit, error)
}

type healthUnitRepository struct {
	pool *pgxpool.Pool
}

// NewHealthUnitRepository instantiates repository.
func NewHealthUnitRepository(pool *pgxpool.Pool) HealthUnitRepository {
	return &healthUnitRepository{pool: pool}
}

const healthUnitColumns = `id, admin_id, name, cnpj, status, created_at, updated_at`

func (r *healthUnitRepository) Create(ctx context.Context, unit *domain.HealthUnit) error {
	const query = `
        INSERT INTO health_units (admin_id, name, cnpj, status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		unit.AdminID,
		unit.Name,
		unit.CNPJ,
		unit.Status,
	).Scan(&unit.ID, &unit.CreatedAt, &unit.UpdatedAt)
}

func (r *healthUnitRepository) Update(ctx context.Context, unit *domain.HealthUnit) error {
	const query = `
        UPDATE health_units SET name=$1, cnpj=$2, status=$3, updated_at=NOW()
        WHERE id=$4`

	cmd, err := r.pool.Exec(ctx, query,
		unit.Name,
		unit.CNPJ,
		unit.Status,
		unit.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *healthUnitRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM health_units WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *healthUnitRepository) GetByID(ctx context.Context, id string) (*domain.HealthUnit, error) {
	query := `SELECT ` + healthUnitColumns + ` FROM health_units WHERE id=$1`

	var unit domain.HealthUnit
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&unit.ID,
		&unit.AdminID,
		&unit.Name,
		&unit.CNPJ,
		&unit.Status,
		&unit.CreatedAt,
		&unit.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *healthUnitRepository) ListByAdmin(ctx context.Context, adminID string, limit, offset int) ([]domain.HealthUnit, error) {
	query := `SELECT ` + healthUnitColumns + `
        FROM health_units WHERE admin_id=$1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, adminID, normalizeLimit(limit), normalizeOffset(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHealthUnits(rows)
}

func (r *healthUnitRepository) ListAll(ctx context.Context, limit, offset int) ([]domain.HealthUnit, error) {
	query := `SELECT ` + healthUnitColumns + `
        FROM health_units ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, normalizeLimit(limit), normalizeOffset(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHealthUnits(rows)
}

func scanHealthUnits(rows pgx.Rows) ([]domain.HealthUnit, error) {
	var result []domain.HealthUnit
	for rows.Next() {
		var unit domain.HealthUnit
		if err := rows.Scan(
			&unit.ID,
			&unit.AdminID,
			&unit.Name,
			&unit.CNPJ,
			&unit.Status,
			&unit.CreatedAt,
			&unit.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, unit)
	}
	return result, rows.Err()
}
