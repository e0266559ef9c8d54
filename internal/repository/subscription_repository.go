package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DiogoBrazil/medimage-api/internal/domain"
)

// SubscriptionRepository encapsulates subscription persistence.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) error
	Update(ctx context.Context, sub *domain.Subscription) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Subscription, error)
	GetByAdmin(ctx context.Context, adminID string) (*domain.Subscription, error)
	ListAll(ctx context.Context, limit, offset int) ([]domain.Subscription, error)
}

type subscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewSubscriptionRepository instantiates repository.
func NewSubscriptionRepository(pool *pgxpool.Pool) SubscriptionRepository {
	return &subscriptionRepository{pool: pool}
}

const subscriptionColumns = `id, admin_id, start_date, end_date, status, created_at`

func (r *subscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	const query = `
        INSERT INTO subscriptions (admin_id, start_date, end_date, status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		sub.AdminID,
		sub.StartDate,
		sub.EndDate,
		sub.Status,
	).Scan(&sub.ID, &sub.CreatedAt)
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *domain.Subscription) error {
	const query = `
        UPDATE subscriptions SET start_date=$1, end_date=$2, status=$3
        WHERE id=$4`

	cmd, err := r.pool.Exec(ctx, query,
		sub.StartDate,
		sub.EndDate,
		sub.Status,
		sub.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *subscriptionRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM subscriptions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *subscriptionRepository) GetByID(ctx context.Context, id string) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *subscriptionRepository) GetByAdmin(ctx context.Context, adminID string) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE admin_id=$1`
	return r.fetchSingle(ctx, query, adminID)
}

func (r *subscriptionRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Subscription, error) {
	var sub domain.Subscription
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&sub.ID,
		&sub.AdminID,
		&sub.StartDate,
		&sub.EndDate,
		&sub.Status,
		&sub.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) ListAll(ctx context.Context, limit, offset int) ([]domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + `
        FROM subscriptions ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, normalizeLimit(limit), normalizeOffset(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Subscription
	for rows.Next() {
		var sub domain.Subscription
		if err := rows.Scan(&sub.ID, &sub.AdminID, &sub.StartDate, &sub.EndDate, &sub.Status, &sub.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, sub)
	}
	return result, rows.Err()
}
