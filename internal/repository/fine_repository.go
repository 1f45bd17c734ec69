package repository

import (
	"context"

	"github.com/segyhp/library-engine/internal/domain"

	"github.com/jmoiron/sqlx"
)

type fineRepository struct {
	db sqlx.ExtContext
}

func NewFineRepository(db sqlx.ExtContext) FineRepository {
	return &fineRepository{db: db}
}

func (r *fineRepository) Create(ctx context.Context, fine *domain.Fine) error {
	query := `
		INSERT INTO fines (book_issue_id, customer_id, fine_type, amount, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	return r.db.QueryRowxContext(ctx, query,
		fine.LoanID,
		fine.CustomerID,
		fine.FineType,
		fine.Amount,
		fine.Description,
	).Scan(&fine.ID, &fine.CreatedAt)
}

func (r *fineRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Fine, error) {
	query := `
		SELECT id, book_issue_id, customer_id, fine_type, amount, description, created_at
		FROM fines
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC
	`

	var fines []*domain.Fine
	if err := sqlx.SelectContext(ctx, r.db, &fines, query, customerID); err != nil {
		return nil, err
	}
	return fines, nil
}

func (r *fineRepository) CountByCustomer(ctx context.Context, customerID int64) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.db, &count, `SELECT COUNT(*) FROM fines WHERE customer_id = $1`, customerID)
	return count, err
}

func (r *fineRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.db, &count, `SELECT COUNT(*) FROM fines`)
	return count, err
}
