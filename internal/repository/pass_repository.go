package repository

import (
	"context"
	"time"

	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/pkg/utils"

	"github.com/jmoiron/sqlx"
)

const passColumns = `lp.id, lp.customer_id, lp.pass_number, lp.issue_date, lp.expiry_date, lp.status, lp.created_at, lp.updated_at`

type passRepository struct {
	db sqlx.ExtContext
}

func NewPassRepository(db sqlx.ExtContext) PassRepository {
	return &passRepository{db: db}
}

func (r *passRepository) Create(ctx context.Context, pass *domain.LibraryPass) error {
	query := `
		INSERT INTO library_passes (customer_id, pass_number, issue_date, expiry_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRowxContext(ctx, query,
		pass.CustomerID,
		pass.PassNumber,
		pass.IssueDate,
		pass.ExpiryDate,
		pass.Status,
	).Scan(&pass.ID, &pass.CreatedAt, &pass.UpdatedAt)
}

func (r *passRepository) GetByID(ctx context.Context, id int64) (*domain.LibraryPass, error) {
	query := `SELECT ` + passColumns + ` FROM library_passes lp WHERE lp.id = $1`

	var pass domain.LibraryPass
	if err := sqlx.GetContext(ctx, r.db, &pass, query, id); err != nil {
		return nil, err
	}
	return &pass, nil
}

func (r *passRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE library_passes SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (r *passRepository) Search(ctx context.Context, filter domain.PassFilter) ([]*domain.PassView, int, error) {
	var cond conditions
	if filter.Query != "" {
		pattern := contains(filter.Query)
		cond.add(`(lp.pass_number ILIKE ? OR c.customer_code ILIKE ? OR u.first_name ILIKE ? OR u.last_name ILIKE ? OR u.email ILIKE ?)`,
			pattern, pattern, pattern, pattern, pattern)
	}
	if filter.Status != "" {
		cond.add(`lp.status = ?`, filter.Status)
	}

	from := `
		FROM library_passes lp
		JOIN customers c ON c.id = lp.customer_id
		LEFT JOIN users u ON u.id = c.user_id`

	var total int
	countQuery := r.db.Rebind(`SELECT COUNT(*)` + from + cond.where())
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, cond.args...); err != nil {
		return nil, 0, err
	}

	query := r.db.Rebind(`SELECT ` + passColumns + `,
		c.customer_code, c.membership_type,
		COALESCE(NULLIF(TRIM(COALESCE(u.first_name, '') || ' ' || COALESCE(u.last_name, '')), ''), c.customer_code) AS customer_name,
		COALESCE(u.email, '') AS email,
		(SELECT COUNT(*) FROM book_issues bi WHERE bi.customer_id = c.id AND bi.status = 'issued') AS active_issues` +
		from + cond.where() + ` ORDER BY lp.created_at DESC, lp.id DESC LIMIT ? OFFSET ?`)
	args := append(cond.args, filter.PageSize, utils.Offset(filter.Page, filter.PageSize))

	var passes []*domain.PassView
	if err := sqlx.SelectContext(ctx, r.db, &passes, query, args...); err != nil {
		return nil, 0, err
	}
	return passes, total, nil
}

func (r *passRepository) ExpireBefore(ctx context.Context, today time.Time) (int64, error) {
	query := `
		UPDATE library_passes
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'active' AND expiry_date < $1
	`

	result, err := r.db.ExecContext(ctx, query, utils.DateOnly(today))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *passRepository) HasSuspended(ctx context.Context, customerID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM library_passes WHERE customer_id = $1 AND status = 'suspended')`

	var exists bool
	err := sqlx.GetContext(ctx, r.db, &exists, query, customerID)
	return exists, err
}
