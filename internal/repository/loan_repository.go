package repository

import (
	"context"
	"time"

	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/pkg/utils"

	"github.com/jmoiron/sqlx"
)

const loanColumns = `bi.id, bi.book_id, bi.customer_id, bi.issue_date, bi.due_date, bi.return_date, bi.status,
	bi.issued_by, bi.returned_to, bi.notes, bi.created_at, bi.updated_at`

const loanViewSelect = `SELECT ` + loanColumns + `,
	b.title AS book_title, b.isbn, c.customer_code,
	COALESCE(NULLIF(TRIM(COALESCE(u.first_name, '') || ' ' || COALESCE(u.last_name, '')), ''), c.customer_code) AS customer_name,
	COALESCE(s.first_name || ' ' || s.last_name, '') AS issued_by_name,
	COALESCE(rt.first_name || ' ' || rt.last_name, '') AS returned_to_name`

const loanViewFrom = `
	FROM book_issues bi
	JOIN books b ON b.id = bi.book_id
	JOIN customers c ON c.id = bi.customer_id
	LEFT JOIN users u ON u.id = c.user_id
	LEFT JOIN users s ON s.id = bi.issued_by
	LEFT JOIN users rt ON rt.id = bi.returned_to`

type loanRepository struct {
	db sqlx.ExtContext
}

func NewLoanRepository(db sqlx.ExtContext) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO book_issues (book_id, customer_id, issue_date, due_date, status, issued_by, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRowxContext(ctx, query,
		loan.BookID,
		loan.CustomerID,
		loan.IssueDate,
		loan.DueDate,
		loan.Status,
		loan.IssuedBy,
		loan.Notes,
	).Scan(&loan.ID, &loan.CreatedAt, &loan.UpdatedAt)
}

func (r *loanRepository) GetByID(ctx context.Context, id int64) (*domain.LoanView, error) {
	query := loanViewSelect + loanViewFrom + ` WHERE bi.id = $1`

	var loan domain.LoanView
	if err := sqlx.GetContext(ctx, r.db, &loan, query, id); err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) GetOpenForUpdate(ctx context.Context, id int64) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM book_issues bi WHERE bi.id = $1 AND bi.status = 'issued' FOR UPDATE`

	var loan domain.Loan
	if err := sqlx.GetContext(ctx, r.db, &loan, query, id); err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) MarkReturned(ctx context.Context, loan *domain.Loan) error {
	query := `
		UPDATE book_issues
		SET status = $2, return_date = $3, returned_to = $4, notes = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	return r.db.QueryRowxContext(ctx, query,
		loan.ID,
		loan.Status,
		loan.ReturnDate,
		loan.ReturnedTo,
		loan.Notes,
	).Scan(&loan.UpdatedAt)
}

func (r *loanRepository) CountOpenByCustomer(ctx context.Context, customerID int64) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.db, &count,
		`SELECT COUNT(*) FROM book_issues WHERE customer_id = $1 AND status = 'issued'`, customerID)
	return count, err
}

func (r *loanRepository) CountByBook(ctx context.Context, bookID int64) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.db, &count, `SELECT COUNT(*) FROM book_issues WHERE book_id = $1`, bookID)
	return count, err
}

func (r *loanRepository) CountByCustomer(ctx context.Context, customerID int64) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.db, &count, `SELECT COUNT(*) FROM book_issues WHERE customer_id = $1`, customerID)
	return count, err
}

func (r *loanRepository) List(ctx context.Context, filter domain.LoanFilter) ([]*domain.LoanView, int, error) {
	var cond conditions
	if filter.Query != "" {
		pattern := contains(filter.Query)
		cond.add(`(b.title ILIKE ? OR b.isbn ILIKE ? OR c.customer_code ILIKE ? OR u.first_name ILIKE ? OR u.last_name ILIKE ?)`,
			pattern, pattern, pattern, pattern, pattern)
	}
	switch filter.Status {
	case domain.LoanStatusIssued, domain.LoanStatusReturned:
		cond.add(`bi.status = ?`, filter.Status)
	case domain.LoanStatusOverdue:
		cond.add(`bi.status = 'issued' AND bi.due_date < ?`, utils.DateOnly(filter.Today))
	}
	if filter.DateFrom != nil {
		cond.add(`bi.issue_date >= ?`, utils.DateOnly(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		cond.add(`bi.issue_date <= ?`, utils.DateOnly(*filter.DateTo))
	}

	var total int
	countQuery := r.db.Rebind(`SELECT COUNT(*)` + loanViewFrom + cond.where())
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, cond.args...); err != nil {
		return nil, 0, err
	}

	query := r.db.Rebind(loanViewSelect + loanViewFrom + cond.where() +
		` ORDER BY bi.created_at DESC, bi.id DESC LIMIT ? OFFSET ?`)
	args := append(cond.args, filter.PageSize, utils.Offset(filter.Page, filter.PageSize))

	var loans []*domain.LoanView
	if err := sqlx.SelectContext(ctx, r.db, &loans, query, args...); err != nil {
		return nil, 0, err
	}
	return loans, total, nil
}

func (r *loanRepository) ListRecentByBook(ctx context.Context, bookID int64, limit int) ([]*domain.LoanView, error) {
	query := loanViewSelect + loanViewFrom + ` WHERE bi.book_id = $1 ORDER BY bi.created_at DESC, bi.id DESC LIMIT $2`

	var loans []*domain.LoanView
	if err := sqlx.SelectContext(ctx, r.db, &loans, query, bookID, limit); err != nil {
		return nil, err
	}
	return loans, nil
}

func (r *loanRepository) ListRecentByCustomer(ctx context.Context, customerID int64, limit int) ([]*domain.LoanView, error) {
	query := loanViewSelect + loanViewFrom + ` WHERE bi.customer_id = $1 ORDER BY bi.created_at DESC, bi.id DESC LIMIT $2`

	var loans []*domain.LoanView
	if err := sqlx.SelectContext(ctx, r.db, &loans, query, customerID, limit); err != nil {
		return nil, err
	}
	return loans, nil
}

func (r *loanRepository) ListRecent(ctx context.Context, limit int) ([]*domain.LoanView, error) {
	query := loanViewSelect + loanViewFrom + ` ORDER BY bi.created_at DESC, bi.id DESC LIMIT $1`

	var loans []*domain.LoanView
	if err := sqlx.SelectContext(ctx, r.db, &loans, query, limit); err != nil {
		return nil, err
	}
	return loans, nil
}

func (r *loanRepository) Stats(ctx context.Context, today time.Time) (*domain.LoanStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'issued') AS issued,
			COUNT(*) FILTER (WHERE status = 'returned') AS returned,
			COUNT(*) FILTER (WHERE status = 'issued' AND due_date < $1) AS overdue
		FROM book_issues
	`

	var stats domain.LoanStats
	if err := sqlx.GetContext(ctx, r.db, &stats, query, utils.DateOnly(today)); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *loanRepository) ListOverdue(ctx context.Context, today time.Time) ([]*domain.LoanView, error) {
	query := loanViewSelect + loanViewFrom + `
		WHERE bi.status = 'issued' AND bi.due_date < $1
		ORDER BY bi.due_date, bi.id`

	var loans []*domain.LoanView
	if err := sqlx.SelectContext(ctx, r.db, &loans, query, utils.DateOnly(today)); err != nil {
		return nil, err
	}
	return loans, nil
}
