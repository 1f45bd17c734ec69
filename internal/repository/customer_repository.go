package repository

import (
	"context"

	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/pkg/utils"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const customerColumns = `c.id, c.user_id, c.customer_code, c.membership_type, c.membership_expiry,
	c.max_books_allowed, c.fine_balance, c.created_at, c.updated_at`

const customerDetailColumns = customerColumns + `,
	COALESCE(u.first_name, '') AS first_name,
	COALESCE(u.last_name, '') AS last_name,
	COALESCE(u.email, '') AS email,
	(SELECT COUNT(*) FROM book_issues bi WHERE bi.customer_id = c.id AND bi.status = 'issued') AS active_issues,
	(SELECT COUNT(*) FROM reservations rs WHERE rs.customer_id = c.id AND rs.status = 'pending') AS active_reservations`

type customerRepository struct {
	db sqlx.ExtContext
}

func NewCustomerRepository(db sqlx.ExtContext) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (user_id, customer_code, membership_type, membership_expiry, max_books_allowed, fine_balance)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRowxContext(ctx, query,
		customer.UserID,
		customer.CustomerCode,
		customer.MembershipType,
		customer.MembershipExpiry,
		customer.MaxBooksAllowed,
		customer.FineBalance,
	).Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	query := `SELECT ` + customerDetailColumns + `
		FROM customers c LEFT JOIN users u ON u.id = c.user_id
		WHERE c.id = $1`

	var customer domain.Customer
	if err := sqlx.GetContext(ctx, r.db, &customer, query, id); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers c WHERE c.id = $1 FOR UPDATE`

	var customer domain.Customer
	if err := sqlx.GetContext(ctx, r.db, &customer, query, id); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Customer, error) {
	query := `SELECT ` + customerDetailColumns + `
		FROM customers c LEFT JOIN users u ON u.id = c.user_id
		WHERE c.user_id = $1`

	var customer domain.Customer
	if err := sqlx.GetContext(ctx, r.db, &customer, query, userID); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) Search(ctx context.Context, filter domain.CustomerFilter) ([]*domain.Customer, int, error) {
	var cond conditions
	if filter.Query != "" {
		pattern := contains(filter.Query)
		cond.add(`(c.customer_code ILIKE ? OR u.first_name ILIKE ? OR u.last_name ILIKE ? OR u.email ILIKE ?)`,
			pattern, pattern, pattern, pattern)
	}
	if filter.MembershipType != "" {
		cond.add(`c.membership_type = ?`, filter.MembershipType)
	}

	from := ` FROM customers c LEFT JOIN users u ON u.id = c.user_id`

	var total int
	countQuery := r.db.Rebind(`SELECT COUNT(*)` + from + cond.where())
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, cond.args...); err != nil {
		return nil, 0, err
	}

	query := r.db.Rebind(`SELECT ` + customerDetailColumns + from + cond.where() +
		` ORDER BY c.created_at DESC, c.id DESC LIMIT ? OFFSET ?`)
	args := append(cond.args, filter.PageSize, utils.Offset(filter.Page, filter.PageSize))

	var customers []*domain.Customer
	if err := sqlx.SelectContext(ctx, r.db, &customers, query, args...); err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

func (r *customerRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	return err
}

func (r *customerRepository) AddToFineBalance(ctx context.Context, id int64, amount decimal.Decimal) error {
	query := `
		UPDATE customers
		SET fine_balance = fine_balance + $2, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, amount)
	return err
}

func (r *customerRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.db, &count, `SELECT COUNT(*) FROM customers`)
	return count, err
}
