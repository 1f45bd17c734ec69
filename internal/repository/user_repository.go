package repository

import (
	"context"

	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/pkg/utils"

	"github.com/jmoiron/sqlx"
)

const userColumns = `us.id, us.username, us.email, us.password, us.first_name, us.last_name, us.phone, us.address,
	us.role, us.is_active, us.created_at, us.updated_at`

type userRepository struct {
	db sqlx.ExtContext
}

func NewUserRepository(db sqlx.ExtContext) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (username, email, password, first_name, last_name, phone, address, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRowxContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.Address,
		user.Role,
		user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users us WHERE us.id = $1`

	var user domain.User
	if err := sqlx.GetContext(ctx, r.db, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, r.db, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
	return exists, err
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, r.db, &exists,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`, email, excludeID)
	return exists, err
}

func (r *userRepository) Search(ctx context.Context, filter domain.UserFilter) ([]*domain.User, int, error) {
	var cond conditions
	if filter.Query != "" {
		pattern := contains(filter.Query)
		cond.add(`(us.username ILIKE ? OR us.email ILIKE ? OR us.first_name ILIKE ? OR us.last_name ILIKE ?)`,
			pattern, pattern, pattern, pattern)
	}
	if filter.Role != "" {
		cond.add(`us.role = ?`, filter.Role)
	}

	var total int
	countQuery := r.db.Rebind(`SELECT COUNT(*) FROM users us` + cond.where())
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, cond.args...); err != nil {
		return nil, 0, err
	}

	query := r.db.Rebind(`SELECT ` + userColumns + `,
		(SELECT COUNT(*) FROM customers c WHERE c.user_id = us.id) AS customer_count
		FROM users us` + cond.where() + ` ORDER BY us.created_at DESC, us.id DESC LIMIT ? OFFSET ?`)
	args := append(cond.args, filter.PageSize, utils.Offset(filter.Page, filter.PageSize))

	var users []*domain.User
	if err := sqlx.SelectContext(ctx, r.db, &users, query, args...); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) SetActive(ctx context.Context, id int64, active bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	return err
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, email = $4, phone = $5, address = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	return r.db.QueryRowxContext(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Phone,
		user.Address,
	).Scan(&user.UpdatedAt)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET password = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	return err
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.db, &count, `SELECT COUNT(*) FROM users`)
	return count, err
}
