package repository

import (
	"context"

	"github.com/segyhp/library-engine/internal/domain"

	"github.com/jmoiron/sqlx"
)

const reservationColumns = `rs.id, rs.book_id, rs.customer_id, rs.reservation_date, rs.status, rs.created_at, rs.updated_at`

const reservationViewQuery = `SELECT ` + reservationColumns + `,
	b.title AS book_title, b.author, c.customer_code,
	COALESCE(NULLIF(TRIM(COALESCE(u.first_name, '') || ' ' || COALESCE(u.last_name, '')), ''), c.customer_code) AS customer_name
	FROM reservations rs
	JOIN books b ON b.id = rs.book_id
	JOIN customers c ON c.id = rs.customer_id
	LEFT JOIN users u ON u.id = c.user_id`

type reservationRepository struct {
	db sqlx.ExtContext
}

func NewReservationRepository(db sqlx.ExtContext) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	query := `
		INSERT INTO reservations (book_id, customer_id, reservation_date, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRowxContext(ctx, query,
		reservation.BookID,
		reservation.CustomerID,
		reservation.ReservationDate,
		reservation.Status,
	).Scan(&reservation.ID, &reservation.CreatedAt, &reservation.UpdatedAt)
}

func (r *reservationRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations rs WHERE rs.id = $1 FOR UPDATE`

	var reservation domain.Reservation
	if err := sqlx.GetContext(ctx, r.db, &reservation, query, id); err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (r *reservationRepository) ListPendingByBook(ctx context.Context, bookID int64) ([]*domain.ReservationView, error) {
	query := reservationViewQuery + `
		WHERE rs.book_id = $1 AND rs.status = 'pending'
		ORDER BY rs.reservation_date DESC, rs.id DESC`

	var reservations []*domain.ReservationView
	if err := sqlx.SelectContext(ctx, r.db, &reservations, query, bookID); err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *reservationRepository) ListPendingByCustomer(ctx context.Context, customerID int64) ([]*domain.ReservationView, error) {
	query := reservationViewQuery + `
		WHERE rs.customer_id = $1 AND rs.status = 'pending'
		ORDER BY rs.reservation_date DESC, rs.id DESC`

	var reservations []*domain.ReservationView
	if err := sqlx.SelectContext(ctx, r.db, &reservations, query, customerID); err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *reservationRepository) ExistsPending(ctx context.Context, bookID, customerID int64) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM reservations WHERE book_id = $1 AND customer_id = $2 AND status = 'pending'
	)`

	var exists bool
	err := sqlx.GetContext(ctx, r.db, &exists, query, bookID, customerID)
	return exists, err
}

func (r *reservationRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.db, &count, `SELECT COUNT(*) FROM reservations WHERE status = 'pending'`)
	return count, err
}

func (r *reservationRepository) CountPendingByCustomer(ctx context.Context, customerID int64) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.db, &count,
		`SELECT COUNT(*) FROM reservations WHERE customer_id = $1 AND status = 'pending'`, customerID)
	return count, err
}
