package domain

import "time"

const (
	ReservationPending   = "pending"
	ReservationFulfilled = "fulfilled"
	ReservationExpired   = "expired"
	ReservationCancelled = "cancelled"
)

type Reservation struct {
	ID              int64     `json:"id" db:"id"`
	BookID          int64     `json:"book_id" db:"book_id"`
	CustomerID      int64     `json:"customer_id" db:"customer_id"`
	ReservationDate time.Time `json:"reservation_date" db:"reservation_date"`
	Status          string    `json:"status" db:"status"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

func (r *Reservation) IsPending() bool {
	return r.Status == ReservationPending
}

type ReservationView struct {
	Reservation
	BookTitle    string `json:"book_title" db:"book_title"`
	Author       string `json:"author" db:"author"`
	CustomerCode string `json:"customer_code" db:"customer_code"`
	CustomerName string `json:"customer_name" db:"customer_name"`
}

// CustomerID is optional for members, who always reserve for themselves.
type ReserveRequest struct {
	BookID     int64 `json:"book_id" validate:"required,gt=0"`
	CustomerID int64 `json:"customer_id" validate:"omitempty,gt=0"`
}

type UpdateReservationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=fulfilled expired cancelled"`
}
