package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book represents a catalog entry and its copy counters
type Book struct {
	ID              int64           `json:"id" db:"id"`
	ISBN            string          `json:"isbn" db:"isbn"`
	Title           string          `json:"title" db:"title"`
	Author          string          `json:"author" db:"author"`
	Publisher       string          `json:"publisher" db:"publisher"`
	PublicationYear *int            `json:"publication_year,omitempty" db:"publication_year"`
	Genre           *string         `json:"genre,omitempty" db:"genre"`
	Description     string          `json:"description" db:"description"`
	TotalCopies     int             `json:"total_copies" db:"total_copies"`
	AvailableCopies int             `json:"available_copies" db:"available_copies"`
	Location        string          `json:"location" db:"location"`
	Price           decimal.Decimal `json:"price" db:"price"`
	IssuedCount     int             `json:"issued_count" db:"issued_count"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

func (b *Book) IsAvailable() bool {
	return b.AvailableCopies > 0
}

// BookFilter narrows a catalog search
type BookFilter struct {
	Query              string
	Genre              string
	IncludeDescription bool
	Page               int
	PageSize           int
}

// DTOs for requests and responses

type CreateBookRequest struct {
	ISBN            string          `json:"isbn" validate:"required,max=20"`
	Title           string          `json:"title" validate:"required,max=255"`
	Author          string          `json:"author" validate:"required,max=255"`
	Publisher       string          `json:"publisher" validate:"max=255"`
	PublicationYear *int            `json:"publication_year" validate:"omitempty,gte=0,lte=9999"`
	Genre           string          `json:"genre" validate:"max=100"`
	Description     string          `json:"description"`
	TotalCopies     int             `json:"total_copies" validate:"required,gte=1"`
	Location        string          `json:"location" validate:"max=100"`
	Price           decimal.Decimal `json:"price" validate:"decimal_gte=0"`
}

type UpdateBookRequest CreateBookRequest

type BookDetail struct {
	Book                *Book              `json:"book"`
	RecentLoans         []*LoanView        `json:"recent_loans"`
	PendingReservations []*ReservationView `json:"pending_reservations"`
}
