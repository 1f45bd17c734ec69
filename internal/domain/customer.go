package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MembershipStudent = "student"
	MembershipFaculty = "faculty"
	MembershipPublic  = "public"
)

const CustomerCodePrefix = "CUST"

func IsValidMembershipType(t string) bool {
	switch t {
	case MembershipStudent, MembershipFaculty, MembershipPublic:
		return true
	}
	return false
}

// Customer represents a library member and their borrowing limits
type Customer struct {
	ID               int64           `json:"id" db:"id"`
	UserID           *int64          `json:"user_id,omitempty" db:"user_id"`
	CustomerCode     string          `json:"customer_code" db:"customer_code"`
	MembershipType   string          `json:"membership_type" db:"membership_type"`
	MembershipExpiry *time.Time      `json:"membership_expiry,omitempty" db:"membership_expiry"`
	MaxBooksAllowed  int             `json:"max_books_allowed" db:"max_books_allowed"`
	FineBalance      decimal.Decimal `json:"fine_balance" db:"fine_balance"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`

	// Joined from the linked user and counters, filled by listing queries.
	FirstName          string `json:"first_name,omitempty" db:"first_name"`
	LastName           string `json:"last_name,omitempty" db:"last_name"`
	Email              string `json:"email,omitempty" db:"email"`
	ActiveIssues       int    `json:"active_issues" db:"active_issues"`
	ActiveReservations int    `json:"active_reservations" db:"active_reservations"`
}

type CustomerFilter struct {
	Query          string
	MembershipType string
	Page           int
	PageSize       int
}

type CreateCustomerRequest struct {
	UserID           *int64 `json:"user_id" validate:"omitempty,gt=0"`
	MembershipType   string `json:"membership_type" validate:"required,oneof=student faculty public"`
	MembershipExpiry *Date  `json:"membership_expiry"`
	MaxBooksAllowed  int    `json:"max_books_allowed" validate:"required,gte=1"`
}

// Eligibility explains whether a customer may borrow right now.
type Eligibility struct {
	CustomerID      int64  `json:"customer_id"`
	Eligible        bool   `json:"eligible"`
	Reason          string `json:"reason,omitempty"`
	OpenLoans       int    `json:"open_loans"`
	MaxBooksAllowed int    `json:"max_books_allowed"`
	Expired         bool   `json:"membership_expired"`
	PassSuspended   bool   `json:"pass_suspended"`
}
