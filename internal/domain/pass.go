package domain

import "time"

const (
	PassStatusActive    = "active"
	PassStatusExpired   = "expired"
	PassStatusSuspended = "suspended"
)

const PassNumberPrefix = "PASS"

// LibraryPass is a membership card with its own validity window
type LibraryPass struct {
	ID         int64     `json:"id" db:"id"`
	CustomerID int64     `json:"customer_id" db:"customer_id"`
	PassNumber string    `json:"pass_number" db:"pass_number"`
	IssueDate  time.Time `json:"issue_date" db:"issue_date"`
	ExpiryDate time.Time `json:"expiry_date" db:"expiry_date"`
	Status     string    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

type PassView struct {
	LibraryPass
	CustomerCode   string `json:"customer_code" db:"customer_code"`
	MembershipType string `json:"membership_type" db:"membership_type"`
	CustomerName   string `json:"customer_name" db:"customer_name"`
	Email          string `json:"email" db:"email"`
	ActiveIssues   int    `json:"active_issues" db:"active_issues"`
}

type PassFilter struct {
	Query    string
	Status   string
	Page     int
	PageSize int
}

type IssuePassRequest struct {
	CustomerID int64 `json:"customer_id" validate:"required,gt=0"`
	IssueDate  *Date `json:"issue_date"`
	ExpiryDate *Date `json:"expiry_date"`
}
