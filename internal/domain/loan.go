package domain

import (
	"time"

	"github.com/segyhp/library-engine/pkg/utils"
	"github.com/shopspring/decimal"
)

// Stored loan statuses. LoanStatusOverdue is only ever derived.
const (
	LoanStatusIssued   = "issued"
	LoanStatusReturned = "returned"
	LoanStatusOverdue  = "overdue"
)

// Loan represents one copy of a book lent to a customer (a book issue).
type Loan struct {
	ID         int64      `json:"id" db:"id"`
	BookID     int64      `json:"book_id" db:"book_id"`
	CustomerID int64      `json:"customer_id" db:"customer_id"`
	IssueDate  time.Time  `json:"issue_date" db:"issue_date"`
	DueDate    time.Time  `json:"due_date" db:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty" db:"return_date"`
	Status     string     `json:"status" db:"status"`
	IssuedBy   int64      `json:"issued_by" db:"issued_by"`
	ReturnedTo *int64     `json:"returned_to,omitempty" db:"returned_to"`
	Notes      string     `json:"notes" db:"notes"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

func (l *Loan) IsOpen() bool {
	return l.Status == LoanStatusIssued
}

// DisplayStatus reports overdue for an open loan whose due date lies before
// today, otherwise the stored status.
func (l *Loan) DisplayStatus(today time.Time) string {
	if l.IsOpen() && utils.IsDateOverdue(l.DueDate, today) {
		return LoanStatusOverdue
	}
	return l.Status
}

// LoanView is a loan joined with the book, customer and staff names.
type LoanView struct {
	Loan
	BookTitle      string `json:"book_title" db:"book_title"`
	ISBN           string `json:"isbn" db:"isbn"`
	CustomerCode   string `json:"customer_code" db:"customer_code"`
	CustomerName   string `json:"customer_name" db:"customer_name"`
	IssuedByName   string `json:"issued_by_name" db:"issued_by_name"`
	ReturnedToName string `json:"returned_to_name,omitempty" db:"returned_to_name"`
	DisplayStatus  string `json:"display_status" db:"-"`
}

type LoanFilter struct {
	Query    string
	Status   string
	DateFrom *time.Time
	DateTo   *time.Time
	Today    time.Time
	Page     int
	PageSize int
}

type LoanStats struct {
	Issued   int `json:"issued" db:"issued"`
	Returned int `json:"returned" db:"returned"`
	Overdue  int `json:"overdue" db:"overdue"`
}

// DTOs for requests and responses

type IssueLoanRequest struct {
	BookID     int64  `json:"book_id" validate:"required,gt=0"`
	CustomerID int64  `json:"customer_id" validate:"required,gt=0"`
	IssueDate  *Date  `json:"issue_date"`
	DueDate    *Date  `json:"due_date"`
	Notes      string `json:"notes" validate:"max=1000"`
}

// ReturnLoanRequest closes a loan. A nil FineAmount levies the computed late
// fine; an explicit zero levies nothing.
type ReturnLoanRequest struct {
	ReturnDate      *Date            `json:"return_date"`
	FineAmount      *decimal.Decimal `json:"fine_amount"`
	FineType        string           `json:"fine_type" validate:"omitempty,oneof=late_return damage lost"`
	FineDescription string           `json:"fine_description" validate:"max=1000"`
	Notes           string           `json:"notes" validate:"max=1000"`
}

type ReturnLoanResponse struct {
	Loan          *Loan           `json:"loan"`
	Fine          *Fine           `json:"fine,omitempty"`
	DaysOverdue   int             `json:"days_overdue"`
	SuggestedFine decimal.Decimal `json:"suggested_fine"`
}

// FinePreview is what a return on AsOf would suggest for an open loan.
type FinePreview struct {
	LoanID        int64           `json:"loan_id"`
	DueDate       time.Time       `json:"due_date"`
	AsOf          time.Time       `json:"as_of"`
	DaysOverdue   int             `json:"days_overdue"`
	DailyRate     decimal.Decimal `json:"daily_rate"`
	SuggestedFine decimal.Decimal `json:"suggested_fine"`
}
