package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	FineTypeLateReturn = "late_return"
	FineTypeDamage     = "damage"
	FineTypeLost       = "lost"
)

func IsValidFineType(t string) bool {
	switch t {
	case FineTypeLateReturn, FineTypeDamage, FineTypeLost:
		return true
	}
	return false
}

// Fine is an immutable charge levied when a loan is returned
type Fine struct {
	ID          int64           `json:"id" db:"id"`
	LoanID      int64           `json:"loan_id" db:"book_issue_id"`
	CustomerID  int64           `json:"customer_id" db:"customer_id"`
	FineType    string          `json:"fine_type" db:"fine_type"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Description string          `json:"description" db:"description"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
