package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DashboardStats struct {
	Role           Role         `json:"role"`
	Staff          *StaffStats  `json:"staff,omitempty"`
	Member         *MemberStats `json:"member,omitempty"`
	RecentActivity []*LoanView  `json:"recent_activity"`
	GeneratedAt    time.Time    `json:"generated_at"`
}

// StaffStats counts the whole library. Fines and Users are admin only.
type StaffStats struct {
	TotalBooks          int  `json:"total_books"`
	TotalCustomers      int  `json:"total_customers"`
	IssuedLoans         int  `json:"issued_loans"`
	OverdueLoans        int  `json:"overdue_loans"`
	PendingReservations int  `json:"pending_reservations"`
	TotalFines          *int `json:"total_fines,omitempty"`
	TotalUsers          *int `json:"total_users,omitempty"`
}

type MemberStats struct {
	CustomerID          int64           `json:"customer_id"`
	IssuedLoans         int             `json:"issued_loans"`
	PendingReservations int             `json:"pending_reservations"`
	FineBalance         decimal.Decimal `json:"fine_balance"`
}
