package utils

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultFineDailyRate is charged per whole day a loan is returned late.
var DefaultFineDailyRate = decimal.RequireFromString("0.50")

// DateOnly returns the calendar day of t as midnight UTC. Dates are compared
// by their calendar fields, whatever location they were read in.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from start to end. It is
// negative when end is before start.
func DaysBetween(start, end time.Time) int {
	return int(DateOnly(end).Sub(DateOnly(start)).Hours() / 24)
}

// CalculateDueDate returns the due date for a loan issued on issueDate
func CalculateDueDate(issueDate time.Time, days int) time.Time {
	return DateOnly(issueDate).AddDate(0, 0, days)
}

// DaysOverdue returns how many whole days returnDate is past dueDate, never negative.
func DaysOverdue(dueDate, returnDate time.Time) int {
	days := DaysBetween(dueDate, returnDate)
	if days < 0 {
		return 0
	}
	return days
}

// CalculateFine calculates the late return fine
// Formula: whole days late * daily rate
func CalculateFine(dueDate, returnDate time.Time, dailyRate decimal.Decimal) decimal.Decimal {
	days := DaysOverdue(dueDate, returnDate)
	if days == 0 {
		return decimal.Zero
	}
	return dailyRate.Mul(decimal.NewFromInt(int64(days))).Round(2)
}

// IsDateOverdue checks if dueDate lies strictly before the calendar day of now
func IsDateOverdue(dueDate, now time.Time) bool {
	return DaysBetween(dueDate, now) > 0
}

// IsExpired reports whether an optional expiry date lies strictly before today.
func IsExpired(expiry *time.Time, now time.Time) bool {
	if expiry == nil {
		return false
	}
	return DaysBetween(*expiry, now) > 0
}

// GenerateCode builds a member-facing code: prefix, four digit year and a
// four digit random suffix, e.g. CUST20240042.
func GenerateCode(prefix string, now time.Time) string {
	return fmt.Sprintf("%s%04d%04d", prefix, now.Year(), rand.IntN(9999)+1)
}

// NormalizePage clamps page and size to sane values, falling back to
// defaultSize when size is not set.
func NormalizePage(page, size, defaultSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultSize
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

// Offset returns the row offset for a 1-based page
func Offset(page, size int) int {
	return (page - 1) * size
}

// TotalPages returns the number of pages needed for total items
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
