package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateFine(t *testing.T) {
	due := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		returnDate time.Time
		expected   decimal.Decimal
	}{
		{
			name:       "returned on the due date",
			returnDate: due,
			expected:   decimal.Zero,
		},
		{
			name:       "one day late",
			returnDate: due.AddDate(0, 0, 1),
			expected:   decimal.RequireFromString("0.50"),
		},
		{
			name:       "returned early",
			returnDate: due.AddDate(0, 0, -1),
			expected:   decimal.Zero,
		},
		{
			name:       "five days late",
			returnDate: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
			expected:   decimal.RequireFromString("2.50"),
		},
		{
			name:       "late in the evening of the due date",
			returnDate: time.Date(2024, 1, 15, 23, 59, 0, 0, time.UTC),
			expected:   decimal.Zero,
		},
		{
			name:       "across a month boundary",
			returnDate: time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC),
			expected:   decimal.RequireFromString("15.00"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateFine(due, tt.returnDate, DefaultFineDailyRate)
			assert.True(t, result.Equal(tt.expected),
				"Expected %v, but got %v", tt.expected, result)
		})
	}
}

func TestCalculateFine_CustomRate(t *testing.T) {
	due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	result := CalculateFine(due, due.AddDate(0, 0, 3), decimal.RequireFromString("1.25"))
	assert.True(t, result.Equal(decimal.RequireFromString("3.75")))
}

func TestCalculateDueDate(t *testing.T) {
	issue := time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), CalculateDueDate(issue, 14))
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), CalculateDueDate(issue, 0))
}

func TestDaysBetween_IgnoresLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	start := time.Date(2024, 5, 1, 23, 0, 0, 0, tokyo)
	end := time.Date(2024, 5, 3, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, 2, DaysBetween(start, end))
	assert.Equal(t, -2, DaysBetween(end, start))
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	today := DateOnly(now)
	tomorrow := now.AddDate(0, 0, 1)

	assert.False(t, IsExpired(nil, now))
	assert.True(t, IsExpired(&yesterday, now))
	assert.False(t, IsExpired(&today, now))
	assert.False(t, IsExpired(&tomorrow, now))
}

func TestIsDateOverdue(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

	assert.True(t, IsDateOverdue(now.AddDate(0, 0, -1), now))
	assert.False(t, IsDateOverdue(now, now))
	assert.False(t, IsDateOverdue(now.AddDate(0, 0, 1), now))
}

func TestGenerateCode(t *testing.T) {
	now := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^CUST2024\d{4}$`)

	for i := 0; i < 50; i++ {
		code := GenerateCode("CUST", now)
		assert.Regexp(t, pattern, code)
		assert.NotEqual(t, "CUST20240000", code)
	}
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name         string
		page, size   int
		expectedPage int
		expectedSize int
	}{
		{name: "defaults", page: 0, size: 0, expectedPage: 1, expectedSize: 10},
		{name: "negative page", page: -3, size: 5, expectedPage: 1, expectedSize: 5},
		{name: "oversized", page: 2, size: 500, expectedPage: 2, expectedSize: 100},
		{name: "unchanged", page: 3, size: 15, expectedPage: 3, expectedSize: 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, size := NormalizePage(tt.page, tt.size, 10)
			assert.Equal(t, tt.expectedPage, page)
			assert.Equal(t, tt.expectedSize, size)
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 0, TotalPages(5, 0))
	assert.Equal(t, 20, Offset(3, 10))
}
