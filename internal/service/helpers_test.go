package service

import (
	"log/slog"
	"time"

	"github.com/segyhp/library-engine/internal/config"
	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/internal/mocks"

	"github.com/lib/pq"
)

var (
	adminAuth     = domain.AuthContext{UserID: 1, Role: domain.RoleAdmin}
	librarianAuth = domain.AuthContext{UserID: 10, Role: domain.RoleLibrarian}
	memberAuth    = domain.AuthContext{UserID: 20, Role: domain.RoleMember}
)

// 2024-01-20 afternoon; calendar arithmetic must ignore the time of day
var fixedNow = time.Date(2024, 1, 20, 14, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testConfig() *config.Config {
	return &config.Config{
		Business: config.BusinessConfig{
			FineDailyRate:          "0.50",
			DefaultLoanDays:        14,
			PassValidityDays:       365,
			CodeGenerationAttempts: 5,
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newMocks() (*mocks.Repositories, *mocks.Transactor) {
	m := mocks.NewRepositories()
	return m, &mocks.Transactor{Repos: m.Bundle()}
}

func uniqueViolation(constraint string) error {
	return &pq.Error{Code: "23505", Constraint: constraint}
}
