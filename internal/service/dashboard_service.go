package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/segyhp/library-engine/internal/cache"
	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/internal/repository"
	"github.com/segyhp/library-engine/pkg/utils"
)

const recentActivityLimit = 5

// DashboardService summarizes the library for the caller's role. Results are
// cached for a short time; a missing or failing cache only costs a recount.
type DashboardService struct {
	repos  *repository.Repositories
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

func NewDashboardService(repos *repository.Repositories, c cache.Cache, ttl time.Duration, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		repos:  repos,
		cache:  c,
		ttl:    ttl,
		logger: orDefault(logger),
		now:    time.Now,
	}
}

func (s *DashboardService) Stats(ctx context.Context, auth domain.AuthContext) (*domain.DashboardStats, error) {
	if err := auth.Require(domain.RoleMember); err != nil {
		return nil, err
	}

	var customer *domain.Customer
	if !auth.IsStaff() {
		c, err := s.repos.Customers.GetByUserID(ctx, auth.UserID)
		if err != nil && !isNotFound(err) {
			return nil, storeError(ctx, s.logger, "customers.get_by_user", err)
		}
		customer = c
	}

	var customerID int64
	if customer != nil {
		customerID = customer.ID
	}
	key := cache.DashboardKey(string(auth.Role), customerID)

	if s.cache != nil {
		var cached domain.DashboardStats
		found, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.logger.WarnContext(ctx, "dashboard cache read failed", "key", key, "error", err)
		} else if found {
			return &cached, nil
		}
	}

	stats, err := s.compute(ctx, auth, customer)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, stats, s.ttl); err != nil {
			s.logger.WarnContext(ctx, "dashboard cache write failed", "key", key, "error", err)
		}
	}
	return stats, nil
}

func (s *DashboardService) compute(ctx context.Context, auth domain.AuthContext, customer *domain.Customer) (*domain.DashboardStats, error) {
	now := s.now()
	today := utils.DateOnly(now)
	stats := &domain.DashboardStats{
		Role:           auth.Role,
		RecentActivity: []*domain.LoanView{},
		GeneratedAt:    now.UTC(),
	}

	if !auth.IsStaff() {
		if customer == nil {
			return stats, nil
		}

		issued, err := s.repos.Loans.CountOpenByCustomer(ctx, customer.ID)
		if err != nil {
			return nil, storeError(ctx, s.logger, "loans.count_open_by_customer", err)
		}
		pending, err := s.repos.Reservations.CountPendingByCustomer(ctx, customer.ID)
		if err != nil {
			return nil, storeError(ctx, s.logger, "reservations.count_pending_by_customer", err)
		}
		recent, err := s.repos.Loans.ListRecentByCustomer(ctx, customer.ID, recentActivityLimit)
		if err != nil {
			return nil, storeError(ctx, s.logger, "loans.list_recent_by_customer", err)
		}

		stats.Member = &domain.MemberStats{
			CustomerID:          customer.ID,
			IssuedLoans:         issued,
			PendingReservations: pending,
			FineBalance:         customer.FineBalance,
		}
		if recent != nil {
			stats.RecentActivity = withDisplayStatus(recent, today)
		}
		return stats, nil
	}

	books, err := s.repos.Books.Count(ctx)
	if err != nil {
		return nil, storeError(ctx, s.logger, "books.count", err)
	}
	customers, err := s.repos.Customers.Count(ctx)
	if err != nil {
		return nil, storeError(ctx, s.logger, "customers.count", err)
	}
	loanStats, err := s.repos.Loans.Stats(ctx, today)
	if err != nil {
		return nil, storeError(ctx, s.logger, "loans.stats", err)
	}
	pending, err := s.repos.Reservations.CountPending(ctx)
	if err != nil {
		return nil, storeError(ctx, s.logger, "reservations.count_pending", err)
	}

	stats.Staff = &domain.StaffStats{
		TotalBooks:          books,
		TotalCustomers:      customers,
		IssuedLoans:         loanStats.Issued,
		OverdueLoans:        loanStats.Overdue,
		PendingReservations: pending,
	}

	if auth.Role == domain.RoleAdmin {
		fines, err := s.repos.Fines.Count(ctx)
		if err != nil {
			return nil, storeError(ctx, s.logger, "fines.count", err)
		}
		users, err := s.repos.Users.Count(ctx)
		if err != nil {
			return nil, storeError(ctx, s.logger, "users.count", err)
		}
		stats.Staff.TotalFines = &fines
		stats.Staff.TotalUsers = &users
	}

	recent, err := s.repos.Loans.ListRecent(ctx, recentActivityLimit)
	if err != nil {
		return nil, storeError(ctx, s.logger, "loans.list_recent", err)
	}
	if recent != nil {
		stats.RecentActivity = withDisplayStatus(recent, today)
	}
	return stats, nil
}
