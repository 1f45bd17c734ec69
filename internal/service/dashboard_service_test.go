package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/internal/mocks"
	customError "github.com/segyhp/library-engine/pkg/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const dashboardTTL = time.Minute

func newDashboard(c *mocks.MockCache) (*DashboardService, *mocks.Repositories) {
	m, _ := newMocks()
	var svc *DashboardService
	if c == nil {
		svc = NewDashboardService(m.Bundle(), nil, dashboardTTL, testLogger())
	} else {
		svc = NewDashboardService(m.Bundle(), c, dashboardTTL, testLogger())
	}
	svc.now = fixedClock
	return svc, m
}

func expectStaffCounts(m *mocks.Repositories) {
	m.Books.On("Count", mock.Anything).Return(120, nil)
	m.Customers.On("Count", mock.Anything).Return(40, nil)
	m.Loans.On("Stats", mock.Anything, date(2024, 1, 20)).Return(&domain.LoanStats{Issued: 12, Returned: 30, Overdue: 3}, nil)
	m.Reservations.On("CountPending", mock.Anything).Return(5, nil)
	m.Loans.On("ListRecent", mock.Anything, 5).Return(nil, nil)
}

func TestStats_LibrarianComputesAndCaches(t *testing.T) {
	c := &mocks.MockCache{}
	svc, m := newDashboard(c)
	expectStaffCounts(m)

	c.On("GetJSON", mock.Anything, "dashboard:stats:librarian", mock.Anything).Return("", nil)
	c.On("SetJSON", mock.Anything, "dashboard:stats:librarian", mock.Anything, dashboardTTL).Return(nil)

	stats, err := svc.Stats(context.Background(), librarianAuth)

	require.NoError(t, err)
	require.NotNil(t, stats.Staff)
	assert.Equal(t, 120, stats.Staff.TotalBooks)
	assert.Equal(t, 3, stats.Staff.OverdueLoans)
	assert.Nil(t, stats.Staff.TotalFines)
	assert.Nil(t, stats.Staff.TotalUsers)
	assert.NotNil(t, stats.RecentActivity)
	c.AssertExpectations(t)
	m.AssertExpectations(t)
}

func TestStats_AdminSeesFinesAndUsers(t *testing.T) {
	svc, m := newDashboard(nil)
	expectStaffCounts(m)
	m.Fines.On("Count", mock.Anything).Return(8, nil)
	m.Users.On("Count", mock.Anything).Return(50, nil)

	stats, err := svc.Stats(context.Background(), adminAuth)

	require.NoError(t, err)
	require.NotNil(t, stats.Staff.TotalFines)
	assert.Equal(t, 8, *stats.Staff.TotalFines)
	assert.Equal(t, 50, *stats.Staff.TotalUsers)
}

func TestStats_CacheHitSkipsStore(t *testing.T) {
	c := &mocks.MockCache{}
	svc, m := newDashboard(c)

	c.On("GetJSON", mock.Anything, "dashboard:stats:librarian", mock.Anything).
		Return(`{"role":"librarian","staff":{"total_books":99},"recent_activity":[]}`, nil)

	stats, err := svc.Stats(context.Background(), librarianAuth)

	require.NoError(t, err)
	assert.Equal(t, 99, stats.Staff.TotalBooks)
	m.Books.AssertNotCalled(t, "Count", mock.Anything)
	c.AssertNotCalled(t, "SetJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStats_CacheFailureIsTolerated(t *testing.T) {
	c := &mocks.MockCache{}
	svc, m := newDashboard(c)
	expectStaffCounts(m)

	c.On("GetJSON", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("redis: connection refused"))
	c.On("SetJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis: connection refused"))

	stats, err := svc.Stats(context.Background(), librarianAuth)

	require.NoError(t, err)
	assert.Equal(t, 120, stats.Staff.TotalBooks)
}

func TestStats_Member(t *testing.T) {
	c := &mocks.MockCache{}
	svc, m := newDashboard(c)
	balance := decimal.RequireFromString("2.50")

	m.Customers.On("GetByUserID", mock.Anything, memberAuth.UserID).Return(&domain.Customer{ID: 7, FineBalance: balance}, nil)
	m.Loans.On("CountOpenByCustomer", mock.Anything, int64(7)).Return(2, nil)
	m.Reservations.On("CountPendingByCustomer", mock.Anything, int64(7)).Return(1, nil)
	m.Loans.On("ListRecentByCustomer", mock.Anything, int64(7), 5).Return([]*domain.LoanView{{Loan: *openLoan()}}, nil)
	c.On("GetJSON", mock.Anything, "dashboard:stats:member:7", mock.Anything).Return("", nil)
	c.On("SetJSON", mock.Anything, "dashboard:stats:member:7", mock.Anything, dashboardTTL).Return(nil)

	stats, err := svc.Stats(context.Background(), memberAuth)

	require.NoError(t, err)
	assert.Nil(t, stats.Staff)
	require.NotNil(t, stats.Member)
	assert.Equal(t, 2, stats.Member.IssuedLoans)
	assert.True(t, stats.Member.FineBalance.Equal(balance))
	assert.Equal(t, domain.LoanStatusOverdue, stats.RecentActivity[0].DisplayStatus)
}

func TestStats_StoreFailure(t *testing.T) {
	svc, m := newDashboard(nil)
	m.Books.On("Count", mock.Anything).Return(0, errors.New("timeout"))

	_, err := svc.Stats(context.Background(), librarianAuth)
	assert.True(t, errors.Is(err, customError.ErrPersistence))
}

func TestStats_Unauthenticated(t *testing.T) {
	svc, _ := newDashboard(nil)

	_, err := svc.Stats(context.Background(), domain.AuthContext{})
	assert.True(t, errors.Is(err, customError.ErrUnauthenticated))
}
