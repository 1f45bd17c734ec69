package mocks

import (
	"context"
	"time"

	"github.com/segyhp/library-engine/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) AddBook(ctx context.Context, auth domain.AuthContext, req *domain.CreateBookRequest) (*domain.Book, error) {
	args := m.Called(ctx, auth, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *MockCatalogService) SearchBooks(ctx context.Context, auth domain.AuthContext, filter domain.BookFilter) (*domain.Page[*domain.Book], error) {
	args := m.Called(ctx, auth, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[*domain.Book]), args.Error(1)
}

func (m *MockCatalogService) BrowseBooks(ctx context.Context, auth domain.AuthContext, filter domain.BookFilter) (*domain.Page[*domain.Book], error) {
	args := m.Called(ctx, auth, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[*domain.Book]), args.Error(1)
}

func (m *MockCatalogService) GetBook(ctx context.Context, auth domain.AuthContext, id int64) (*domain.BookDetail, error) {
	args := m.Called(ctx, auth, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookDetail), args.Error(1)
}

func (m *MockCatalogService) UpdateBook(ctx context.Context, auth domain.AuthContext, id int64, req *domain.UpdateBookRequest) (*domain.Book, error) {
	args := m.Called(ctx, auth, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *MockCatalogService) DeleteBook(ctx context.Context, auth domain.AuthContext, id int64) error {
	args := m.Called(ctx, auth, id)
	return args.Error(0)
}

func (m *MockCatalogService) ListGenres(ctx context.Context, auth domain.AuthContext) ([]string, error) {
	args := m.Called(ctx, auth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockMembershipService struct {
	mock.Mock
}

func (m *MockMembershipService) AddCustomer(ctx context.Context, auth domain.AuthContext, req *domain.CreateCustomerRequest) (*domain.Customer, error) {
	args := m.Called(ctx, auth, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockMembershipService) GetCustomer(ctx context.Context, auth domain.AuthContext, id int64) (*domain.Customer, error) {
	args := m.Called(ctx, auth, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockMembershipService) IsEligibleToBorrow(ctx context.Context, auth domain.AuthContext, id int64) (*domain.Eligibility, error) {
	args := m.Called(ctx, auth, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Eligibility), args.Error(1)
}

func (m *MockMembershipService) SearchCustomers(ctx context.Context, auth domain.AuthContext, filter domain.CustomerFilter) (*domain.Page[*domain.Customer], error) {
	args := m.Called(ctx, auth, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[*domain.Customer]), args.Error(1)
}

func (m *MockMembershipService) DeleteCustomer(ctx context.Context, auth domain.AuthContext, id int64) error {
	args := m.Called(ctx, auth, id)
	return args.Error(0)
}

func (m *MockMembershipService) ListFines(ctx context.Context, auth domain.AuthContext, customerID int64) ([]*domain.Fine, error) {
	args := m.Called(ctx, auth, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Fine), args.Error(1)
}

type MockCirculationService struct {
	mock.Mock
}

func (m *MockCirculationService) IssueLoan(ctx context.Context, auth domain.AuthContext, req *domain.IssueLoanRequest) (*domain.Loan, error) {
	args := m.Called(ctx, auth, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockCirculationService) ReturnLoan(ctx context.Context, auth domain.AuthContext, loanID int64, req *domain.ReturnLoanRequest) (*domain.ReturnLoanResponse, error) {
	args := m.Called(ctx, auth, loanID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReturnLoanResponse), args.Error(1)
}

func (m *MockCirculationService) PreviewReturn(ctx context.Context, auth domain.AuthContext, loanID int64, asOf *time.Time) (*domain.FinePreview, error) {
	args := m.Called(ctx, auth, loanID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinePreview), args.Error(1)
}

func (m *MockCirculationService) GetLoan(ctx context.Context, auth domain.AuthContext, loanID int64) (*domain.LoanView, error) {
	args := m.Called(ctx, auth, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanView), args.Error(1)
}

func (m *MockCirculationService) ListLoans(ctx context.Context, auth domain.AuthContext, filter domain.LoanFilter) (*domain.Page[*domain.LoanView], error) {
	args := m.Called(ctx, auth, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[*domain.LoanView]), args.Error(1)
}

func (m *MockCirculationService) LoanStats(ctx context.Context, auth domain.AuthContext) (*domain.LoanStats, error) {
	args := m.Called(ctx, auth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanStats), args.Error(1)
}

type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) Reserve(ctx context.Context, auth domain.AuthContext, req *domain.ReserveRequest) (*domain.Reservation, error) {
	args := m.Called(ctx, auth, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationService) ListReservationsForBook(ctx context.Context, auth domain.AuthContext, bookID int64) ([]*domain.ReservationView, error) {
	args := m.Called(ctx, auth, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReservationView), args.Error(1)
}

func (m *MockReservationService) ListReservationsForCustomer(ctx context.Context, auth domain.AuthContext, customerID int64) ([]*domain.ReservationView, error) {
	args := m.Called(ctx, auth, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReservationView), args.Error(1)
}

func (m *MockReservationService) SetStatus(ctx context.Context, auth domain.AuthContext, id int64, status string) (*domain.Reservation, error) {
	args := m.Called(ctx, auth, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

type MockPassService struct {
	mock.Mock
}

func (m *MockPassService) IssuePass(ctx context.Context, auth domain.AuthContext, req *domain.IssuePassRequest) (*domain.LibraryPass, error) {
	args := m.Called(ctx, auth, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LibraryPass), args.Error(1)
}

func (m *MockPassService) Suspend(ctx context.Context, auth domain.AuthContext, id int64) (*domain.LibraryPass, error) {
	args := m.Called(ctx, auth, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LibraryPass), args.Error(1)
}

func (m *MockPassService) Activate(ctx context.Context, auth domain.AuthContext, id int64) (*domain.LibraryPass, error) {
	args := m.Called(ctx, auth, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LibraryPass), args.Error(1)
}

func (m *MockPassService) SearchPasses(ctx context.Context, auth domain.AuthContext, filter domain.PassFilter) (*domain.Page[*domain.PassView], error) {
	args := m.Called(ctx, auth, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[*domain.PassView]), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) CreateUser(ctx context.Context, auth domain.AuthContext, req *domain.CreateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, auth, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) SearchUsers(ctx context.Context, auth domain.AuthContext, filter domain.UserFilter) (*domain.Page[*domain.User], error) {
	args := m.Called(ctx, auth, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[*domain.User]), args.Error(1)
}

func (m *MockUserService) SetActive(ctx context.Context, auth domain.AuthContext, id int64, active bool) (*domain.User, error) {
	args := m.Called(ctx, auth, id, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetProfile(ctx context.Context, auth domain.AuthContext) (*domain.Profile, error) {
	args := m.Called(ctx, auth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, auth domain.AuthContext, req *domain.UpdateProfileRequest) (*domain.User, error) {
	args := m.Called(ctx, auth, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) ChangePassword(ctx context.Context, auth domain.AuthContext, req *domain.ChangePasswordRequest) error {
	args := m.Called(ctx, auth, req)
	return args.Error(0)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Stats(ctx context.Context, auth domain.AuthContext) (*domain.DashboardStats, error) {
	args := m.Called(ctx, auth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardStats), args.Error(1)
}
