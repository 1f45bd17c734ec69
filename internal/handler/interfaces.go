package handler

import (
	"context"
	"time"

	"github.com/segyhp/library-engine/internal/domain"
)

// Services consumed by the HTTP layer. The implementations live in
// internal/service.

type CatalogService interface {
	AddBook(ctx context.Context, auth domain.AuthContext, req *domain.CreateBookRequest) (*domain.Book, error)
	SearchBooks(ctx context.Context, auth domain.AuthContext, filter domain.BookFilter) (*domain.Page[*domain.Book], error)
	BrowseBooks(ctx context.Context, auth domain.AuthContext, filter domain.BookFilter) (*domain.Page[*domain.Book], error)
	GetBook(ctx context.Context, auth domain.AuthContext, id int64) (*domain.BookDetail, error)
	UpdateBook(ctx context.Context, auth domain.AuthContext, id int64, req *domain.UpdateBookRequest) (*domain.Book, error)
	DeleteBook(ctx context.Context, auth domain.AuthContext, id int64) error
	ListGenres(ctx context.Context, auth domain.AuthContext) ([]string, error)
}

type MembershipService interface {
	AddCustomer(ctx context.Context, auth domain.AuthContext, req *domain.CreateCustomerRequest) (*domain.Customer, error)
	GetCustomer(ctx context.Context, auth domain.AuthContext, id int64) (*domain.Customer, error)
	IsEligibleToBorrow(ctx context.Context, auth domain.AuthContext, id int64) (*domain.Eligibility, error)
	SearchCustomers(ctx context.Context, auth domain.AuthContext, filter domain.CustomerFilter) (*domain.Page[*domain.Customer], error)
	DeleteCustomer(ctx context.Context, auth domain.AuthContext, id int64) error
	ListFines(ctx context.Context, auth domain.AuthContext, customerID int64) ([]*domain.Fine, error)
}

type CirculationService interface {
	IssueLoan(ctx context.Context, auth domain.AuthContext, req *domain.IssueLoanRequest) (*domain.Loan, error)
	ReturnLoan(ctx context.Context, auth domain.AuthContext, loanID int64, req *domain.ReturnLoanRequest) (*domain.ReturnLoanResponse, error)
	PreviewReturn(ctx context.Context, auth domain.AuthContext, loanID int64, asOf *time.Time) (*domain.FinePreview, error)
	GetLoan(ctx context.Context, auth domain.AuthContext, loanID int64) (*domain.LoanView, error)
	ListLoans(ctx context.Context, auth domain.AuthContext, filter domain.LoanFilter) (*domain.Page[*domain.LoanView], error)
	LoanStats(ctx context.Context, auth domain.AuthContext) (*domain.LoanStats, error)
}

type ReservationService interface {
	Reserve(ctx context.Context, auth domain.AuthContext, req *domain.ReserveRequest) (*domain.Reservation, error)
	ListReservationsForBook(ctx context.Context, auth domain.AuthContext, bookID int64) ([]*domain.ReservationView, error)
	ListReservationsForCustomer(ctx context.Context, auth domain.AuthContext, customerID int64) ([]*domain.ReservationView, error)
	SetStatus(ctx context.Context, auth domain.AuthContext, id int64, status string) (*domain.Reservation, error)
}

type PassService interface {
	IssuePass(ctx context.Context, auth domain.AuthContext, req *domain.IssuePassRequest) (*domain.LibraryPass, error)
	Suspend(ctx context.Context, auth domain.AuthContext, id int64) (*domain.LibraryPass, error)
	Activate(ctx context.Context, auth domain.AuthContext, id int64) (*domain.LibraryPass, error)
	SearchPasses(ctx context.Context, auth domain.AuthContext, filter domain.PassFilter) (*domain.Page[*domain.PassView], error)
}

type UserService interface {
	CreateUser(ctx context.Context, auth domain.AuthContext, req *domain.CreateUserRequest) (*domain.User, error)
	SearchUsers(ctx context.Context, auth domain.AuthContext, filter domain.UserFilter) (*domain.Page[*domain.User], error)
	SetActive(ctx context.Context, auth domain.AuthContext, id int64, active bool) (*domain.User, error)
	GetProfile(ctx context.Context, auth domain.AuthContext) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, auth domain.AuthContext, req *domain.UpdateProfileRequest) (*domain.User, error)
	ChangePassword(ctx context.Context, auth domain.AuthContext, req *domain.ChangePasswordRequest) error
}

type DashboardService interface {
	Stats(ctx context.Context, auth domain.AuthContext) (*domain.DashboardStats, error)
}
