package repository

import (
	"context"
	"time"

	"github.com/segyhp/library-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// BookRepository defines the interface for catalog data operations
type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	GetByID(ctx context.Context, id int64) (*domain.Book, error)

	// GetByIDForUpdate locks the book row until the surrounding transaction ends
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Book, error)

	GetByISBN(ctx context.Context, isbn string) (*domain.Book, error)
	Update(ctx context.Context, book *domain.Book) error
	Delete(ctx context.Context, id int64) error

	// Search returns one page ordered by title and the total number of matches
	Search(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, int, error)

	Genres(ctx context.Context) ([]string, error)

	// DecrementAvailability takes one copy off the shelf and fails with
	// NotAvailable when none is left
	DecrementAvailability(ctx context.Context, id int64) error

	// IncrementAvailability puts one copy back, never above total copies
	IncrementAvailability(ctx context.Context, id int64) error

	Count(ctx context.Context) (int, error)
}

// CustomerRepository defines the interface for membership data operations
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Customer, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Customer, error)
	Search(ctx context.Context, filter domain.CustomerFilter) ([]*domain.Customer, int, error)
	Delete(ctx context.Context, id int64) error

	// AddToFineBalance raises the outstanding balance by amount
	AddToFineBalance(ctx context.Context, id int64, amount decimal.Decimal) error

	Count(ctx context.Context) (int, error)
}

// LoanRepository defines the interface for loan ledger operations
type LoanRepository interface {
	Create(ctx context.Context, loan *domain.Loan) error
	GetByID(ctx context.Context, id int64) (*domain.LoanView, error)

	// GetOpenForUpdate locks an issued loan. Returned loans are not found.
	GetOpenForUpdate(ctx context.Context, id int64) (*domain.Loan, error)

	MarkReturned(ctx context.Context, loan *domain.Loan) error
	CountOpenByCustomer(ctx context.Context, customerID int64) (int, error)
	CountByBook(ctx context.Context, bookID int64) (int, error)
	CountByCustomer(ctx context.Context, customerID int64) (int, error)
	List(ctx context.Context, filter domain.LoanFilter) ([]*domain.LoanView, int, error)
	ListRecentByBook(ctx context.Context, bookID int64, limit int) ([]*domain.LoanView, error)
	ListRecentByCustomer(ctx context.Context, customerID int64, limit int) ([]*domain.LoanView, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.LoanView, error)

	// Stats counts loans by status; overdue is derived against today
	Stats(ctx context.Context, today time.Time) (*domain.LoanStats, error)

	ListOverdue(ctx context.Context, today time.Time) ([]*domain.LoanView, error)
}

// FineRepository defines the interface for fine ledger operations
type FineRepository interface {
	Create(ctx context.Context, fine *domain.Fine) error
	ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Fine, error)
	CountByCustomer(ctx context.Context, customerID int64) (int, error)
	Count(ctx context.Context) (int, error)
}

// ReservationRepository defines the interface for reservation data operations
type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) error
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Reservation, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	ListPendingByBook(ctx context.Context, bookID int64) ([]*domain.ReservationView, error)
	ListPendingByCustomer(ctx context.Context, customerID int64) ([]*domain.ReservationView, error)
	ExistsPending(ctx context.Context, bookID, customerID int64) (bool, error)
	CountPending(ctx context.Context) (int, error)
	CountPendingByCustomer(ctx context.Context, customerID int64) (int, error)
}

// PassRepository defines the interface for library pass operations
type PassRepository interface {
	Create(ctx context.Context, pass *domain.LibraryPass) error
	GetByID(ctx context.Context, id int64) (*domain.LibraryPass, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	Search(ctx context.Context, filter domain.PassFilter) ([]*domain.PassView, int, error)

	// ExpireBefore marks active passes whose expiry lies before today as expired
	ExpireBefore(ctx context.Context, today time.Time) (int64, error)

	HasSuspended(ctx context.Context, customerID int64) (bool, error)
}

// UserRepository defines the interface for account data operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail ignores the user with excludeID, pass 0 to check everyone
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)

	Search(ctx context.Context, filter domain.UserFilter) ([]*domain.User, int, error)
	SetActive(ctx context.Context, id int64, active bool) error
	UpdateProfile(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	Count(ctx context.Context) (int, error)
}
