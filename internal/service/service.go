package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/internal/repository"
	customError "github.com/segyhp/library-engine/pkg/errors"
	"github.com/segyhp/library-engine/pkg/utils"
)

// Page sizes of the listings
const (
	searchPageSize  = 10
	browsePageSize  = 12
	listPageSize    = 15
	recentLoanLimit = 10
)

// Unique constraints that a regenerated code can resolve
const (
	customerCodeConstraint = "customers_customer_code_key"
	customerUserConstraint = "customers_user_id_key"
	passNumberConstraint   = "library_passes_pass_number_key"
	isbnConstraint         = "books_isbn_key"
	usernameConstraint     = "users_username_key"
	emailConstraint        = "users_email_key"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// storeError passes business errors through and turns anything else into a
// persistence failure. The cause is logged, callers only see the generic message.
func storeError(ctx context.Context, logger *slog.Logger, op string, err error) error {
	var be *customError.BusinessError
	if errors.As(err, &be) {
		return err
	}
	logger.ErrorContext(ctx, "store operation failed", "op", op, "error", err)
	return customError.WrapDatabaseError(err)
}

// generateUnique retries create with a fresh code while the insert collides
// on constraint, up to attempts times.
func generateUnique(attempts int, prefix, constraint string, now time.Time, create func(code string) error) error {
	for i := 0; i < attempts; i++ {
		err := create(utils.GenerateCode(prefix, now))
		if err == nil {
			return nil
		}
		if name, ok := repository.UniqueViolation(err); ok && name == constraint {
			continue
		}
		return err
	}
	return customError.WrapCodeSpaceExhausted(prefix, attempts)
}

// ownCustomer resolves the customer record linked to the calling user.
func ownCustomer(ctx context.Context, repos *repository.Repositories, auth domain.AuthContext) (*domain.Customer, error) {
	customer, err := repos.Customers.GetByUserID(ctx, auth.UserID)
	if isNotFound(err) {
		return nil, customError.NewBusinessError(
			customError.ErrCodeCustomerNotFound,
			"No customer record is linked to this account",
			customError.KindNotFound,
			customError.ErrCustomerNotFound,
		)
	}
	return customer, err
}

func withDisplayStatus(loans []*domain.LoanView, today time.Time) []*domain.LoanView {
	for _, l := range loans {
		l.DisplayStatus = l.Loan.DisplayStatus(today)
	}
	return loans
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
