package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segyhp/library-engine/internal/config"
	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/internal/repository"
	customError "github.com/segyhp/library-engine/pkg/errors"
	"github.com/segyhp/library-engine/pkg/utils"

	"github.com/shopspring/decimal"
)

// CirculationService runs the loan ledger: issuing and returning books and
// levying fines on late returns.
type CirculationService struct {
	repos              *repository.Repositories
	tx                 repository.Transactor
	fineRate           decimal.Decimal
	loanDays           int
	blockSuspendedPass bool
	logger             *slog.Logger
	now                func() time.Time
}

func NewCirculationService(repos *repository.Repositories, tx repository.Transactor, cfg *config.Config, logger *slog.Logger) *CirculationService {
	return &CirculationService{
		repos:              repos,
		tx:                 tx,
		fineRate:           cfg.GetFineDailyRate(),
		loanDays:           cfg.Business.DefaultLoanDays,
		blockSuspendedPass: cfg.Business.BlockSuspendedPass,
		logger:             orDefault(logger),
		now:                time.Now,
	}
}

// IssueLoan lends one copy of a book to a customer. Book and customer rows
// stay locked until the loan is written and the copy taken off the shelf,
// so concurrent issues of the last copy serialize.
func (s *CirculationService) IssueLoan(ctx context.Context, auth domain.AuthContext, req *domain.IssueLoanRequest) (*domain.Loan, error) {
	if err := auth.Require(domain.RoleLibrarian); err != nil {
		return nil, err
	}
	if req == nil || req.BookID <= 0 || req.CustomerID <= 0 {
		return nil, customError.WrapInvalidArgument("book and customer are required")
	}

	today := utils.DateOnly(s.now())
	issueDate := utils.DateOnly(req.IssueDate.TimeOr(today))
	dueDate := utils.DateOnly(req.DueDate.TimeOr(utils.CalculateDueDate(issueDate, s.loanDays)))
	if dueDate.Before(issueDate) {
		return nil, customError.WrapInvalidArgument("due date cannot be before the issue date")
	}

	loan := &domain.Loan{
		BookID:     req.BookID,
		CustomerID: req.CustomerID,
		IssueDate:  issueDate,
		DueDate:    dueDate,
		Status:     domain.LoanStatusIssued,
		IssuedBy:   auth.UserID,
		Notes:      strings.TrimSpace(req.Notes),
	}

	err := s.tx.WithinTx(ctx, func(repos *repository.Repositories) error {
		book, err := repos.Books.GetByIDForUpdate(ctx, req.BookID)
		if isNotFound(err) {
			return customError.WrapBookNotAvailable(req.BookID)
		}
		if err != nil {
			return err
		}
		if !book.IsAvailable() {
			return customError.WrapBookNotAvailable(req.BookID)
		}

		customer, err := repos.Customers.GetByIDForUpdate(ctx, req.CustomerID)
		if isNotFound(err) {
			return customError.WrapCustomerNotFound(req.CustomerID)
		}
		if err != nil {
			return err
		}
		if utils.IsExpired(customer.MembershipExpiry, today) {
			return customError.WrapMembershipExpired(customer.ID, *customer.MembershipExpiry)
		}

		open, err := repos.Loans.CountOpenByCustomer(ctx, customer.ID)
		if err != nil {
			return err
		}
		if open >= customer.MaxBooksAllowed {
			return customError.WrapBorrowLimitExceeded(customer.ID, customer.MaxBooksAllowed)
		}

		if s.blockSuspendedPass {
			suspended, err := repos.Passes.HasSuspended(ctx, customer.ID)
			if err != nil {
				return err
			}
			if suspended {
				return customError.WrapPassSuspended(customer.ID)
			}
		}

		if err := repos.Loans.Create(ctx, loan); err != nil {
			return err
		}
		return repos.Books.DecrementAvailability(ctx, book.ID)
	})
	if err != nil {
		return nil, storeError(ctx, s.logger, "loans.issue", err)
	}

	s.logger.InfoContext(ctx, "book issued",
		"loan_id", loan.ID, "book_id", loan.BookID, "customer_id", loan.CustomerID,
		"due_date", loan.DueDate.Format(time.DateOnly), "staff_id", auth.UserID)
	return loan, nil
}

// ReturnLoan closes an open loan and puts the copy back on the shelf. Without
// an explicit fine amount the computed late fine is levied.
func (s *CirculationService) ReturnLoan(ctx context.Context, auth domain.AuthContext, loanID int64, req *domain.ReturnLoanRequest) (*domain.ReturnLoanResponse, error) {
	if err := auth.Require(domain.RoleLibrarian); err != nil {
		return nil, err
	}
	if req == nil {
		req = &domain.ReturnLoanRequest{}
	}
	if req.FineAmount != nil && req.FineAmount.IsNegative() {
		return nil, customError.WrapInvalidArgument("fine amount must not be negative")
	}

	fineType := req.FineType
	if fineType == "" {
		fineType = domain.FineTypeLateReturn
	}
	if !domain.IsValidFineType(fineType) {
		return nil, customError.WrapInvalidArgument("fine type must be late_return, damage or lost")
	}

	returnDate := utils.DateOnly(req.ReturnDate.TimeOr(s.now()))

	var result *domain.ReturnLoanResponse
	err := s.tx.WithinTx(ctx, func(repos *repository.Repositories) error {
		loan, err := repos.Loans.GetOpenForUpdate(ctx, loanID)
		if isNotFound(err) {
			return customError.WrapLoanNotOpenOrNotFound(loanID)
		}
		if err != nil {
			return err
		}
		if returnDate.Before(utils.DateOnly(loan.IssueDate)) {
			return customError.WrapInvalidArgument("return date cannot be before the issue date")
		}

		daysOverdue := utils.DaysOverdue(loan.DueDate, returnDate)
		suggested := s.CalculateFine(loan.DueDate, returnDate)
		amount := suggested
		if req.FineAmount != nil {
			amount = req.FineAmount.Round(2)
		}

		staffID := auth.UserID
		loan.Status = domain.LoanStatusReturned
		loan.ReturnDate = &returnDate
		loan.ReturnedTo = &staffID
		// the return desk's notes replace whatever was recorded at issue
		loan.Notes = strings.TrimSpace(req.Notes)

		if err := repos.Loans.MarkReturned(ctx, loan); err != nil {
			return err
		}
		if err := repos.Books.IncrementAvailability(ctx, loan.BookID); err != nil {
			return err
		}

		result = &domain.ReturnLoanResponse{
			Loan:          loan,
			DaysOverdue:   daysOverdue,
			SuggestedFine: suggested,
		}

		if !amount.IsPositive() {
			return nil
		}

		description := strings.TrimSpace(req.FineDescription)
		if description == "" && fineType == domain.FineTypeLateReturn {
			description = fmt.Sprintf("Returned %d days late", daysOverdue)
		}
		fine := &domain.Fine{
			LoanID:      loan.ID,
			CustomerID:  loan.CustomerID,
			FineType:    fineType,
			Amount:      amount,
			Description: description,
		}
		if err := repos.Fines.Create(ctx, fine); err != nil {
			return err
		}
		if err := repos.Customers.AddToFineBalance(ctx, loan.CustomerID, amount); err != nil {
			return err
		}
		result.Fine = fine
		return nil
	})
	if err != nil {
		return nil, storeError(ctx, s.logger, "loans.return", err)
	}

	attrs := []any{"loan_id", loanID, "book_id", result.Loan.BookID, "staff_id", auth.UserID}
	if result.Fine != nil {
		attrs = append(attrs, "fine", result.Fine.Amount.StringFixed(2))
	}
	s.logger.InfoContext(ctx, "book returned", attrs...)
	return result, nil
}

// CalculateFine charges the daily rate for every whole day past the due date
func (s *CirculationService) CalculateFine(dueDate, returnDate time.Time) decimal.Decimal {
	return utils.CalculateFine(dueDate, returnDate, s.fineRate)
}

// PreviewReturn shows what returning an open loan on asOf (default today)
// would charge
func (s *CirculationService) PreviewReturn(ctx context.Context, auth domain.AuthContext, loanID int64, asOf *time.Time) (*domain.FinePreview, error) {
	if err := auth.Require(domain.RoleLibrarian); err != nil {
		return nil, err
	}

	loan, err := s.repos.Loans.GetByID(ctx, loanID)
	if isNotFound(err) {
		return nil, customError.WrapLoanNotOpenOrNotFound(loanID)
	}
	if err != nil {
		return nil, storeError(ctx, s.logger, "loans.get", err)
	}
	if !loan.IsOpen() {
		return nil, customError.WrapLoanNotOpenOrNotFound(loanID)
	}

	date := utils.DateOnly(s.now())
	if asOf != nil {
		date = utils.DateOnly(*asOf)
	}

	return &domain.FinePreview{
		LoanID:        loan.ID,
		DueDate:       loan.DueDate,
		AsOf:          date,
		DaysOverdue:   utils.DaysOverdue(loan.DueDate, date),
		DailyRate:     s.fineRate,
		SuggestedFine: s.CalculateFine(loan.DueDate, date),
	}, nil
}

func (s *CirculationService) GetLoan(ctx context.Context, auth domain.AuthContext, loanID int64) (*domain.LoanView, error) {
	if err := auth.Require(domain.RoleLibrarian); err != nil {
		return nil, err
	}

	loan, err := s.repos.Loans.GetByID(ctx, loanID)
	if isNotFound(err) {
		return nil, customError.WrapLoanNotOpenOrNotFound(loanID)
	}
	if err != nil {
		return nil, storeError(ctx, s.logger, "loans.get", err)
	}
	loan.DisplayStatus = loan.Loan.DisplayStatus(utils.DateOnly(s.now()))
	return loan, nil
}

// ListLoans is the transaction history. The overdue filter is derived from
// open loans past their due date.
func (s *CirculationService) ListLoans(ctx context.Context, auth domain.AuthContext, filter domain.LoanFilter) (*domain.Page[*domain.LoanView], error) {
	if err := auth.Require(domain.RoleLibrarian); err != nil {
		return nil, err
	}

	switch filter.Status {
	case "", domain.LoanStatusIssued, domain.LoanStatusReturned, domain.LoanStatusOverdue:
	default:
		return nil, customError.WrapInvalidArgument("status must be issued, returned or overdue")
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return nil, customError.WrapInvalidArgument("date_to cannot be before date_from")
	}

	today := utils.DateOnly(s.now())
	filter.Today = today
	filter.Query = strings.TrimSpace(filter.Query)
	filter.Page, filter.PageSize = utils.NormalizePage(filter.Page, filter.PageSize, listPageSize)

	loans, total, err := s.repos.Loans.List(ctx, filter)
	if err != nil {
		return nil, storeError(ctx, s.logger, "loans.list", err)
	}
	return domain.NewPage(withDisplayStatus(loans, today), filter.Page, filter.PageSize, total), nil
}

func (s *CirculationService) LoanStats(ctx context.Context, auth domain.AuthContext) (*domain.LoanStats, error) {
	if err := auth.Require(domain.RoleLibrarian); err != nil {
		return nil, err
	}

	stats, err := s.repos.Loans.Stats(ctx, utils.DateOnly(s.now()))
	if err != nil {
		return nil, storeError(ctx, s.logger, "loans.stats", err)
	}
	return stats, nil
}

// OverdueLoans lists open loans past due on today. It backs the scheduled
// report and is not exposed to callers outside the process.
func (s *CirculationService) OverdueLoans(ctx context.Context, today time.Time) ([]*domain.LoanView, error) {
	today = utils.DateOnly(today)
	loans, err := s.repos.Loans.ListOverdue(ctx, today)
	if err != nil {
		return nil, storeError(ctx, s.logger, "loans.list_overdue", err)
	}
	return withDisplayStatus(loans, today), nil
}
