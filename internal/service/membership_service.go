package service

import (
	"context"
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

type MembershipService struct {
	repos              *repository.Repositories
	codeAttempts       int
	blockSuspendedPass bool
	logger             *slog.Logger
	now                func() time.Time
}

func NewMembershipService(repos *repository.Repositories, cfg *config.Config, logger *slog.Logger) *MembershipService {
	return &MembershipService{
		repos:              repos,
		codeAttempts:       cfg.Business.CodeGenerationAttempts,
		blockSuspendedPass: cfg.Business.BlockSuspendedPass,
		logger:             orDefault(logger),
		now:                time.Now,
	}
}

// AddCustomer registers a member under a freshly generated customer code
func (s *MembershipService) AddCustomer(ctx context.Context, auth domain.AuthContext, req *domain.CreateCustomerRequest) (*domain.Customer, error) {
	if err := auth.Require(domain.RoleLibrarian); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, customError.WrapInvalidArgument("customer details are required")
	}
	if !domain.IsValidMembershipType(req.MembershipType) {
		return nil, customError.WrapInvalidArgument("membership type must be student, faculty or public")
	}
	if req.MaxBooksAllowed < 1 {
		return nil, customError.WrapInvalidArgument("max books allowed must be at least 1")
	}

	if req.UserID != nil {
		if _, err := s.repos.Users.GetByID(ctx, *req.UserID); err != nil {
			if isNotFound(err) {
				return nil, customError.WrapUserNotFound(*req.UserID)
			}
			return nil, storeError(ctx, s.logger, "users.get", err)
		}
	}

	customer := &domain.Customer{
		UserID:           req.UserID,
		MembershipType:   req.MembershipType,
		MembershipExpiry: req.MembershipExpiry.Ptr(),
		MaxBooksAllowed:  req.MaxBooksAllowed,
		FineBalance:      decimal.Zero,
	}

	err := generateUnique(s.codeAttempts, domain.CustomerCodePrefix, customerCodeConstraint, s.now(), func(code string) error {
		customer.CustomerCode = code
		return s.repos.Customers.Create(ctx, customer)
	})
	if err != nil {
		if name, ok := repository.UniqueViolation(err); ok && name == customerUserConstraint {
			return nil, customError.WrapUserAlreadyLinked(*req.UserID)
		}
		return nil, storeError(ctx, s.logger, "customers.create", err)
	}

	s.logger.InfoContext(ctx, "customer added", "customer_id", customer.ID, "customer_code", customer.CustomerCode)
	return customer, nil
}

// GetCustomer is open to staff and to the member the record belongs to
func (s *MembershipService) GetCustomer(ctx context.Context, auth domain.AuthContext, id int64) (*domain.Customer, error) {
	if err := auth.Require(domain.RoleMember); err != nil {
		return nil, err
	}

	customer, err := s.repos.Customers.GetByID(ctx, id)
	if isNotFound(err) {
		return nil, customError.WrapCustomerNotFound(id)
	}
	if err != nil {
		return nil, storeError(ctx, s.logger, "customers.get", err)
	}

	if !auth.IsStaff() && (customer.UserID == nil || *customer.UserID != auth.UserID) {
		return nil, customError.WrapForbidden(string(domain.RoleLibrarian))
	}
	return customer, nil
}

// IsEligibleToBorrow reports whether the customer could take another book today
func (s *MembershipService) IsEligibleToBorrow(ctx context.Context, auth domain.AuthContext, id int64) (*domain.Eligibility, error) {
	if err := auth.Require(domain.RoleLibrarian); err != nil {
		return nil, err
	}

	customer, err := s.repos.Customers.GetByID(ctx, id)
	if isNotFound(err) {
		return nil, customError.WrapCustomerNotFound(id)
	}
	if err != nil {
		return nil, storeError(ctx, s.logger, "customers.get", err)
	}

	open, err := s.repos.Loans.CountOpenByCustomer(ctx, id)
	if err != nil {
		return nil, storeError(ctx, s.logger, "loans.count_open_by_customer", err)
	}

	result := &domain.Eligibility{
		CustomerID:      id,
		OpenLoans:       open,
		MaxBooksAllowed: customer.MaxBooksAllowed,
		Expired:         utils.IsExpired(customer.MembershipExpiry, s.now()),
	}
	if s.blockSuspendedPass {
		suspended, err := s.repos.Passes.HasSuspended(ctx, id)
		if err != nil {
			return nil, storeError(ctx, s.logger, "passes.has_suspended", err)
		}
		result.PassSuspended = suspended
	}

	// same order as the issue preconditions
	switch {
	case result.Expired:
		result.Reason = "membership expired"
	case open >= customer.MaxBooksAllowed:
		result.Reason = "borrow limit reached"
	case result.PassSuspended:
		result.Reason = "library pass suspended"
	default:
		result.Eligible = true
	}
	return result, nil
}

func (s *MembershipService) SearchCustomers(ctx context.Context, auth domain.AuthContext, filter domain.CustomerFilter) (*domain.Page[*domain.Customer], error) {
	if err := auth.Require(domain.RoleLibrarian); err != nil {
		return nil, err
	}
	if filter.MembershipType != "" && !domain.IsValidMembershipType(filter.MembershipType) {
		return nil, customError.WrapInvalidArgument("unknown membership type")
	}

	filter.Query = strings.TrimSpace(filter.Query)
	filter.Page, filter.PageSize = utils.NormalizePage(filter.Page, filter.PageSize, listPageSize)

	customers, total, err := s.repos.Customers.Search(ctx, filter)
	if err != nil {
		return nil, storeError(ctx, s.logger, "customers.search", err)
	}
	return domain.NewPage(customers, filter.Page, filter.PageSize, total), nil
}

// DeleteCustomer removes a customer without any loan or fine history
func (s *MembershipService) DeleteCustomer(ctx context.Context, auth domain.AuthContext, id int64) error {
	if err := auth.Require(domain.RoleLibrarian); err != nil {
		return err
	}

	if _, err := s.repos.Customers.GetByID(ctx, id); err != nil {
		if isNotFound(err) {
			return customError.WrapCustomerNotFound(id)
		}
		return storeError(ctx, s.logger, "customers.get", err)
	}

	loans, err := s.repos.Loans.CountByCustomer(ctx, id)
	if err != nil {
		return storeError(ctx, s.logger, "loans.count_by_customer", err)
	}
	fines, err := s.repos.Fines.CountByCustomer(ctx, id)
	if err != nil {
		return storeError(ctx, s.logger, "fines.count_by_customer", err)
	}
	if loans > 0 || fines > 0 {
		return customError.WrapStillReferenced("Customer", id)
	}

	if err := s.repos.Customers.Delete(ctx, id); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return customError.WrapStillReferenced("Customer", id)
		}
		return storeError(ctx, s.logger, "customers.delete", err)
	}

	s.logger.InfoContext(ctx, "customer deleted", "customer_id", id)
	return nil
}

// ListFines is open to staff and to the member the fines belong to
func (s *MembershipService) ListFines(ctx context.Context, auth domain.AuthContext, customerID int64) ([]*domain.Fine, error) {
	if _, err := s.GetCustomer(ctx, auth, customerID); err != nil {
		return nil, err
	}

	fines, err := s.repos.Fines.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, storeError(ctx, s.logger, "fines.list_by_customer", err)
	}
	if fines == nil {
		fines = []*domain.Fine{}
	}
	return fines, nil
}
