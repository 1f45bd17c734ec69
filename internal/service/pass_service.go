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
)

type PassService struct {
	repos        *repository.Repositories
	validityDays int
	codeAttempts int
	logger       *slog.Logger
	now          func() time.Time
}

func NewPassService(repos *repository.Repositories, cfg *config.Config, logger *slog.Logger) *PassService {
	return &PassService{
		repos:        repos,
		validityDays: cfg.Business.PassValidityDays,
		codeAttempts: cfg.Business.CodeGenerationAttempts,
		logger:       orDefault(logger),
		now:          time.Now,
	}
}

// IssuePass gives a customer a new pass, valid for the configured number of
// days unless an expiry date is supplied
func (s *PassService) IssuePass(ctx context.Context, auth domain.AuthContext, req *domain.IssuePassRequest) (*domain.LibraryPass, error) {
	if err := auth.Require(domain.RoleLibrarian); err != nil {
		return nil, err
	}
	if req == nil || req.CustomerID <= 0 {
		return nil, customError.WrapInvalidArgument("customer is required")
	}

	issueDate := utils.DateOnly(req.IssueDate.TimeOr(s.now()))
	expiryDate := utils.DateOnly(req.ExpiryDate.TimeOr(issueDate.AddDate(0, 0, s.validityDays)))
	if expiryDate.Before(issueDate) {
		return nil, customError.WrapInvalidArgument("expiry date cannot be before the issue date")
	}

	if _, err := s.repos.Customers.GetByID(ctx, req.CustomerID); err != nil {
		if isNotFound(err) {
			return nil, customError.WrapCustomerNotFound(req.CustomerID)
		}
		return nil, storeError(ctx, s.logger, "customers.get", err)
	}

	pass := &domain.LibraryPass{
		CustomerID: req.CustomerID,
		IssueDate:  issueDate,
		ExpiryDate: expiryDate,
		Status:     domain.PassStatusActive,
	}
	err := generateUnique(s.codeAttempts, domain.PassNumberPrefix, passNumberConstraint, s.now(), func(code string) error {
		pass.PassNumber = code
		return s.repos.Passes.Create(ctx, pass)
	})
	if err != nil {
		return nil, storeError(ctx, s.logger, "passes.create", err)
	}

	s.logger.InfoContext(ctx, "pass issued", "pass_id", pass.ID, "pass_number", pass.PassNumber, "customer_id", pass.CustomerID)
	return pass, nil
}

func (s *PassService) Suspend(ctx context.Context, auth domain.AuthContext, id int64) (*domain.LibraryPass, error) {
	return s.setStatus(ctx, auth, id, domain.PassStatusSuspended)
}

func (s *PassService) Activate(ctx context.Context, auth domain.AuthContext, id int64) (*domain.LibraryPass, error) {
	return s.setStatus(ctx, auth, id, domain.PassStatusActive)
}

func (s *PassService) setStatus(ctx context.Context, auth domain.AuthContext, id int64, status string) (*domain.LibraryPass, error) {
	if err := auth.Require(domain.RoleLibrarian); err != nil {
		return nil, err
	}

	pass, err := s.repos.Passes.GetByID(ctx, id)
	if isNotFound(err) {
		return nil, customError.WrapPassNotFound(id)
	}
	if err != nil {
		return nil, storeError(ctx, s.logger, "passes.get", err)
	}

	if err := s.repos.Passes.UpdateStatus(ctx, id, status); err != nil {
		return nil, storeError(ctx, s.logger, "passes.update_status", err)
	}
	pass.Status = status

	s.logger.InfoContext(ctx, "pass status changed", "pass_id", id, "status", status, "staff_id", auth.UserID)
	return pass, nil
}

func (s *PassService) SearchPasses(ctx context.Context, auth domain.AuthContext, filter domain.PassFilter) (*domain.Page[*domain.PassView], error) {
	if err := auth.Require(domain.RoleLibrarian); err != nil {
		return nil, err
	}

	switch filter.Status {
	case "", domain.PassStatusActive, domain.PassStatusExpired, domain.PassStatusSuspended:
	default:
		return nil, customError.WrapInvalidArgument("status must be active, expired or suspended")
	}

	filter.Query = strings.TrimSpace(filter.Query)
	filter.Page, filter.PageSize = utils.NormalizePage(filter.Page, filter.PageSize, listPageSize)

	passes, total, err := s.repos.Passes.Search(ctx, filter)
	if err != nil {
		return nil, storeError(ctx, s.logger, "passes.search", err)
	}
	return domain.NewPage(passes, filter.Page, filter.PageSize, total), nil
}

// ExpireLapsed marks active passes past their expiry date as expired. It backs
// the scheduled sweep and is not exposed to callers outside the process.
func (s *PassService) ExpireLapsed(ctx context.Context, today time.Time) (int64, error) {
	n, err := s.repos.Passes.ExpireBefore(ctx, utils.DateOnly(today))
	if err != nil {
		return 0, storeError(ctx, s.logger, "passes.expire_before", err)
	}
	return n, nil
}
