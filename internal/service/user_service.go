package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/internal/repository"
	customError "github.com/segyhp/library-engine/pkg/errors"
	"github.com/segyhp/library-engine/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type UserService struct {
	repos    *repository.Repositories
	hashCost int
	logger   *slog.Logger
	now      func() time.Time
}

func NewUserService(repos *repository.Repositories, logger *slog.Logger) *UserService {
	return &UserService{
		repos:    repos,
		hashCost: bcrypt.DefaultCost,
		logger:   orDefault(logger),
		now:      time.Now,
	}
}

// CreateUser opens an account with a bcrypt hashed password
func (s *UserService) CreateUser(ctx context.Context, auth domain.AuthContext, req *domain.CreateUserRequest) (*domain.User, error) {
	if err := auth.Require(domain.RoleAdmin); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, customError.WrapInvalidArgument("user details are required")
	}

	role, ok := domain.ParseRole(req.Role)
	if !ok {
		return nil, customError.WrapInvalidArgument("role must be member, librarian or admin")
	}

	user := &domain.User{
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.TrimSpace(req.Email),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     strings.TrimSpace(req.Phone),
		Address:   strings.TrimSpace(req.Address),
		Role:      role,
		IsActive:  true,
	}
	switch {
	case user.Username == "":
		return nil, customError.WrapInvalidArgument("username is required")
	case user.Email == "":
		return nil, customError.WrapInvalidArgument("email is required")
	case user.FirstName == "" || user.LastName == "":
		return nil, customError.WrapInvalidArgument("first and last name are required")
	case len(req.Password) < minPasswordLength:
		return nil, customError.WrapInvalidArgument("password must be at least 6 characters")
	}

	taken, err := s.repos.Users.ExistsByUsername(ctx, user.Username)
	if err != nil {
		return nil, storeError(ctx, s.logger, "users.exists_by_username", err)
	}
	if taken {
		return nil, customError.WrapDuplicateUser("username")
	}
	taken, err = s.repos.Users.ExistsByEmail(ctx, user.Email, 0)
	if err != nil {
		return nil, storeError(ctx, s.logger, "users.exists_by_email", err)
	}
	if taken {
		return nil, customError.WrapDuplicateUser("email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, customError.WrapInvalidArgument("password must be at most 72 bytes")
	}
	user.PasswordHash = string(hash)

	if err := s.repos.Users.Create(ctx, user); err != nil {
		return nil, s.userConflict(ctx, "users.create", err)
	}

	s.logger.InfoContext(ctx, "user created", "user_id", user.ID, "role", user.Role, "admin_id", auth.UserID)
	return user, nil
}

func (s *UserService) SearchUsers(ctx context.Context, auth domain.AuthContext, filter domain.UserFilter) (*domain.Page[*domain.User], error) {
	if err := auth.Require(domain.RoleAdmin); err != nil {
		return nil, err
	}
	if filter.Role != "" {
		if _, ok := domain.ParseRole(filter.Role); !ok {
			return nil, customError.WrapInvalidArgument("unknown role")
		}
	}

	filter.Query = strings.TrimSpace(filter.Query)
	filter.Page, filter.PageSize = utils.NormalizePage(filter.Page, filter.PageSize, listPageSize)

	users, total, err := s.repos.Users.Search(ctx, filter)
	if err != nil {
		return nil, storeError(ctx, s.logger, "users.search", err)
	}
	return domain.NewPage(users, filter.Page, filter.PageSize, total), nil
}

// SetActive enables or disables an account. Admins cannot disable themselves.
func (s *UserService) SetActive(ctx context.Context, auth domain.AuthContext, id int64, active bool) (*domain.User, error) {
	if err := auth.Require(domain.RoleAdmin); err != nil {
		return nil, err
	}
	if !active && id == auth.UserID {
		return nil, customError.WrapInvalidArgument("you cannot deactivate your own account")
	}

	user, err := s.repos.Users.GetByID(ctx, id)
	if isNotFound(err) {
		return nil, customError.WrapUserNotFound(id)
	}
	if err != nil {
		return nil, storeError(ctx, s.logger, "users.get", err)
	}

	if err := s.repos.Users.SetActive(ctx, id, active); err != nil {
		return nil, storeError(ctx, s.logger, "users.set_active", err)
	}
	user.IsActive = active

	s.logger.InfoContext(ctx, "user activation changed", "user_id", id, "active", active, "admin_id", auth.UserID)
	return user, nil
}

// GetProfile returns the caller's account with their loans and holds
func (s *UserService) GetProfile(ctx context.Context, auth domain.AuthContext) (*domain.Profile, error) {
	if err := auth.Require(domain.RoleMember); err != nil {
		return nil, err
	}

	user, err := s.repos.Users.GetByID(ctx, auth.UserID)
	if isNotFound(err) {
		return nil, customError.WrapUserNotFound(auth.UserID)
	}
	if err != nil {
		return nil, storeError(ctx, s.logger, "users.get", err)
	}

	profile := &domain.Profile{
		User:               user,
		RecentLoans:        []*domain.LoanView{},
		ActiveReservations: []*domain.ReservationView{},
	}

	customer, err := s.repos.Customers.GetByUserID(ctx, auth.UserID)
	if isNotFound(err) {
		return profile, nil
	}
	if err != nil {
		return nil, storeError(ctx, s.logger, "customers.get_by_user", err)
	}
	profile.Customer = customer

	loans, err := s.repos.Loans.ListRecentByCustomer(ctx, customer.ID, recentLoanLimit)
	if err != nil {
		return nil, storeError(ctx, s.logger, "loans.list_recent_by_customer", err)
	}
	if loans != nil {
		profile.RecentLoans = withDisplayStatus(loans, utils.DateOnly(s.now()))
	}

	reservations, err := s.repos.Reservations.ListPendingByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, storeError(ctx, s.logger, "reservations.list_pending_by_customer", err)
	}
	if reservations != nil {
		profile.ActiveReservations = reservations
	}
	return profile, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, auth domain.AuthContext, req *domain.UpdateProfileRequest) (*domain.User, error) {
	if err := auth.Require(domain.RoleMember); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, customError.WrapInvalidArgument("profile details are required")
	}

	user, err := s.repos.Users.GetByID(ctx, auth.UserID)
	if isNotFound(err) {
		return nil, customError.WrapUserNotFound(auth.UserID)
	}
	if err != nil {
		return nil, storeError(ctx, s.logger, "users.get", err)
	}

	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)
	user.Email = strings.TrimSpace(req.Email)
	user.Phone = strings.TrimSpace(req.Phone)
	user.Address = strings.TrimSpace(req.Address)
	if user.FirstName == "" || user.LastName == "" || user.Email == "" {
		return nil, customError.WrapInvalidArgument("first name, last name and email are required")
	}

	taken, err := s.repos.Users.ExistsByEmail(ctx, user.Email, user.ID)
	if err != nil {
		return nil, storeError(ctx, s.logger, "users.exists_by_email", err)
	}
	if taken {
		return nil, customError.WrapDuplicateUser("email")
	}

	if err := s.repos.Users.UpdateProfile(ctx, user); err != nil {
		return nil, s.userConflict(ctx, "users.update_profile", err)
	}
	return user, nil
}

// ChangePassword replaces the caller's password after verifying the current one
func (s *UserService) ChangePassword(ctx context.Context, auth domain.AuthContext, req *domain.ChangePasswordRequest) error {
	if err := auth.Require(domain.RoleMember); err != nil {
		return err
	}
	if req == nil {
		return customError.WrapInvalidArgument("password details are required")
	}
	if len(req.NewPassword) < minPasswordLength {
		return customError.WrapInvalidArgument("new password must be at least 6 characters")
	}
	if req.NewPassword != req.ConfirmPassword {
		return customError.WrapInvalidArgument("new passwords do not match")
	}

	user, err := s.repos.Users.GetByID(ctx, auth.UserID)
	if isNotFound(err) {
		return customError.WrapUserNotFound(auth.UserID)
	}
	if err != nil {
		return storeError(ctx, s.logger, "users.get", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return customError.WrapIncorrectPassword()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.hashCost)
	if err != nil {
		return customError.WrapInvalidArgument("password must be at most 72 bytes")
	}
	if err := s.repos.Users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return storeError(ctx, s.logger, "users.update_password", err)
	}

	s.logger.InfoContext(ctx, "password changed", "user_id", user.ID)
	return nil
}

func (s *UserService) userConflict(ctx context.Context, op string, err error) error {
	if name, ok := repository.UniqueViolation(err); ok {
		switch name {
		case usernameConstraint:
			return customError.WrapDuplicateUser("username")
		case emailConstraint:
			return customError.WrapDuplicateUser("email")
		}
	}
	return storeError(ctx, s.logger, op, err)
}
