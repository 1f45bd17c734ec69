package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/internal/repository"
	customError "github.com/segyhp/library-engine/pkg/errors"
	"github.com/segyhp/library-engine/pkg/utils"
)

const pendingReservationConstraint = "idx_reservations_pending"

// ReservationService keeps the hold list. Holds are never promoted to loans
// or expired automatically.
type ReservationService struct {
	repos  *repository.Repositories
	tx     repository.Transactor
	logger *slog.Logger
	now    func() time.Time
}

func NewReservationService(repos *repository.Repositories, tx repository.Transactor, logger *slog.Logger) *ReservationService {
	return &ReservationService{
		repos:  repos,
		tx:     tx,
		logger: orDefault(logger),
		now:    time.Now,
	}
}

// Reserve places a pending hold. Members reserve for their own customer
// record, staff for any customer.
func (s *ReservationService) Reserve(ctx context.Context, auth domain.AuthContext, req *domain.ReserveRequest) (*domain.Reservation, error) {
	if err := auth.Require(domain.RoleMember); err != nil {
		return nil, err
	}
	if req == nil || req.BookID <= 0 {
		return nil, customError.WrapInvalidArgument("book is required")
	}

	customerID := req.CustomerID
	if auth.IsStaff() {
		if customerID <= 0 {
			return nil, customError.WrapInvalidArgument("customer is required")
		}
		if _, err := s.repos.Customers.GetByID(ctx, customerID); err != nil {
			if isNotFound(err) {
				return nil, customError.WrapCustomerNotFound(customerID)
			}
			return nil, storeError(ctx, s.logger, "customers.get", err)
		}
	} else {
		own, err := ownCustomer(ctx, s.repos, auth)
		if err != nil {
			return nil, storeError(ctx, s.logger, "customers.get_by_user", err)
		}
		if customerID != 0 && customerID != own.ID {
			return nil, customError.WrapForbidden(string(domain.RoleLibrarian))
		}
		customerID = own.ID
	}

	if _, err := s.repos.Books.GetByID(ctx, req.BookID); err != nil {
		if isNotFound(err) {
			return nil, customError.WrapBookNotFound(req.BookID)
		}
		return nil, storeError(ctx, s.logger, "books.get", err)
	}

	exists, err := s.repos.Reservations.ExistsPending(ctx, req.BookID, customerID)
	if err != nil {
		return nil, storeError(ctx, s.logger, "reservations.exists_pending", err)
	}
	if exists {
		return nil, customError.WrapDuplicateReservation(req.BookID, customerID)
	}

	reservation := &domain.Reservation{
		BookID:          req.BookID,
		CustomerID:      customerID,
		ReservationDate: utils.DateOnly(s.now()),
		Status:          domain.ReservationPending,
	}
	if err := s.repos.Reservations.Create(ctx, reservation); err != nil {
		if name, ok := repository.UniqueViolation(err); ok && name == pendingReservationConstraint {
			return nil, customError.WrapDuplicateReservation(req.BookID, customerID)
		}
		return nil, storeError(ctx, s.logger, "reservations.create", err)
	}

	s.logger.InfoContext(ctx, "book reserved",
		"reservation_id", reservation.ID, "book_id", reservation.BookID, "customer_id", customerID)
	return reservation, nil
}

// ListReservationsForBook returns the pending holds, most recent first
func (s *ReservationService) ListReservationsForBook(ctx context.Context, auth domain.AuthContext, bookID int64) ([]*domain.ReservationView, error) {
	if err := auth.Require(domain.RoleLibrarian); err != nil {
		return nil, err
	}

	reservations, err := s.repos.Reservations.ListPendingByBook(ctx, bookID)
	if err != nil {
		return nil, storeError(ctx, s.logger, "reservations.list_pending_by_book", err)
	}
	if reservations == nil {
		reservations = []*domain.ReservationView{}
	}
	return reservations, nil
}

func (s *ReservationService) ListReservationsForCustomer(ctx context.Context, auth domain.AuthContext, customerID int64) ([]*domain.ReservationView, error) {
	if err := auth.Require(domain.RoleMember); err != nil {
		return nil, err
	}
	if !auth.IsStaff() {
		own, err := ownCustomer(ctx, s.repos, auth)
		if err != nil {
			return nil, storeError(ctx, s.logger, "customers.get_by_user", err)
		}
		if own.ID != customerID {
			return nil, customError.WrapForbidden(string(domain.RoleLibrarian))
		}
	}

	reservations, err := s.repos.Reservations.ListPendingByCustomer(ctx, customerID)
	if err != nil {
		return nil, storeError(ctx, s.logger, "reservations.list_pending_by_customer", err)
	}
	if reservations == nil {
		reservations = []*domain.ReservationView{}
	}
	return reservations, nil
}

// SetStatus moves a pending reservation to fulfilled, expired or cancelled.
// Members may only cancel their own holds.
func (s *ReservationService) SetStatus(ctx context.Context, auth domain.AuthContext, id int64, status string) (*domain.Reservation, error) {
	if err := auth.Require(domain.RoleMember); err != nil {
		return nil, err
	}

	switch status {
	case domain.ReservationFulfilled, domain.ReservationExpired, domain.ReservationCancelled:
	default:
		return nil, customError.WrapInvalidArgument("status must be fulfilled, expired or cancelled")
	}
	if !auth.IsStaff() && status != domain.ReservationCancelled {
		return nil, customError.WrapForbidden(string(domain.RoleLibrarian))
	}

	var updated *domain.Reservation
	err := s.tx.WithinTx(ctx, func(repos *repository.Repositories) error {
		reservation, err := repos.Reservations.GetByIDForUpdate(ctx, id)
		if isNotFound(err) {
			return customError.WrapReservationNotFound(id)
		}
		if err != nil {
			return err
		}

		if !auth.IsStaff() {
			own, err := ownCustomer(ctx, repos, auth)
			if err != nil {
				return err
			}
			if own.ID != reservation.CustomerID {
				return customError.WrapForbidden(string(domain.RoleLibrarian))
			}
		}

		if !reservation.IsPending() {
			return customError.WrapReservationNotPending(id, reservation.Status)
		}

		if err := repos.Reservations.UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		reservation.Status = status
		updated = reservation
		return nil
	})
	if err != nil {
		return nil, storeError(ctx, s.logger, "reservations.set_status", err)
	}

	s.logger.InfoContext(ctx, "reservation status changed", "reservation_id", id, "status", status, "user_id", auth.UserID)
	return updated, nil
}
