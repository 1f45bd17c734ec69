package errors

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors
var (
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrDuplicateIsbn         = errors.New("a book with this isbn already exists")
	ErrNotAvailable          = errors.New("no copies available")
	ErrBookNotAvailable      = errors.New("book is not available for issue")
	ErrBookNotFound          = errors.New("book not found")
	ErrCustomerNotFound      = errors.New("customer not found")
	ErrMembershipExpired     = errors.New("customer membership has expired")
	ErrBorrowLimitExceeded   = errors.New("customer has reached their book limit")
	ErrLoanNotOpenOrNotFound = errors.New("loan not found or already returned")
	ErrPassSuspended         = errors.New("customer library pass is suspended")
	ErrPassNotFound          = errors.New("library pass not found")
	ErrReservationNotFound   = errors.New("reservation not found")
	ErrReservationNotPending = errors.New("reservation is no longer pending")
	ErrDuplicateReservation  = errors.New("customer already holds a pending reservation for this book")
	ErrUserNotFound          = errors.New("user not found")
	ErrDuplicateUser         = errors.New("user already exists")
	ErrStillReferenced       = errors.New("record is still referenced by loans or fines")
	ErrIncorrectPassword     = errors.New("current password is incorrect")
	ErrUnauthenticated       = errors.New("authentication required")
	ErrForbidden             = errors.New("access denied")
	ErrUserAlreadyLinked     = errors.New("user is already linked to a customer")
	ErrCodeSpaceExhausted    = errors.New("could not generate a unique code")
	ErrPersistence           = errors.New("operation failed, please try again")
)

// Kind groups errors by how the caller is expected to react.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindUnauthenticated   Kind = "unauthenticated"
	KindForbidden         Kind = "forbidden"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindMembershipExpired Kind = "membership_expired"
	KindPersistence       Kind = "persistence"
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Kind    Kind
	Fields  map[string]string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, kind Kind, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Kind:    kind,
		Err:     err,
	}
}

// KindOf reports the kind of err. Anything that is not a BusinessError is
// treated as a store failure.
func KindOf(err error) Kind {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindPersistence
}

// Error codes
const (
	ErrCodeValidation            = "VALIDATION_FAILED"
	ErrCodeInvalidArgument       = "INVALID_ARGUMENT"
	ErrCodeDuplicateIsbn         = "DUPLICATE_ISBN"
	ErrCodeNotAvailable          = "NOT_AVAILABLE"
	ErrCodeBookNotAvailable      = "BOOK_NOT_AVAILABLE"
	ErrCodeBookNotFound          = "BOOK_NOT_FOUND"
	ErrCodeCustomerNotFound      = "CUSTOMER_NOT_FOUND"
	ErrCodeMembershipExpired     = "MEMBERSHIP_EXPIRED"
	ErrCodeBorrowLimitExceeded   = "BORROW_LIMIT_EXCEEDED"
	ErrCodeLoanNotOpenOrNotFound = "LOAN_NOT_OPEN_OR_NOT_FOUND"
	ErrCodePassSuspended         = "PASS_SUSPENDED"
	ErrCodePassNotFound          = "PASS_NOT_FOUND"
	ErrCodeReservationNotFound   = "RESERVATION_NOT_FOUND"
	ErrCodeReservationNotPending = "RESERVATION_NOT_PENDING"
	ErrCodeDuplicateReservation  = "DUPLICATE_RESERVATION"
	ErrCodeUserNotFound          = "USER_NOT_FOUND"
	ErrCodeDuplicateUser         = "DUPLICATE_USER"
	ErrCodeStillReferenced       = "STILL_REFERENCED"
	ErrCodeIncorrectPassword     = "INCORRECT_PASSWORD"
	ErrCodeUnauthenticated       = "UNAUTHENTICATED"
	ErrCodeForbidden             = "FORBIDDEN"
	ErrCodeUserAlreadyLinked     = "USER_ALREADY_LINKED"
	ErrCodeCodeSpaceExhausted    = "CODE_GENERATION_FAILED"
	ErrCodeDatabaseError         = "DATABASE_ERROR"
	ErrCodeCacheError            = "CACHE_ERROR"
)

// Wrap common errors with business context

func WrapValidation(fields map[string]string) *BusinessError {
	e := NewBusinessError(ErrCodeValidation, "Validation failed", KindValidation, ErrInvalidArgument)
	e.Fields = fields
	return e
}

func WrapInvalidArgument(message string) *BusinessError {
	return NewBusinessError(ErrCodeInvalidArgument, message, KindValidation, ErrInvalidArgument)
}

func WrapDuplicateIsbn(isbn string) *BusinessError {
	return NewBusinessError(
		ErrCodeDuplicateIsbn,
		fmt.Sprintf("A book with ISBN %s already exists", isbn),
		KindConflict,
		ErrDuplicateIsbn,
	)
}

func WrapNotAvailable(bookID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeNotAvailable,
		fmt.Sprintf("Book %d has no available copies", bookID),
		KindConflict,
		ErrNotAvailable,
	)
}

func WrapBookNotAvailable(bookID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeBookNotAvailable,
		fmt.Sprintf("Book %d is not available for issue", bookID),
		KindConflict,
		ErrBookNotAvailable,
	)
}

func WrapBookNotFound(bookID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeBookNotFound,
		fmt.Sprintf("Book with ID %d not found", bookID),
		KindNotFound,
		ErrBookNotFound,
	)
}

func WrapCustomerNotFound(customerID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeCustomerNotFound,
		fmt.Sprintf("Customer with ID %d not found", customerID),
		KindNotFound,
		ErrCustomerNotFound,
	)
}

func WrapMembershipExpired(customerID int64, expiry time.Time) *BusinessError {
	return NewBusinessError(
		ErrCodeMembershipExpired,
		fmt.Sprintf("Membership of customer %d expired on %s", customerID, expiry.Format(time.DateOnly)),
		KindMembershipExpired,
		ErrMembershipExpired,
	)
}

func WrapBorrowLimitExceeded(customerID int64, limit int) *BusinessError {
	return NewBusinessError(
		ErrCodeBorrowLimitExceeded,
		fmt.Sprintf("Customer %d already has %d books issued", customerID, limit),
		KindConflict,
		ErrBorrowLimitExceeded,
	)
}

func WrapLoanNotOpenOrNotFound(loanID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotOpenOrNotFound,
		fmt.Sprintf("Loan with ID %d not found or already returned", loanID),
		KindConflict,
		ErrLoanNotOpenOrNotFound,
	)
}

func WrapPassSuspended(customerID int64) *BusinessError {
	return NewBusinessError(
		ErrCodePassSuspended,
		fmt.Sprintf("Customer %d has a suspended library pass", customerID),
		KindConflict,
		ErrPassSuspended,
	)
}

func WrapPassNotFound(passID int64) *BusinessError {
	return NewBusinessError(
		ErrCodePassNotFound,
		fmt.Sprintf("Library pass with ID %d not found", passID),
		KindNotFound,
		ErrPassNotFound,
	)
}

func WrapReservationNotFound(reservationID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeReservationNotFound,
		fmt.Sprintf("Reservation with ID %d not found", reservationID),
		KindNotFound,
		ErrReservationNotFound,
	)
}

func WrapReservationNotPending(reservationID int64, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeReservationNotPending,
		fmt.Sprintf("Reservation %d is already %s", reservationID, status),
		KindConflict,
		ErrReservationNotPending,
	)
}

func WrapDuplicateReservation(bookID, customerID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeDuplicateReservation,
		fmt.Sprintf("Customer %d already has a pending reservation for book %d", customerID, bookID),
		KindConflict,
		ErrDuplicateReservation,
	)
}

func WrapUserNotFound(userID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeUserNotFound,
		fmt.Sprintf("User with ID %d not found", userID),
		KindNotFound,
		ErrUserNotFound,
	)
}

func WrapDuplicateUser(field string) *BusinessError {
	return NewBusinessError(
		ErrCodeDuplicateUser,
		fmt.Sprintf("A user with this %s already exists", field),
		KindConflict,
		ErrDuplicateUser,
	)
}

func WrapUserAlreadyLinked(userID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeUserAlreadyLinked,
		fmt.Sprintf("User %d is already linked to a customer", userID),
		KindConflict,
		ErrUserAlreadyLinked,
	)
}

func WrapCodeSpaceExhausted(prefix string, attempts int) *BusinessError {
	return NewBusinessError(
		ErrCodeCodeSpaceExhausted,
		fmt.Sprintf("Could not generate a unique %s code after %d attempts", prefix, attempts),
		KindConflict,
		ErrCodeSpaceExhausted,
	)
}

func WrapStillReferenced(entity string, id int64) *BusinessError {
	return NewBusinessError(
		ErrCodeStillReferenced,
		fmt.Sprintf("%s %d is still referenced by loans or fines", entity, id),
		KindConflict,
		ErrStillReferenced,
	)
}

func WrapIncorrectPassword() *BusinessError {
	return NewBusinessError(ErrCodeIncorrectPassword, "Current password is incorrect", KindValidation, ErrIncorrectPassword)
}

func WrapUnauthenticated() *BusinessError {
	return NewBusinessError(ErrCodeUnauthenticated, "Authentication required", KindUnauthenticated, ErrUnauthenticated)
}

func WrapForbidden(required string) *BusinessError {
	return NewBusinessError(
		ErrCodeForbidden,
		fmt.Sprintf("This operation requires the %s role", required),
		KindForbidden,
		ErrForbidden,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		KindPersistence,
		errors.Join(ErrPersistence, err),
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		KindPersistence,
		err,
	)
}
