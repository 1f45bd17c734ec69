package domain

import "time"

// User is a login account. Members may be linked to a customer record.
type User struct {
	ID            int64     `json:"id" db:"id"`
	Username      string    `json:"username" db:"username"`
	Email         string    `json:"email" db:"email"`
	PasswordHash  string    `json:"-" db:"password"`
	FirstName     string    `json:"first_name" db:"first_name"`
	LastName      string    `json:"last_name" db:"last_name"`
	Phone         string    `json:"phone" db:"phone"`
	Address       string    `json:"address" db:"address"`
	Role          Role      `json:"role" db:"role"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CustomerCount int       `json:"customer_count" db:"customer_count"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

type UserFilter struct {
	Query    string
	Role     string
	Page     int
	PageSize int
}

type CreateUserRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email,max=100"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name" validate:"required,max=50"`
	Role      string `json:"role" validate:"required,oneof=member librarian admin"`
	Phone     string `json:"phone" validate:"max=20"`
	Address   string `json:"address"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email,max=100"`
	Phone     string `json:"phone" validate:"max=20"`
	Address   string `json:"address"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

type Profile struct {
	User               *User              `json:"user"`
	Customer           *Customer          `json:"customer,omitempty"`
	RecentLoans        []*LoanView        `json:"recent_loans"`
	ActiveReservations []*ReservationView `json:"active_reservations"`
}
