package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/internal/mocks"
	customError "github.com/segyhp/library-engine/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUsers() (*UserService, *mocks.Repositories) {
	m, _ := newMocks()
	svc := NewUserService(m.Bundle(), testLogger())
	svc.hashCost = bcrypt.MinCost
	svc.now = fixedClock
	return svc, m
}

func userRequest() *domain.CreateUserRequest {
	return &domain.CreateUserRequest{
		Username:  "ana",
		Email:     "ana@example.com",
		Password:  "secret123",
		FirstName: "Ana",
		LastName:  "Lima",
		Role:      "librarian",
	}
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestCreateUser_HashesPassword(t *testing.T) {
	svc, m := newUsers()

	m.Users.On("ExistsByUsername", mock.Anything, "ana").Return(false, nil)
	m.Users.On("ExistsByEmail", mock.Anything, "ana@example.com", int64(0)).Return(false, nil)
	m.Users.On("Create", mock.Anything, mock.Anything).Return(nil)

	user, err := svc.CreateUser(context.Background(), adminAuth, userRequest())

	require.NoError(t, err)
	assert.Equal(t, domain.RoleLibrarian, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
}

func TestCreateUser_Conflicts(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *mocks.Repositories)
	}{
		{
			name: "username taken",
			setup: func(m *mocks.Repositories) {
				m.Users.On("ExistsByUsername", mock.Anything, "ana").Return(true, nil)
			},
		},
		{
			name: "email taken",
			setup: func(m *mocks.Repositories) {
				m.Users.On("ExistsByUsername", mock.Anything, "ana").Return(false, nil)
				m.Users.On("ExistsByEmail", mock.Anything, "ana@example.com", int64(0)).Return(true, nil)
			},
		},
		{
			name: "raced on insert",
			setup: func(m *mocks.Repositories) {
				m.Users.On("ExistsByUsername", mock.Anything, "ana").Return(false, nil)
				m.Users.On("ExistsByEmail", mock.Anything, "ana@example.com", int64(0)).Return(false, nil)
				m.Users.On("Create", mock.Anything, mock.Anything).Return(uniqueViolation(emailConstraint))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newUsers()
			tt.setup(m)

			_, err := svc.CreateUser(context.Background(), adminAuth, userRequest())

			assert.True(t, errors.Is(err, customError.ErrDuplicateUser), "got %v", err)
			m.AssertExpectations(t)
		})
	}
}

func TestCreateUser_Validation(t *testing.T) {
	svc, _ := newUsers()

	req := userRequest()
	req.Role = "owner"
	_, err := svc.CreateUser(context.Background(), adminAuth, req)
	assert.True(t, errors.Is(err, customError.ErrInvalidArgument))

	req = userRequest()
	req.Password = "short"
	_, err = svc.CreateUser(context.Background(), adminAuth, req)
	assert.True(t, errors.Is(err, customError.ErrInvalidArgument))

	_, err = svc.CreateUser(context.Background(), librarianAuth, userRequest())
	assert.True(t, errors.Is(err, customError.ErrForbidden))
}

func TestSetActive(t *testing.T) {
	svc, m := newUsers()

	_, err := svc.SetActive(context.Background(), adminAuth, adminAuth.UserID, false)
	assert.True(t, errors.Is(err, customError.ErrInvalidArgument))

	m.Users.On("GetByID", mock.Anything, int64(20)).Return(&domain.User{ID: 20, IsActive: true}, nil)
	m.Users.On("SetActive", mock.Anything, int64(20), false).Return(nil)

	user, err := svc.SetActive(context.Background(), adminAuth, 20, false)
	require.NoError(t, err)
	assert.False(t, user.IsActive)
}

func TestGetProfile(t *testing.T) {
	t.Run("member with customer record", func(t *testing.T) {
		svc, m := newUsers()
		m.Users.On("GetByID", mock.Anything, memberAuth.UserID).Return(&domain.User{ID: memberAuth.UserID}, nil)
		m.Customers.On("GetByUserID", mock.Anything, memberAuth.UserID).Return(&domain.Customer{ID: 7}, nil)
		m.Loans.On("ListRecentByCustomer", mock.Anything, int64(7), 10).Return([]*domain.LoanView{{Loan: *openLoan()}}, nil)
		m.Reservations.On("ListPendingByCustomer", mock.Anything, int64(7)).Return(nil, nil)

		profile, err := svc.GetProfile(context.Background(), memberAuth)

		require.NoError(t, err)
		assert.Equal(t, int64(7), profile.Customer.ID)
		require.Len(t, profile.RecentLoans, 1)
		assert.Equal(t, domain.LoanStatusOverdue, profile.RecentLoans[0].DisplayStatus)
		assert.NotNil(t, profile.ActiveReservations)
	})

	t.Run("staff without customer record", func(t *testing.T) {
		svc, m := newUsers()
		m.Users.On("GetByID", mock.Anything, librarianAuth.UserID).Return(&domain.User{ID: librarianAuth.UserID}, nil)
		m.Customers.On("GetByUserID", mock.Anything, librarianAuth.UserID).Return(nil, sql.ErrNoRows)

		profile, err := svc.GetProfile(context.Background(), librarianAuth)

		require.NoError(t, err)
		assert.Nil(t, profile.Customer)
		assert.Empty(t, profile.RecentLoans)
	})
}

func TestUpdateProfile_EmailTaken(t *testing.T) {
	svc, m := newUsers()
	m.Users.On("GetByID", mock.Anything, memberAuth.UserID).Return(&domain.User{ID: memberAuth.UserID}, nil)
	m.Users.On("ExistsByEmail", mock.Anything, "taken@example.com", memberAuth.UserID).Return(true, nil)

	_, err := svc.UpdateProfile(context.Background(), memberAuth, &domain.UpdateProfileRequest{
		FirstName: "Ana", LastName: "Lima", Email: "taken@example.com",
	})

	assert.True(t, errors.Is(err, customError.ErrDuplicateUser))
	m.Users.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
}

func TestChangePassword(t *testing.T) {
	tests := []struct {
		name    string
		req     *domain.ChangePasswordRequest
		wantErr error
	}{
		{
			name: "success",
			req:  &domain.ChangePasswordRequest{CurrentPassword: "old-secret", NewPassword: "new-secret", ConfirmPassword: "new-secret"},
		},
		{
			name:    "wrong current password",
			req:     &domain.ChangePasswordRequest{CurrentPassword: "guess", NewPassword: "new-secret", ConfirmPassword: "new-secret"},
			wantErr: customError.ErrIncorrectPassword,
		},
		{
			name:    "confirmation mismatch",
			req:     &domain.ChangePasswordRequest{CurrentPassword: "old-secret", NewPassword: "new-secret", ConfirmPassword: "new-secrett"},
			wantErr: customError.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newUsers()
			m.Users.On("GetByID", mock.Anything, memberAuth.UserID).
				Return(&domain.User{ID: memberAuth.UserID, PasswordHash: hashed(t, "old-secret")}, nil).Maybe()

			var stored string
			m.Users.On("UpdatePassword", mock.Anything, memberAuth.UserID, mock.AnythingOfType("string")).
				Run(func(args mock.Arguments) { stored = args.String(2) }).
				Return(nil).Maybe()

			err := svc.ChangePassword(context.Background(), memberAuth, tt.req)

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				m.Users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte("new-secret")))
		})
	}
}
