package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/internal/mocks"
	customError "github.com/segyhp/library-engine/pkg/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type testServer struct {
	handler      http.Handler
	catalog      *mocks.MockCatalogService
	membership   *mocks.MockMembershipService
	circulation  *mocks.MockCirculationService
	reservations *mocks.MockReservationService
	passes       *mocks.MockPassService
	users        *mocks.MockUserService
	dashboard    *mocks.MockDashboardService
}

func newTestServer(db Pinger) *testServer {
	s := &testServer{
		catalog:      &mocks.MockCatalogService{},
		membership:   &mocks.MockMembershipService{},
		circulation:  &mocks.MockCirculationService{},
		reservations: &mocks.MockReservationService{},
		passes:       &mocks.MockPassService{},
		users:        &mocks.MockUserService{},
		dashboard:    &mocks.MockDashboardService{},
	}
	if db == nil {
		db = fakePinger{}
	}
	s.handler = NewRouter(Handlers{
		Health:       NewHealthHandler(db, nil, time.Second),
		Books:        NewBookHandler(s.catalog, s.reservations),
		Customers:    NewCustomerHandler(s.membership, s.reservations),
		Loans:        NewLoanHandler(s.circulation),
		Reservations: NewReservationHandler(s.reservations),
		Passes:       NewPassHandler(s.passes),
		Users:        NewUserHandler(s.users),
		Dashboard:    NewDashboardHandler(s.dashboard),
	}, slog.New(slog.DiscardHandler))
	return s
}

var (
	librarian = domain.AuthContext{UserID: 10, Role: domain.RoleLibrarian}
	member    = domain.AuthContext{UserID: 20, Role: domain.RoleMember}
)

func (s *testServer) do(method, path, body string, auth domain.AuthContext) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if auth.IsAuthenticated() {
		req.Header.Set(UserIDHeader, fmt.Sprint(auth.UserID))
		req.Header.Set(UserRoleHeader, string(auth.Role))
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
	Data    json.RawMessage   `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestCreateBook(t *testing.T) {
	s := newTestServer(nil)
	s.catalog.On("AddBook", mock.Anything, librarian, mock.MatchedBy(func(r *domain.CreateBookRequest) bool {
		return r.ISBN == "978-0441172719" && r.TotalCopies == 2 && r.Price.Equal(decimal.RequireFromString("9.99"))
	})).Return(&domain.Book{ID: 1, ISBN: "978-0441172719", TotalCopies: 2, AvailableCopies: 2}, nil)

	rec := s.do(http.MethodPost, "/api/v1/books",
		`{"isbn":"978-0441172719","title":"Dune","author":"Frank Herbert","total_copies":2,"price":"9.99"}`, librarian)

	assert.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	var book domain.Book
	require.NoError(t, json.Unmarshal(env.Data, &book))
	assert.Equal(t, 2, book.AvailableCopies)
	s.catalog.AssertExpectations(t)
}

func TestCreateBook_ValidationEchoesInput(t *testing.T) {
	s := newTestServer(nil)

	rec := s.do(http.MethodPost, "/api/v1/books",
		`{"isbn":"978-0441172719","author":"Frank Herbert","total_copies":0,"price":"-1"}`, librarian)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, customError.ErrCodeValidation, env.Error)
	assert.Equal(t, "is required", env.Fields["title"])
	assert.Contains(t, env.Fields, "total_copies")
	assert.Equal(t, "must be at least 0", env.Fields["price"])

	var echoed domain.CreateBookRequest
	require.NoError(t, json.Unmarshal(env.Data, &echoed))
	assert.Equal(t, "978-0441172719", echoed.ISBN)
	s.catalog.AssertNotCalled(t, "AddBook", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBook_MalformedJSON(t *testing.T) {
	s := newTestServer(nil)

	rec := s.do(http.MethodPost, "/api/v1/books", `{"isbn":`, librarian)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, customError.ErrCodeInvalidArgument, decodeEnvelope(t, rec).Error)
}

func TestIdentity(t *testing.T) {
	t.Run("malformed headers are rejected", func(t *testing.T) {
		s := newTestServer(nil)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
		req.Header.Set(UserIDHeader, "abc")
		req.Header.Set(UserRoleHeader, "librarian")
		rec := httptest.NewRecorder()

		s.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		s.dashboard.AssertNotCalled(t, "Stats", mock.Anything, mock.Anything)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		s := newTestServer(nil)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
		req.Header.Set(UserIDHeader, "5")
		req.Header.Set(UserRoleHeader, "superuser")
		rec := httptest.NewRecorder()

		s.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("anonymous reaches the service", func(t *testing.T) {
		s := newTestServer(nil)
		s.dashboard.On("Stats", mock.Anything, domain.AuthContext{}).Return(nil, customError.WrapUnauthenticated())

		rec := s.do(http.MethodGet, "/api/v1/dashboard", "", domain.AuthContext{})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		s.dashboard.AssertExpectations(t)
	})
}

func TestRoutes_BrowseIsNotAnID(t *testing.T) {
	s := newTestServer(nil)
	s.catalog.On("BrowseBooks", mock.Anything, member, domain.BookFilter{Query: "dune", Page: 2}).
		Return(domain.NewPage([]*domain.Book{}, 2, 12, 0), nil)

	rec := s.do(http.MethodGet, "/api/v1/books/browse?q=dune&page=2", "", member)

	assert.Equal(t, http.StatusOK, rec.Code)
	s.catalog.AssertExpectations(t)
	s.catalog.AssertNotCalled(t, "GetBook", mock.Anything, mock.Anything, mock.Anything)
}

func TestIssueLoan_ErrorKinds(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"membership expired", customError.WrapMembershipExpired(7, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), http.StatusUnprocessableEntity},
		{"book not available", customError.WrapBookNotAvailable(1), http.StatusConflict},
		{"customer missing", customError.WrapCustomerNotFound(7), http.StatusNotFound},
		{"member not allowed", customError.WrapForbidden("librarian"), http.StatusForbidden},
		{"store down", customError.WrapDatabaseError(errors.New("dial tcp: refused")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(nil)
			s.circulation.On("IssueLoan", mock.Anything, librarian, mock.Anything).Return(nil, tt.err)

			rec := s.do(http.MethodPost, "/api/v1/loans", `{"book_id":1,"customer_id":7}`, librarian)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.False(t, decodeEnvelope(t, rec).Success)
			assert.NotContains(t, rec.Body.String(), "dial tcp")
		})
	}
}

func TestIssueLoan_ExplicitDates(t *testing.T) {
	s := newTestServer(nil)
	s.circulation.On("IssueLoan", mock.Anything, librarian, mock.MatchedBy(func(r *domain.IssueLoanRequest) bool {
		return r.DueDate != nil && r.DueDate.Format(time.DateOnly) == "2024-02-01" && r.IssueDate == nil
	})).Return(&domain.Loan{ID: 3}, nil)

	rec := s.do(http.MethodPost, "/api/v1/loans", `{"book_id":1,"customer_id":7,"due_date":"2024-02-01"}`, librarian)

	assert.Equal(t, http.StatusCreated, rec.Code)
	s.circulation.AssertExpectations(t)
}

func TestReturnLoan_FineAmount(t *testing.T) {
	t.Run("empty body computes the fine", func(t *testing.T) {
		s := newTestServer(nil)
		s.circulation.On("ReturnLoan", mock.Anything, librarian, int64(55), mock.MatchedBy(func(r *domain.ReturnLoanRequest) bool {
			return r.FineAmount == nil
		})).Return(&domain.ReturnLoanResponse{Loan: &domain.Loan{ID: 55}}, nil)

		rec := s.do(http.MethodPost, "/api/v1/loans/55/return", "", librarian)

		assert.Equal(t, http.StatusOK, rec.Code)
		s.circulation.AssertExpectations(t)
	})

	t.Run("explicit zero waives it", func(t *testing.T) {
		s := newTestServer(nil)
		s.circulation.On("ReturnLoan", mock.Anything, librarian, int64(55), mock.MatchedBy(func(r *domain.ReturnLoanRequest) bool {
			return r.FineAmount != nil && r.FineAmount.IsZero()
		})).Return(&domain.ReturnLoanResponse{Loan: &domain.Loan{ID: 55}}, nil)

		rec := s.do(http.MethodPost, "/api/v1/loans/55/return", `{"fine_amount":0}`, librarian)

		assert.Equal(t, http.StatusOK, rec.Code)
		s.circulation.AssertExpectations(t)
	})

	t.Run("unknown fine type fails validation", func(t *testing.T) {
		s := newTestServer(nil)

		rec := s.do(http.MethodPost, "/api/v1/loans/55/return", `{"fine_type":"parking"}`, librarian)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeEnvelope(t, rec).Fields, "fine_type")
	})
}

func TestListLoans_Query(t *testing.T) {
	s := newTestServer(nil)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.circulation.On("ListLoans", mock.Anything, librarian, mock.MatchedBy(func(f domain.LoanFilter) bool {
		return f.Status == "overdue" && f.DateFrom != nil && f.DateFrom.Equal(from) && f.DateTo == nil && f.PageSize == 5
	})).Return(domain.NewPage([]*domain.LoanView{}, 1, 5, 0), nil)

	rec := s.do(http.MethodGet, "/api/v1/loans?status=overdue&date_from=2024-01-01&page_size=5", "", librarian)

	assert.Equal(t, http.StatusOK, rec.Code)
	s.circulation.AssertExpectations(t)
}

func TestListLoans_BadDate(t *testing.T) {
	s := newTestServer(nil)

	rec := s.do(http.MethodGet, "/api/v1/loans?date_to=01/02/2024", "", librarian)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	s.circulation.AssertNotCalled(t, "ListLoans", mock.Anything, mock.Anything, mock.Anything)
}

func TestPreviewFine(t *testing.T) {
	s := newTestServer(nil)
	s.circulation.On("PreviewReturn", mock.Anything, librarian, int64(55), mock.MatchedBy(func(asOf *time.Time) bool {
		return asOf != nil && asOf.Format(time.DateOnly) == "2024-01-20"
	})).Return(&domain.FinePreview{LoanID: 55, DaysOverdue: 5, SuggestedFine: decimal.RequireFromString("2.50")}, nil)

	rec := s.do(http.MethodGet, "/api/v1/loans/55/fine?as_of=2024-01-20", "", librarian)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"suggested_fine":"2.5"`)
}

func TestSetReservationStatus(t *testing.T) {
	s := newTestServer(nil)
	s.reservations.On("SetStatus", mock.Anything, member, int64(3), domain.ReservationCancelled).
		Return(&domain.Reservation{ID: 3, Status: domain.ReservationCancelled}, nil)

	rec := s.do(http.MethodPut, "/api/v1/reservations/3/status", `{"status":"cancelled"}`, member)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPut, "/api/v1/reservations/3/status", `{"status":"pending"}`, member)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	s.reservations.AssertNumberOfCalls(t, "SetStatus", 1)
}

func TestPassTransitions(t *testing.T) {
	s := newTestServer(nil)
	s.passes.On("Suspend", mock.Anything, librarian, int64(4)).Return(&domain.LibraryPass{ID: 4, Status: domain.PassStatusSuspended}, nil)
	s.passes.On("Activate", mock.Anything, librarian, int64(4)).Return(nil, customError.WrapPassNotFound(4))

	assert.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/v1/passes/4/suspend", "", librarian).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/v1/passes/4/activate", "", librarian).Code)
}

func TestCreateUser_PasswordNotEchoed(t *testing.T) {
	s := newTestServer(nil)
	admin := domain.AuthContext{UserID: 1, Role: domain.RoleAdmin}

	rec := s.do(http.MethodPost, "/api/v1/users",
		`{"username":"an","email":"not-an-email","password":"hunter22","first_name":"Ana","last_name":"Lima","role":"member"}`, admin)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Contains(t, env.Fields, "username")
	assert.Contains(t, env.Fields, "email")
	assert.NotContains(t, rec.Body.String(), "hunter22")
}

func TestChangePassword_Mismatch(t *testing.T) {
	s := newTestServer(nil)

	rec := s.do(http.MethodPut, "/api/v1/profile/password",
		`{"current_password":"old-secret","new_password":"new-secret","confirm_password":"other"}`, member)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "does not match", decodeEnvelope(t, rec).Fields["confirm_password"])
}

func TestDeleteCustomer_StillReferenced(t *testing.T) {
	s := newTestServer(nil)
	s.membership.On("DeleteCustomer", mock.Anything, librarian, int64(7)).Return(customError.WrapStillReferenced("Customer", 7))

	rec := s.do(http.MethodDelete, "/api/v1/customers/7", "", librarian)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, customError.ErrCodeStillReferenced, decodeEnvelope(t, rec).Error)
}

func TestHealth(t *testing.T) {
	s := newTestServer(nil)
	rec := s.do(http.MethodGet, "/health/ready", "", domain.AuthContext{})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	s = newTestServer(fakePinger{err: errors.New("connection refused")})
	rec = s.do(http.MethodGet, "/health/ready", "", domain.AuthContext{})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(nil)

	rec := s.do(http.MethodGet, "/api/v1/nope", "", librarian)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
