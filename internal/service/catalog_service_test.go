package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/internal/mocks"
	customError "github.com/segyhp/library-engine/pkg/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCatalog() (*CatalogService, *mocks.Repositories, *mocks.Transactor) {
	m, tx := newMocks()
	svc := NewCatalogService(m.Bundle(), tx, testLogger())
	svc.now = fixedClock
	return svc, m, tx
}

func bookRequest() *domain.CreateBookRequest {
	return &domain.CreateBookRequest{
		ISBN:        " 978-0441172719 ",
		Title:       "Dune",
		Author:      "Frank Herbert",
		Genre:       "Science Fiction",
		TotalCopies: 3,
		Price:       decimal.RequireFromString("9.99"),
	}
}

func TestAddBook_Success(t *testing.T) {
	svc, m, _ := newCatalog()

	m.Books.On("GetByISBN", mock.Anything, "978-0441172719").Return(nil, sql.ErrNoRows)
	m.Books.On("Create", mock.Anything, mock.MatchedBy(func(b *domain.Book) bool {
		return b.TotalCopies == 3 && b.AvailableCopies == 3 && *b.Genre == "Science Fiction"
	})).Return(nil)

	book, err := svc.AddBook(context.Background(), librarianAuth, bookRequest())

	require.NoError(t, err)
	assert.Equal(t, "978-0441172719", book.ISBN)
	assert.Equal(t, 3, book.AvailableCopies)
	m.AssertExpectations(t)
}

func TestAddBook_DuplicateIsbn(t *testing.T) {
	t.Run("found by lookup", func(t *testing.T) {
		svc, m, _ := newCatalog()
		m.Books.On("GetByISBN", mock.Anything, "978-0441172719").Return(&domain.Book{ID: 4}, nil)

		_, err := svc.AddBook(context.Background(), librarianAuth, bookRequest())

		assert.True(t, errors.Is(err, customError.ErrDuplicateIsbn))
		m.Books.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("lost the race on insert", func(t *testing.T) {
		svc, m, _ := newCatalog()
		m.Books.On("GetByISBN", mock.Anything, "978-0441172719").Return(nil, sql.ErrNoRows)
		m.Books.On("Create", mock.Anything, mock.Anything).Return(uniqueViolation(isbnConstraint))

		_, err := svc.AddBook(context.Background(), librarianAuth, bookRequest())

		assert.True(t, errors.Is(err, customError.ErrDuplicateIsbn))
		assert.Equal(t, customError.KindConflict, customError.KindOf(err))
	})
}

func TestAddBook_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *domain.CreateBookRequest)
	}{
		{"no isbn", func(r *domain.CreateBookRequest) { r.ISBN = "  " }},
		{"no title", func(r *domain.CreateBookRequest) { r.Title = "" }},
		{"no author", func(r *domain.CreateBookRequest) { r.Author = "" }},
		{"zero copies", func(r *domain.CreateBookRequest) { r.TotalCopies = 0 }},
		{"negative price", func(r *domain.CreateBookRequest) { r.Price = decimal.RequireFromString("-0.01") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m, _ := newCatalog()
			req := bookRequest()
			tt.mutate(req)

			_, err := svc.AddBook(context.Background(), librarianAuth, req)

			assert.True(t, errors.Is(err, customError.ErrInvalidArgument))
			assert.Equal(t, customError.KindValidation, customError.KindOf(err))
			m.AssertExpectations(t)
		})
	}
}

func TestAddBook_MemberForbidden(t *testing.T) {
	svc, _, _ := newCatalog()

	_, err := svc.AddBook(context.Background(), memberAuth, bookRequest())
	assert.True(t, errors.Is(err, customError.ErrForbidden))
}

func TestSearchBooks_Paging(t *testing.T) {
	svc, m, _ := newCatalog()
	books := []*domain.Book{{ID: 1}, {ID: 2}}

	m.Books.On("Search", mock.Anything, domain.BookFilter{Query: "dune", Page: 1, PageSize: 10}).Return(books, 21, nil)

	page, err := svc.SearchBooks(context.Background(), librarianAuth, domain.BookFilter{Query: " dune ", Page: 0})

	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 21, page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)
}

func TestBrowseBooks_MatchesDescriptions(t *testing.T) {
	svc, m, _ := newCatalog()

	m.Books.On("Search", mock.Anything, domain.BookFilter{Genre: "Poetry", IncludeDescription: true, Page: 2, PageSize: 12}).
		Return(nil, 0, nil)

	page, err := svc.BrowseBooks(context.Background(), memberAuth, domain.BookFilter{Genre: "Poetry", Page: 2})

	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestGetBook(t *testing.T) {
	svc, m, _ := newCatalog()
	loan := &domain.LoanView{Loan: *openLoan()}

	m.Books.On("GetByID", mock.Anything, int64(1)).Return(&domain.Book{ID: 1, Title: "Dune"}, nil)
	m.Loans.On("ListRecentByBook", mock.Anything, int64(1), 10).Return([]*domain.LoanView{loan}, nil)
	m.Reservations.On("ListPendingByBook", mock.Anything, int64(1)).Return([]*domain.ReservationView{}, nil)

	detail, err := svc.GetBook(context.Background(), memberAuth, 1)

	require.NoError(t, err)
	assert.Equal(t, "Dune", detail.Book.Title)
	assert.Equal(t, domain.LoanStatusOverdue, detail.RecentLoans[0].DisplayStatus)
}

func TestGetBook_NotFound(t *testing.T) {
	svc, m, _ := newCatalog()
	m.Books.On("GetByID", mock.Anything, int64(9)).Return(nil, sql.ErrNoRows)

	_, err := svc.GetBook(context.Background(), memberAuth, 9)
	assert.True(t, errors.Is(err, customError.ErrBookNotFound))
}

func TestUpdateBook_ShiftsAvailability(t *testing.T) {
	tests := []struct {
		name          string
		available     int
		newTotal      int
		wantAvailable int
		wantErr       error
	}{
		{name: "add copies", available: 2, newTotal: 5, wantAvailable: 4},
		{name: "remove shelved copies", available: 2, newTotal: 2, wantAvailable: 1},
		{name: "down to copies on loan", available: 1, newTotal: 2, wantAvailable: 0},
		{name: "remove copies on loan", available: 1, newTotal: 1, wantErr: customError.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m, tx := newCatalog()
			current := &domain.Book{ID: 1, ISBN: "978-0441172719", TotalCopies: 3, AvailableCopies: tt.available}

			m.Books.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(current, nil)
			if tt.wantErr == nil {
				m.Books.On("Update", mock.Anything, mock.Anything).Return(nil)
			}

			req := domain.UpdateBookRequest(*bookRequest())
			req.TotalCopies = tt.newTotal
			book, err := svc.UpdateBook(context.Background(), librarianAuth, 1, &req)

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.Equal(t, 0, tx.Commits)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAvailable, book.AvailableCopies)
			assert.Equal(t, tt.newTotal, book.TotalCopies)
			m.AssertExpectations(t)
		})
	}
}

func TestUpdateBook_IsbnTakenByAnother(t *testing.T) {
	svc, m, _ := newCatalog()

	m.Books.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(&domain.Book{ID: 1, ISBN: "111", TotalCopies: 3, AvailableCopies: 3}, nil)
	m.Books.On("GetByISBN", mock.Anything, "978-0441172719").Return(&domain.Book{ID: 2}, nil)

	req := domain.UpdateBookRequest(*bookRequest())
	_, err := svc.UpdateBook(context.Background(), librarianAuth, 1, &req)

	assert.True(t, errors.Is(err, customError.ErrDuplicateIsbn))
	m.Books.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeleteBook(t *testing.T) {
	t.Run("never lent", func(t *testing.T) {
		svc, m, _ := newCatalog()
		m.Books.On("GetByID", mock.Anything, int64(1)).Return(&domain.Book{ID: 1}, nil)
		m.Loans.On("CountByBook", mock.Anything, int64(1)).Return(0, nil)
		m.Books.On("Delete", mock.Anything, int64(1)).Return(nil)

		require.NoError(t, svc.DeleteBook(context.Background(), librarianAuth, 1))
		m.AssertExpectations(t)
	})

	t.Run("has loan history", func(t *testing.T) {
		svc, m, _ := newCatalog()
		m.Books.On("GetByID", mock.Anything, int64(1)).Return(&domain.Book{ID: 1}, nil)
		m.Loans.On("CountByBook", mock.Anything, int64(1)).Return(2, nil)

		err := svc.DeleteBook(context.Background(), librarianAuth, 1)

		assert.True(t, errors.Is(err, customError.ErrStillReferenced))
		m.Books.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("missing", func(t *testing.T) {
		svc, m, _ := newCatalog()
		m.Books.On("GetByID", mock.Anything, int64(1)).Return(nil, sql.ErrNoRows)

		err := svc.DeleteBook(context.Background(), librarianAuth, 1)
		assert.True(t, errors.Is(err, customError.ErrBookNotFound))
	})
}

func TestListGenres_NeverNil(t *testing.T) {
	svc, m, _ := newCatalog()
	m.Books.On("Genres", mock.Anything).Return(nil, nil)

	genres, err := svc.ListGenres(context.Background(), memberAuth)

	require.NoError(t, err)
	assert.NotNil(t, genres)
}
