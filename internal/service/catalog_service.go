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
)

type CatalogService struct {
	repos  *repository.Repositories
	tx     repository.Transactor
	logger *slog.Logger
	now    func() time.Time
}

func NewCatalogService(repos *repository.Repositories, tx repository.Transactor, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repos:  repos,
		tx:     tx,
		logger: orDefault(logger),
		now:    time.Now,
	}
}

// AddBook catalogs a new title with all of its copies on the shelf
func (s *CatalogService) AddBook(ctx context.Context, auth domain.AuthContext, req *domain.CreateBookRequest) (*domain.Book, error) {
	if err := auth.Require(domain.RoleLibrarian); err != nil {
		return nil, err
	}

	book, err := bookFromRequest(req)
	if err != nil {
		return nil, err
	}
	book.AvailableCopies = book.TotalCopies

	_, err = s.repos.Books.GetByISBN(ctx, book.ISBN)
	if err == nil {
		return nil, customError.WrapDuplicateIsbn(book.ISBN)
	}
	if !isNotFound(err) {
		return nil, storeError(ctx, s.logger, "books.get_by_isbn", err)
	}

	if err := s.repos.Books.Create(ctx, book); err != nil {
		if name, ok := repository.UniqueViolation(err); ok && name == isbnConstraint {
			return nil, customError.WrapDuplicateIsbn(book.ISBN)
		}
		return nil, storeError(ctx, s.logger, "books.create", err)
	}

	s.logger.InfoContext(ctx, "book added", "book_id", book.ID, "isbn", book.ISBN, "copies", book.TotalCopies)
	return book, nil
}

// SearchBooks is the staff catalog listing over title, author and isbn
func (s *CatalogService) SearchBooks(ctx context.Context, auth domain.AuthContext, filter domain.BookFilter) (*domain.Page[*domain.Book], error) {
	if err := auth.Require(domain.RoleLibrarian); err != nil {
		return nil, err
	}
	filter.IncludeDescription = false
	return s.search(ctx, filter, searchPageSize)
}

// BrowseBooks is the member catalog listing, which also matches descriptions
func (s *CatalogService) BrowseBooks(ctx context.Context, auth domain.AuthContext, filter domain.BookFilter) (*domain.Page[*domain.Book], error) {
	if err := auth.Require(domain.RoleMember); err != nil {
		return nil, err
	}
	filter.IncludeDescription = true
	return s.search(ctx, filter, browsePageSize)
}

func (s *CatalogService) search(ctx context.Context, filter domain.BookFilter, defaultSize int) (*domain.Page[*domain.Book], error) {
	filter.Query = strings.TrimSpace(filter.Query)
	filter.Page, filter.PageSize = utils.NormalizePage(filter.Page, filter.PageSize, defaultSize)

	books, total, err := s.repos.Books.Search(ctx, filter)
	if err != nil {
		return nil, storeError(ctx, s.logger, "books.search", err)
	}
	return domain.NewPage(books, filter.Page, filter.PageSize, total), nil
}

func (s *CatalogService) GetBook(ctx context.Context, auth domain.AuthContext, id int64) (*domain.BookDetail, error) {
	if err := auth.Require(domain.RoleMember); err != nil {
		return nil, err
	}

	book, err := s.repos.Books.GetByID(ctx, id)
	if isNotFound(err) {
		return nil, customError.WrapBookNotFound(id)
	}
	if err != nil {
		return nil, storeError(ctx, s.logger, "books.get", err)
	}

	loans, err := s.repos.Loans.ListRecentByBook(ctx, id, recentLoanLimit)
	if err != nil {
		return nil, storeError(ctx, s.logger, "loans.list_recent_by_book", err)
	}

	reservations, err := s.repos.Reservations.ListPendingByBook(ctx, id)
	if err != nil {
		return nil, storeError(ctx, s.logger, "reservations.list_pending_by_book", err)
	}

	return &domain.BookDetail{
		Book:                book,
		RecentLoans:         withDisplayStatus(loans, utils.DateOnly(s.now())),
		PendingReservations: reservations,
	}, nil
}

// UpdateBook edits the catalog entry. A change of total copies shifts the
// available copies by the same amount.
func (s *CatalogService) UpdateBook(ctx context.Context, auth domain.AuthContext, id int64, req *domain.UpdateBookRequest) (*domain.Book, error) {
	if err := auth.Require(domain.RoleLibrarian); err != nil {
		return nil, err
	}

	changes, err := bookFromRequest((*domain.CreateBookRequest)(req))
	if err != nil {
		return nil, err
	}

	var updated *domain.Book
	err = s.tx.WithinTx(ctx, func(repos *repository.Repositories) error {
		book, err := repos.Books.GetByIDForUpdate(ctx, id)
		if isNotFound(err) {
			return customError.WrapBookNotFound(id)
		}
		if err != nil {
			return err
		}

		if changes.ISBN != book.ISBN {
			other, err := repos.Books.GetByISBN(ctx, changes.ISBN)
			if err == nil && other.ID != id {
				return customError.WrapDuplicateIsbn(changes.ISBN)
			}
			if err != nil && !isNotFound(err) {
				return err
			}
		}

		available := book.AvailableCopies + changes.TotalCopies - book.TotalCopies
		if available < 0 {
			return customError.WrapInvalidArgument("total copies cannot drop below the number of copies on loan")
		}

		changes.ID = book.ID
		changes.AvailableCopies = available
		changes.CreatedAt = book.CreatedAt
		if err := repos.Books.Update(ctx, changes); err != nil {
			if name, ok := repository.UniqueViolation(err); ok && name == isbnConstraint {
				return customError.WrapDuplicateIsbn(changes.ISBN)
			}
			return err
		}
		updated = changes
		return nil
	})
	if err != nil {
		return nil, storeError(ctx, s.logger, "books.update", err)
	}

	return updated, nil
}

// DeleteBook removes a title that has never been lent out
func (s *CatalogService) DeleteBook(ctx context.Context, auth domain.AuthContext, id int64) error {
	if err := auth.Require(domain.RoleLibrarian); err != nil {
		return err
	}

	if _, err := s.repos.Books.GetByID(ctx, id); err != nil {
		if isNotFound(err) {
			return customError.WrapBookNotFound(id)
		}
		return storeError(ctx, s.logger, "books.get", err)
	}

	loans, err := s.repos.Loans.CountByBook(ctx, id)
	if err != nil {
		return storeError(ctx, s.logger, "loans.count_by_book", err)
	}
	if loans > 0 {
		return customError.WrapStillReferenced("Book", id)
	}

	if err := s.repos.Books.Delete(ctx, id); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return customError.WrapStillReferenced("Book", id)
		}
		return storeError(ctx, s.logger, "books.delete", err)
	}

	s.logger.InfoContext(ctx, "book deleted", "book_id", id)
	return nil
}

func (s *CatalogService) ListGenres(ctx context.Context, auth domain.AuthContext) ([]string, error) {
	if err := auth.Require(domain.RoleMember); err != nil {
		return nil, err
	}

	genres, err := s.repos.Books.Genres(ctx)
	if err != nil {
		return nil, storeError(ctx, s.logger, "books.genres", err)
	}
	if genres == nil {
		genres = []string{}
	}
	return genres, nil
}

func bookFromRequest(req *domain.CreateBookRequest) (*domain.Book, error) {
	if req == nil {
		return nil, customError.WrapInvalidArgument("book details are required")
	}

	book := &domain.Book{
		ISBN:            strings.TrimSpace(req.ISBN),
		Title:           strings.TrimSpace(req.Title),
		Author:          strings.TrimSpace(req.Author),
		Publisher:       strings.TrimSpace(req.Publisher),
		PublicationYear: req.PublicationYear,
		Description:     strings.TrimSpace(req.Description),
		TotalCopies:     req.TotalCopies,
		Location:        strings.TrimSpace(req.Location),
		Price:           req.Price,
	}
	if genre := strings.TrimSpace(req.Genre); genre != "" {
		book.Genre = &genre
	}

	switch {
	case book.ISBN == "":
		return nil, customError.WrapInvalidArgument("isbn is required")
	case book.Title == "":
		return nil, customError.WrapInvalidArgument("title is required")
	case book.Author == "":
		return nil, customError.WrapInvalidArgument("author is required")
	case book.TotalCopies < 1:
		return nil, customError.WrapInvalidArgument("total copies must be at least 1")
	case book.Price.IsNegative():
		return nil, customError.WrapInvalidArgument("price must not be negative")
	}
	return book, nil
}
