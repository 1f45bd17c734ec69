package repository

import (
	"context"

	"github.com/segyhp/library-engine/internal/domain"
	customError "github.com/segyhp/library-engine/pkg/errors"
	"github.com/segyhp/library-engine/pkg/utils"

	"github.com/jmoiron/sqlx"
)

const bookColumns = `b.id, b.isbn, b.title, b.author, b.publisher, b.publication_year, b.genre,
	b.description, b.total_copies, b.available_copies, b.location, b.price, b.created_at, b.updated_at`

const bookIssuedCount = `(SELECT COUNT(*) FROM book_issues bi WHERE bi.book_id = b.id AND bi.status = 'issued') AS issued_count`

type bookRepository struct {
	db sqlx.ExtContext
}

func NewBookRepository(db sqlx.ExtContext) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *domain.Book) error {
	query := `
		INSERT INTO books (isbn, title, author, publisher, publication_year, genre, description,
			total_copies, available_copies, location, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRowxContext(ctx, query,
		book.ISBN,
		book.Title,
		book.Author,
		book.Publisher,
		book.PublicationYear,
		book.Genre,
		book.Description,
		book.TotalCopies,
		book.AvailableCopies,
		book.Location,
		book.Price,
	).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)
}

func (r *bookRepository) GetByID(ctx context.Context, id int64) (*domain.Book, error) {
	query := `SELECT ` + bookColumns + `, ` + bookIssuedCount + ` FROM books b WHERE b.id = $1`

	var book domain.Book
	if err := sqlx.GetContext(ctx, r.db, &book, query, id); err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books b WHERE b.id = $1 FOR UPDATE`

	var book domain.Book
	if err := sqlx.GetContext(ctx, r.db, &book, query, id); err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) GetByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books b WHERE b.isbn = $1`

	var book domain.Book
	if err := sqlx.GetContext(ctx, r.db, &book, query, isbn); err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) Update(ctx context.Context, book *domain.Book) error {
	query := `
		UPDATE books
		SET isbn = $2, title = $3, author = $4, publisher = $5, publication_year = $6, genre = $7,
			description = $8, total_copies = $9, available_copies = $10, location = $11, price = $12,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	return r.db.QueryRowxContext(ctx, query,
		book.ID,
		book.ISBN,
		book.Title,
		book.Author,
		book.Publisher,
		book.PublicationYear,
		book.Genre,
		book.Description,
		book.TotalCopies,
		book.AvailableCopies,
		book.Location,
		book.Price,
	).Scan(&book.UpdatedAt)
}

func (r *bookRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	return err
}

func (r *bookRepository) Search(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, int, error) {
	var cond conditions
	if filter.Query != "" {
		pattern := contains(filter.Query)
		if filter.IncludeDescription {
			cond.add(`(b.title ILIKE ? OR b.author ILIKE ? OR b.isbn ILIKE ? OR b.description ILIKE ?)`,
				pattern, pattern, pattern, pattern)
		} else {
			cond.add(`(b.title ILIKE ? OR b.author ILIKE ? OR b.isbn ILIKE ?)`, pattern, pattern, pattern)
		}
	}
	if filter.Genre != "" {
		cond.add(`b.genre = ?`, filter.Genre)
	}

	var total int
	countQuery := r.db.Rebind(`SELECT COUNT(*) FROM books b` + cond.where())
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, cond.args...); err != nil {
		return nil, 0, err
	}

	query := r.db.Rebind(`SELECT ` + bookColumns + `, ` + bookIssuedCount + ` FROM books b` +
		cond.where() + ` ORDER BY b.title, b.id LIMIT ? OFFSET ?`)
	args := append(cond.args, filter.PageSize, utils.Offset(filter.Page, filter.PageSize))

	var books []*domain.Book
	if err := sqlx.SelectContext(ctx, r.db, &books, query, args...); err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (r *bookRepository) Genres(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT genre FROM books WHERE genre IS NOT NULL AND genre <> '' ORDER BY genre`

	var genres []string
	if err := sqlx.SelectContext(ctx, r.db, &genres, query); err != nil {
		return nil, err
	}
	return genres, nil
}

func (r *bookRepository) DecrementAvailability(ctx context.Context, id int64) error {
	query := `
		UPDATE books
		SET available_copies = available_copies - 1, updated_at = NOW()
		WHERE id = $1 AND available_copies > 0
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return customError.WrapNotAvailable(id)
	}
	return nil
}

func (r *bookRepository) IncrementAvailability(ctx context.Context, id int64) error {
	query := `
		UPDATE books
		SET available_copies = available_copies + 1, updated_at = NOW()
		WHERE id = $1 AND available_copies < total_copies
	`

	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *bookRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.db, &count, `SELECT COUNT(*) FROM books`)
	return count, err
}
