package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repositories bundles every repository bound to the same connection or transaction
type Repositories struct {
	Books        BookRepository
	Customers    CustomerRepository
	Loans        LoanRepository
	Fines        FineRepository
	Reservations ReservationRepository
	Passes       PassRepository
	Users        UserRepository
}

// NewRepositories binds all repositories to q, either a *sqlx.DB or a *sqlx.Tx
func NewRepositories(q sqlx.ExtContext) *Repositories {
	return &Repositories{
		Books:        NewBookRepository(q),
		Customers:    NewCustomerRepository(q),
		Loans:        NewLoanRepository(q),
		Fines:        NewFineRepository(q),
		Reservations: NewReservationRepository(q),
		Passes:       NewPassRepository(q),
		Users:        NewUserRepository(q),
	}
}

// Transactor runs fn against repositories sharing one transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repos *Repositories) error) error
}

type Store struct {
	*Repositories
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		Repositories: NewRepositories(db),
		db:           db,
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(repos *Repositories) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(NewRepositories(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
