// internal/catalog/implementation.go
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"bookledger/internal/ledger"
	"bookledger/pkg/eventstore"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// service implements the Service interface.
type service struct {
	eventStore *eventstore.EventStore
	db         *sql.DB
}

// NewService creates a new catalog service instance.
func NewService(es *eventstore.EventStore, db *sql.DB) Service {
	return &service{
		eventStore: es,
		db:         db,
	}
}

// AddBook creates a new book in the inventory.
func (s *service) AddBook(ctx context.Context, isbn, title, author string, totalCopies int, price decimal.Decimal) (*Book, error) {
	if totalCopies < 0 {
		return nil, fmt.Errorf("total copies must not be negative")
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("price must not be negative")
	}

	id := uuid.New()
	eventData, err := json.Marshal(BookAddedEvent{
		ID:          id,
		ISBN:        isbn,
		Title:       title,
		Author:      author,
		TotalCopies: totalCopies,
		Price:       price,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}

	event := eventstore.Event{
		AggregateID:   id,
		AggregateType: "book",
		EventType:     "BookAdded",
		EventData:     eventData,
		Version:       1,
	}
	if err := s.eventStore.AppendEvents(ctx, id, "book", 0, []eventstore.Event{event}); err != nil {
		return nil, fmt.Errorf("failed to append event: %w", err)
	}

	book := &Book{
		ID:          id,
		ISBN:        isbn,
		Title:       title,
		Author:      author,
		TotalCopies: totalCopies,
		Price:       price,
		Status:      "active",
		Version:     1,
	}
	if err := s.insertBookIntoReadModel(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to update read model: %w", err)
	}

	return book, nil
}

func (s *service) insertBookIntoReadModel(ctx context.Context, book *Book) error {
	query := `
		INSERT INTO books (id, isbn, title, author, total_copies, price, status, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query, book.ID, book.ISBN, book.Title, book.Author,
		book.TotalCopies, book.Price, book.Status, book.Version)
	return err
}

// GetBook retrieves a book by its ID.
func (s *service) GetBook(ctx context.Context, id uuid.UUID) (*Book, error) {
	query := `
		SELECT id, isbn, title, author, total_copies, price, status, version, created_at, updated_at
		FROM books
		WHERE id = $1
	`
	book := &Book{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&book.ID,
		&book.ISBN,
		&book.Title,
		&book.Author,
		&book.TotalCopies,
		&book.Price,
		&book.Status,
		&book.Version,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("book with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get book from read model: %w", err)
	}

	return book, nil
}

// LedgerBook satisfies ledger.BookSource.
func (s *service) LedgerBook(ctx context.Context, id uuid.UUID) (ledger.Book, error) {
	book, err := s.GetBook(ctx, id)
	if err != nil {
		return ledger.Book{}, err
	}
	return book.Ledger(), nil
}

// UpdateCopies changes how many copies the library owns. Availability is
// derived from loans, so only the total is stored.
func (s *service) UpdateCopies(ctx context.Context, id uuid.UUID, newTotal int) error {
	if newTotal < 0 {
		return fmt.Errorf("total copies must not be negative")
	}

	book, err := s.GetBook(ctx, id)
	if err != nil {
		return err
	}

	eventData, err := json.Marshal(BookCopiesUpdatedEvent{ID: id, NewTotal: newTotal})
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	event := eventstore.Event{
		AggregateID:   id,
		AggregateType: "book",
		EventType:     "BookCopiesUpdated",
		EventData:     eventData,
		Version:       book.Version + 1,
	}
	if err := s.eventStore.AppendEvents(ctx, id, "book", book.Version, []eventstore.Event{event}); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	query := `
		UPDATE books
		SET total_copies = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3
	`
	_, err = s.db.ExecContext(ctx, query, newTotal, id, book.Version)
	return err
}

// RetireBook marks a book as retired from the inventory.
func (s *service) RetireBook(ctx context.Context, id uuid.UUID) error {
	book, err := s.GetBook(ctx, id)
	if err != nil {
		return err
	}

	eventData, err := json.Marshal(BookRetiredEvent{ID: id})
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	event := eventstore.Event{
		AggregateID:   id,
		AggregateType: "book",
		EventType:     "BookRetired",
		EventData:     eventData,
		Version:       book.Version + 1,
	}
	if err := s.eventStore.AppendEvents(ctx, id, "book", book.Version, []eventstore.Event{event}); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	query := `
		UPDATE books
		SET status = 'retired', version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
	`
	_, err = s.db.ExecContext(ctx, query, id, book.Version)
	return err
}

// Search finds books by title or author.
func (s *service) Search(ctx context.Context, query string) ([]*Book, error) {
	dbQuery := `
		SELECT id, isbn, title, author, total_copies, price, status
		FROM books
		WHERE to_tsvector('english', title) @@ to_tsquery('english', $1)
		OR to_tsvector('english', author) @@ to_tsquery('english', $1)
		LIMIT 10
	`
	rows, err := s.db.QueryContext(ctx, dbQuery, query)
	if err != nil {
		return nil, fmt.Errorf("database search failed: %w", err)
	}
	defer rows.Close()

	var books []*Book
	for rows.Next() {
		book := &Book{}
		if err := rows.Scan(&book.ID, &book.ISBN, &book.Title, &book.Author,
			&book.TotalCopies, &book.Price, &book.Status); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}

	return books, rows.Err()
}

// Availability derives the loanable copy count from the loan read model
// through the ledger engine's calculator.
func (s *service) Availability(ctx context.Context, id uuid.UUID) (int, error) {
	book, err := s.GetBook(ctx, id)
	if err != nil {
		return 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, book_id, customer_id, returned_at, is_lost
		FROM loans
		WHERE book_id = $1
	`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to load loans: %w", err)
	}
	defer rows.Close()

	var loans []ledger.Loan
	for rows.Next() {
		var loan ledger.Loan
		var returnedAt sql.NullTime
		if err := rows.Scan(&loan.ID, &loan.BookID, &loan.CustomerID, &returnedAt, &loan.IsLost); err != nil {
			return 0, fmt.Errorf("failed to scan loan: %w", err)
		}
		if returnedAt.Valid {
			t := returnedAt.Time
			loan.ReturnedAt = &t
		}
		loans = append(loans, loan)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	return ledger.AvailableCopies(book.Ledger(), loans), nil
}
