// internal/catalog/service.go
package catalog

import (
	"context"

	"bookledger/internal/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service defines the interface for the book inventory service. It also
// satisfies ledger.BookSource.
type Service interface {
	AddBook(ctx context.Context, isbn, title, author string, totalCopies int, price decimal.Decimal) (*Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (*Book, error)
	LedgerBook(ctx context.Context, id uuid.UUID) (ledger.Book, error)
	UpdateCopies(ctx context.Context, id uuid.UUID, newTotal int) error
	RetireBook(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string) ([]*Book, error)
	Availability(ctx context.Context, id uuid.UUID) (int, error)
}
