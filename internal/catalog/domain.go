// internal/catalog/domain.go
package catalog

import (
	"time"

	"bookledger/internal/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Book is a title in the library's inventory. Price doubles as the default
// lost-copy replacement charge.
type Book struct {
	ID          uuid.UUID       `json:"id"`
	ISBN        string          `json:"isbn"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	TotalCopies int             `json:"total_copies"`
	Price       decimal.Decimal `json:"price"`
	Status      string          `json:"status"`
	Version     int             `json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Ledger projects the book onto the facts the ledger engine consumes.
func (b *Book) Ledger() ledger.Book {
	return ledger.Book{
		ID:          b.ID,
		TotalCopies: b.TotalCopies,
		Price:       b.Price,
	}
}

// BookAddedEvent is published when a new book is added.
type BookAddedEvent struct {
	ID          uuid.UUID       `json:"id"`
	ISBN        string          `json:"isbn"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	TotalCopies int             `json:"total_copies"`
	Price       decimal.Decimal `json:"price"`
}

// BookCopiesUpdatedEvent is published when the owned copy count changes.
type BookCopiesUpdatedEvent struct {
	ID       uuid.UUID `json:"id"`
	NewTotal int       `json:"new_total"`
}

// BookRetiredEvent is published when a book is retired from the inventory.
type BookRetiredEvent struct {
	ID uuid.UUID `json:"id"`
}
