// internal/customers/domain.go
package customers

import (
	"time"

	"bookledger/internal/ledger"

	"github.com/google/uuid"
)

// Customer is a registered borrower. Authentication and role assignment are
// handled by an external identity service; this registry only keeps the
// facts the library needs to lend books.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ledger projects the customer onto the identity the ledger engine consumes.
func (c *Customer) Ledger() ledger.Customer {
	return ledger.Customer{ID: c.ID}
}

// CustomerRegisteredEvent is published when a new customer registers.
type CustomerRegisteredEvent struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}
