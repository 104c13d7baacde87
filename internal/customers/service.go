// internal/customers/service.go
package customers

import (
	"context"

	"bookledger/internal/ledger"

	"github.com/google/uuid"
)

// Service defines the interface for the customer registry. It also
// satisfies ledger.CustomerSource.
type Service interface {
	RegisterCustomer(ctx context.Context, email, name string) (*Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error)
	LedgerCustomer(ctx context.Context, id uuid.UUID) (ledger.Customer, error)
	ListCustomers(ctx context.Context) ([]*Customer, error)
}
