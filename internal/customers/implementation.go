// internal/customers/implementation.go
package customers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"bookledger/internal/ledger"
	"bookledger/pkg/eventstore"

	"github.com/google/uuid"
)

// service implements the Service interface.
type service struct {
	eventStore *eventstore.EventStore
	db         *sql.DB
}

// NewService creates a new customer registry instance.
func NewService(es *eventstore.EventStore, db *sql.DB) Service {
	return &service{
		eventStore: es,
		db:         db,
	}
}

// RegisterCustomer creates a new customer.
func (s *service) RegisterCustomer(ctx context.Context, email, name string) (*Customer, error) {
	id := uuid.New()
	eventData, err := json.Marshal(CustomerRegisteredEvent{ID: id, Email: email, Name: name})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}

	event := eventstore.Event{
		AggregateID:   id,
		AggregateType: "customer",
		EventType:     "CustomerRegistered",
		EventData:     eventData,
		Version:       1,
	}
	if err := s.eventStore.AppendEvents(ctx, id, "customer", 0, []eventstore.Event{event}); err != nil {
		return nil, fmt.Errorf("failed to append event: %w", err)
	}

	customer := &Customer{
		ID:      id,
		Email:   email,
		Name:    name,
		Status:  "active",
		Version: 1,
	}
	if err := s.insertCustomerIntoReadModel(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update read model: %w", err)
	}

	return customer, nil
}

func (s *service) insertCustomerIntoReadModel(ctx context.Context, customer *Customer) error {
	query := `
		INSERT INTO customers (id, email, name, status, version)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query, customer.ID, customer.Email, customer.Name,
		customer.Status, customer.Version)
	return err
}

// GetCustomer retrieves a customer by their ID.
func (s *service) GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error) {
	query := `
		SELECT id, email, name, status, version, created_at, updated_at
		FROM customers
		WHERE id = $1
	`
	customer := &Customer{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&customer.ID,
		&customer.Email,
		&customer.Name,
		&customer.Status,
		&customer.Version,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("customer with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get customer from read model: %w", err)
	}

	return customer, nil
}

// LedgerCustomer satisfies ledger.CustomerSource.
func (s *service) LedgerCustomer(ctx context.Context, id uuid.UUID) (ledger.Customer, error) {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return ledger.Customer{}, err
	}
	return customer.Ledger(), nil
}

// ListCustomers retrieves all registered customers.
func (s *service) ListCustomers(ctx context.Context) ([]*Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, name, status, version, created_at, updated_at
		FROM customers
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var list []*Customer
	for rows.Next() {
		customer := &Customer{}
		err := rows.Scan(
			&customer.ID,
			&customer.Email,
			&customer.Name,
			&customer.Status,
			&customer.Version,
			&customer.CreatedAt,
			&customer.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		list = append(list, customer)
	}

	return list, rows.Err()
}
