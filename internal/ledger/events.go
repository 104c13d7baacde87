// internal/ledger/events.go
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanStartedEvent is published when a borrow succeeds.
type LoanStartedEvent struct {
	LoanID     uuid.UUID `json:"loan_id"`
	BookID     uuid.UUID `json:"book_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	DueAt      time.Time `json:"due_at"`
}

// LoanReturnedEvent is published when a loan is closed by a return.
type LoanReturnedEvent struct {
	LoanID     uuid.UUID `json:"loan_id"`
	ReturnedAt time.Time `json:"returned_at"`
}

// ReturnUndoneEvent is published when staff reverse an accidental return.
type ReturnUndoneEvent struct {
	LoanID uuid.UUID `json:"loan_id"`
}

// LoanConditionUpdatedEvent is published when staff record damage, loss or
// fee overrides on a loan.
type LoanConditionUpdatedEvent struct {
	LoanID              uuid.UUID        `json:"loan_id"`
	BrokenPageCount     int              `json:"broken_page_count"`
	IsLost              bool             `json:"is_lost"`
	LostReplacementCost *decimal.Decimal `json:"lost_replacement_cost,omitempty"`
	ManualLateFee       *decimal.Decimal `json:"manual_late_fee,omitempty"`
}

// PenaltyResolvedEvent is published when an outstanding penalty is settled.
type PenaltyResolvedEvent struct {
	LoanID uuid.UUID `json:"loan_id"`
}

// ReservationCreatedEvent is published when an out-of-stock borrow falls
// back to a reservation.
type ReservationCreatedEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	BookID        uuid.UUID `json:"book_id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// ReservationStatusChangedEvent is published on any transition out of
// PENDING.
type ReservationStatusChangedEvent struct {
	ReservationID uuid.UUID         `json:"reservation_id"`
	Status        ReservationStatus `json:"status"`
}
