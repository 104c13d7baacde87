// internal/ledger/service.go
package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConditionUpdate carries the staff-editable loan fields. Nil fields are
// left unchanged.
type ConditionUpdate struct {
	BrokenPageCount     *int             `json:"broken_page_count,omitempty"`
	IsLost              *bool            `json:"is_lost,omitempty"`
	LostReplacementCost *decimal.Decimal `json:"lost_replacement_cost,omitempty"`
	ManualLateFee       *decimal.Decimal `json:"manual_late_fee,omitempty"`
}

// LoanFilter narrows ListLoans. Zero-value fields match everything.
type LoanFilter struct {
	CustomerID uuid.UUID
	BookID     uuid.UUID
	ActiveOnly bool
}

// Service defines the interface for the borrow and penalty ledger service.
// Every mutating operation re-reads the authoritative snapshot right before
// deciding, applies the pure engine, and persists the produced values.
type Service interface {
	BorrowOrReserve(ctx context.Context, customerID, bookID uuid.UUID) (*BorrowOutcome, error)
	ReturnLoan(ctx context.Context, loanID uuid.UUID) (*Loan, error)
	UndoReturn(ctx context.Context, loanID uuid.UUID) (*Loan, error)
	UpdateLoanCondition(ctx context.Context, loanID uuid.UUID, update ConditionUpdate) (*Loan, error)
	LoanPenalty(ctx context.Context, loanID uuid.UUID) (*PenaltyLine, error)
	ResolvePenalty(ctx context.Context, loanID uuid.UUID) (*Loan, error)
	GetLoan(ctx context.Context, loanID uuid.UUID) (*Loan, error)
	ListLoans(ctx context.Context, filter LoanFilter) ([]*Loan, error)
	ListReservations(ctx context.Context, status ReservationStatus) ([]*Reservation, error)
	CancelReservation(ctx context.Context, reservationID uuid.UUID) (*Reservation, error)
	FulfillReservation(ctx context.Context, reservationID uuid.UUID) (*Loan, error)
	ExpireReservations(ctx context.Context) (int, error)
}
