// internal/ledger/engine.go
package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Engine is the single entry point exposed to the surrounding application.
// It composes the availability, eligibility and penalty calculators and adds
// no logic of its own beyond dispatch. It holds no state; every call works
// on the snapshot passed in and returns new values.
type Engine struct{}

// NewEngine creates the ledger engine façade.
func NewEngine() *Engine {
	return &Engine{}
}

// BorrowOutcome is the discriminated result of BorrowOrReserve: exactly one
// of Loan or Reservation is set.
type BorrowOutcome struct {
	Loan        *Loan        `json:"loan,omitempty"`
	Reservation *Reservation `json:"reservation,omitempty"`
}

// BorrowOrReserve starts a loan when stock allows, and falls back to a
// PENDING reservation when it does not. The one-active-loan rule applies to
// both paths: a reservation never bypasses it.
//
// When the customer already holds a live PENDING reservation for the book,
// that reservation is returned instead of creating a duplicate.
func (e *Engine) BorrowOrReserve(customer Customer, book Book, loans []Loan, reservations []Reservation, loanPeriodDays, reservationPeriodDays int, now time.Time) (BorrowOutcome, error) {
	if loanPeriodDays <= 0 || reservationPeriodDays <= 0 {
		return BorrowOutcome{}, blocked(ReasonInvalidPeriod)
	}

	err := CheckBorrowEligibility(customer, book, loans)
	if err == nil {
		loan, err := StartLoan(customer, book, loans, loanPeriodDays, now)
		if err != nil {
			return BorrowOutcome{}, err
		}
		return BorrowOutcome{Loan: &loan}, nil
	}

	var re *RuleError
	if !errors.As(err, &re) || re.Reason != ReasonOutOfStock {
		return BorrowOutcome{}, err
	}

	if err := CheckReserveEligibility(book, loans); err != nil {
		return BorrowOutcome{}, err
	}

	for _, r := range reservations {
		if r.CustomerID == customer.ID && r.BookID == book.ID &&
			r.Status == ReservationPending && !r.ExpiredBy(now) {
			existing := r
			return BorrowOutcome{Reservation: &existing}, nil
		}
	}

	reservation := Reservation{
		ID:         uuid.New(),
		BookID:     book.ID,
		CustomerID: customer.ID,
		CreatedAt:  now,
		ExpiresAt:  now.AddDate(0, 0, reservationPeriodDays),
		Status:     ReservationPending,
	}
	return BorrowOutcome{Reservation: &reservation}, nil
}

// Settle computes what the loan currently owes. It is a convenience wrapper
// around CalculatePenalty and mutates nothing.
func (e *Engine) Settle(loan Loan, book Book, now time.Time, rates Rates) PenaltyLine {
	return CalculatePenalty(loan, book, now, rates)
}

// MarkResolved flags the loan's accumulated penalty as settled. It is a
// bookkeeping flag only; payment collection lives with the caller.
func (e *Engine) MarkResolved(loan Loan) Loan {
	loan.Resolved = true
	return loan
}
