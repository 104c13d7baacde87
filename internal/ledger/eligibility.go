// internal/ledger/eligibility.go
package ledger

import (
	"time"

	"github.com/google/uuid"
)

// CheckBorrowEligibility gates a new loan. Rule order is fixed: the
// one-active-loan rule is evaluated before the stock check, so a customer
// with an outstanding loan is blocked even when the target book has copies.
func CheckBorrowEligibility(customer Customer, book Book, loans []Loan) error {
	for _, l := range loans {
		if l.CustomerID == customer.ID && l.Active() {
			return blocked(ReasonActiveLoanExists)
		}
	}
	if AvailableCopies(book, loans) <= 0 {
		return blocked(ReasonOutOfStock)
	}
	return nil
}

// CheckReserveEligibility answers whether a book is in a reservation-worthy
// state. Any book is; reservation is only the sensible choice once stock has
// run out, but the borrow-vs-reserve decision belongs to the Engine façade,
// not to this check.
func CheckReserveEligibility(book Book, loans []Loan) error {
	return nil
}

// StartLoan constructs a new loan for the customer if the eligibility rules
// pass. No state is touched on rejection.
func StartLoan(customer Customer, book Book, loans []Loan, loanPeriodDays int, now time.Time) (Loan, error) {
	if loanPeriodDays <= 0 {
		return Loan{}, blocked(ReasonInvalidPeriod)
	}
	if err := CheckBorrowEligibility(customer, book, loans); err != nil {
		return Loan{}, err
	}
	return Loan{
		ID:         uuid.New(),
		BookID:     book.ID,
		CustomerID: customer.ID,
		BorrowedAt: now,
		DueAt:      now.AddDate(0, 0, loanPeriodDays),
		Version:    1,
	}, nil
}

// ReturnLoan closes the loan at the given instant. Returning an already
// returned loan is rejected, not silently ignored, and a lost loan must be
// settled through the penalty path instead.
func ReturnLoan(loan Loan, now time.Time) (Loan, error) {
	if loan.ReturnedAt != nil {
		return Loan{}, blocked(ReasonAlreadyReturned)
	}
	if loan.IsLost {
		return Loan{}, blocked(ReasonAlreadyLost)
	}
	loan.ReturnedAt = &now
	return loan, nil
}

// UndoReturn reverses an accidental return, clearing the return timestamp.
// It is a plain state rollback; no time-travel validation is applied.
func UndoReturn(loan Loan) (Loan, error) {
	if loan.ReturnedAt == nil {
		return Loan{}, blocked(ReasonNotReturned)
	}
	loan.ReturnedAt = nil
	return loan, nil
}
