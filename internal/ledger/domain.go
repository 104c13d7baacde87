// internal/ledger/domain.go
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Book carries the inventory facts the ledger needs: how many physical
// copies exist and what a lost copy costs to replace.
type Book struct {
	ID          uuid.UUID       `json:"id"`
	TotalCopies int             `json:"total_copies"`
	Price       decimal.Decimal `json:"price"`
}

// Customer identifies a borrower. Roles and contact details live in the
// customer registry, not here.
type Customer struct {
	ID uuid.UUID `json:"id"`
}

// Loan is a single borrow record. Loans are never deleted, only closed by
// a return or a loss.
type Loan struct {
	ID                  uuid.UUID        `json:"id"`
	BookID              uuid.UUID        `json:"book_id"`
	CustomerID          uuid.UUID        `json:"customer_id"`
	BorrowedAt          time.Time        `json:"borrowed_at"`
	DueAt               time.Time        `json:"due_at"`
	ReturnedAt          *time.Time       `json:"returned_at,omitempty"`
	BrokenPageCount     int              `json:"broken_page_count"`
	IsLost              bool             `json:"is_lost"`
	LostReplacementCost *decimal.Decimal `json:"lost_replacement_cost,omitempty"`
	ManualLateFee       *decimal.Decimal `json:"manual_late_fee,omitempty"`
	Resolved            bool             `json:"resolved"`
	Version             int              `json:"version"`
}

// Active reports whether the loan still counts against availability and
// against the customer's one-loan limit.
func (l Loan) Active() bool {
	return l.ReturnedAt == nil && !l.IsLost
}

// ReservationStatus values. Transitions are one-directional: PENDING may
// move to any of the other three, terminal states never move again.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationFulfilled ReservationStatus = "FULFILLED"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationExpired   ReservationStatus = "EXPIRED"
)

// Reservation is the fallback path for out-of-stock books.
type Reservation struct {
	ID         uuid.UUID         `json:"id"`
	BookID     uuid.UUID         `json:"book_id"`
	CustomerID uuid.UUID         `json:"customer_id"`
	CreatedAt  time.Time         `json:"created_at"`
	ExpiresAt  time.Time         `json:"expires_at"`
	Status     ReservationStatus `json:"status"`
}

// ErrReservationTerminal is returned on any transition attempt out of a
// terminal reservation state.
var ErrReservationTerminal = errors.New("reservation is in a terminal state")

// Transition moves a PENDING reservation into one of the terminal states.
func (r Reservation) Transition(to ReservationStatus) (Reservation, error) {
	if r.Status != ReservationPending || to == ReservationPending {
		return Reservation{}, ErrReservationTerminal
	}
	r.Status = to
	return r, nil
}

// ExpiredBy reports whether a still-PENDING reservation has outlived its
// expiry timestamp at the given instant. Expiry is derived, not persisted
// eagerly; callers materialize it with ExpireDue when they choose to.
func (r Reservation) ExpiredBy(now time.Time) bool {
	return r.Status == ReservationPending && now.After(r.ExpiresAt)
}

// ExpireDue returns EXPIRED copies of every pending reservation whose
// expiry has passed. The input slice is left untouched.
func ExpireDue(reservations []Reservation, now time.Time) []Reservation {
	var expired []Reservation
	for _, r := range reservations {
		if r.ExpiredBy(now) {
			r.Status = ReservationExpired
			expired = append(expired, r)
		}
	}
	return expired
}

// PenaltyLine is the computed fee breakdown for a loan at a point in time.
// It is a read projection, never stored or mutated.
type PenaltyLine struct {
	LateFee     decimal.Decimal `json:"late_fee"`
	DamageFee   decimal.Decimal `json:"damage_fee"`
	LossFee     decimal.Decimal `json:"loss_fee"`
	Total       decimal.Decimal `json:"total"`
	OverdueDays int             `json:"overdue_days"`
}

// Rates configures the penalty calculator. There are no hidden defaults;
// callers supply both rates explicitly.
type Rates struct {
	LateFeePerDay decimal.Decimal `json:"late_fee_per_day"`
	BrokenPageFee decimal.Decimal `json:"broken_page_fee"`
}

// Reason names a business rule that blocked an operation.
type Reason string

const (
	ReasonActiveLoanExists Reason = "ACTIVE_LOAN_EXISTS"
	ReasonOutOfStock       Reason = "OUT_OF_STOCK"
	ReasonInvalidPeriod    Reason = "INVALID_PERIOD"
	ReasonAlreadyReturned  Reason = "ALREADY_RETURNED"
	ReasonAlreadyLost      Reason = "ALREADY_LOST"
	ReasonNotReturned      Reason = "NOT_RETURNED"
)

var reasonMessages = map[Reason]string{
	ReasonActiveLoanExists: "customer already holds an unreturned book",
	ReasonOutOfStock:       "no copies of this book are currently available",
	ReasonInvalidPeriod:    "the loan or reservation period must be a positive number of days",
	ReasonAlreadyReturned:  "this loan has already been returned",
	ReasonAlreadyLost:      "a lost loan cannot be returned; resolve it through the penalty path",
	ReasonNotReturned:      "this loan has not been returned",
}

// Message returns the single human-readable message for the reason. The
// mapping is total over the enumerated reasons.
func (r Reason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return string(r)
}

// RuleError is the discriminated outcome for every blocked operation.
// It is a recoverable domain result, never a crash.
type RuleError struct {
	Reason Reason
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Reason.Message())
}

func blocked(r Reason) error {
	return &RuleError{Reason: r}
}

// ReasonOf extracts the rule reason from an error chain, if there is one.
func ReasonOf(err error) (Reason, bool) {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Reason, true
	}
	return "", false
}
