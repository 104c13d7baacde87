// internal/ledger/availability_test.go
package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

var baseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func mkBook(copies int, price string) Book {
	return Book{
		ID:          uuid.New(),
		TotalCopies: copies,
		Price:       decimal.RequireFromString(price),
	}
}

func mkActiveLoan(bookID, customerID uuid.UUID) Loan {
	return Loan{
		ID:         uuid.New(),
		BookID:     bookID,
		CustomerID: customerID,
		BorrowedAt: baseTime,
		DueAt:      baseTime.AddDate(0, 0, 14),
		Version:    1,
	}
}

func mkReturnedLoan(bookID, customerID uuid.UUID) Loan {
	loan := mkActiveLoan(bookID, customerID)
	returnedAt := baseTime.AddDate(0, 0, 3)
	loan.ReturnedAt = &returnedAt
	return loan
}

func mkLostLoan(bookID, customerID uuid.UUID) Loan {
	loan := mkActiveLoan(bookID, customerID)
	loan.IsLost = true
	return loan
}

func TestAvailableCopies(t *testing.T) {
	book := mkBook(2, "300")
	other := mkBook(5, "100")

	tests := []struct {
		name  string
		loans []Loan
		want  int
	}{
		{"no loans", nil, 2},
		{"one active loan", []Loan{mkActiveLoan(book.ID, uuid.New())}, 1},
		{"returned loans do not count", []Loan{mkReturnedLoan(book.ID, uuid.New())}, 2},
		{"lost loans do not count", []Loan{mkLostLoan(book.ID, uuid.New())}, 2},
		{"loans for other books are ignored", []Loan{mkActiveLoan(other.ID, uuid.New())}, 2},
		{
			"over-committed inventory yields the raw negative value",
			[]Loan{
				mkActiveLoan(book.ID, uuid.New()),
				mkActiveLoan(book.ID, uuid.New()),
				mkActiveLoan(book.ID, uuid.New()),
			},
			-1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AvailableCopies(book, tt.loans))
		})
	}
}

func TestAvailableCopiesZeroStock(t *testing.T) {
	book := mkBook(0, "50")
	assert.Equal(t, 0, AvailableCopies(book, nil))
}

func TestAvailabilityMonotonicity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		book := mkBook(rapid.IntRange(0, 20).Draw(t, "totalCopies"), "25")

		var loans []Loan
		for i := rapid.IntRange(0, 10).Draw(t, "activeLoans"); i > 0; i-- {
			loans = append(loans, mkActiveLoan(book.ID, uuid.New()))
		}

		before := AvailableCopies(book, loans)

		withActive := append(append([]Loan{}, loans...), mkActiveLoan(book.ID, uuid.New()))
		if got := AvailableCopies(book, withActive); got != before-1 {
			t.Fatalf("adding an active loan changed availability from %d to %d", before, got)
		}

		withReturned := append(append([]Loan{}, loans...), mkReturnedLoan(book.ID, uuid.New()))
		if got := AvailableCopies(book, withReturned); got != before {
			t.Fatalf("adding a returned loan changed availability from %d to %d", before, got)
		}

		withLost := append(append([]Loan{}, loans...), mkLostLoan(book.ID, uuid.New()))
		if got := AvailableCopies(book, withLost); got != before {
			t.Fatalf("adding a lost loan changed availability from %d to %d", before, got)
		}
	})
}
