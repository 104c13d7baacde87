// internal/ledger/penalty_test.go
package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func standardRates() Rates {
	return Rates{
		LateFeePerDay: decimal.RequireFromString("1.0"),
		BrokenPageFee: decimal.RequireFromString("0.5"),
	}
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(decimal.RequireFromString(want)),
		"expected %s, got %s", want, got)
}

func TestOverdueDays(t *testing.T) {
	due := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	loan := Loan{DueAt: due}

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"before due date", due.AddDate(0, 0, -2), 0},
		{"exactly at due date", due, 0},
		{"partial day rounds up", due.Add(1 * time.Hour), 1},
		{"three days late", due.AddDate(0, 0, 3), 3},
		{"three days and an hour late", due.AddDate(0, 0, 3).Add(time.Hour), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OverdueDays(loan, tt.now))
		})
	}
}

func TestOverdueDaysFrozenAtReturn(t *testing.T) {
	due := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	returnedAt := due.AddDate(0, 0, 2)
	loan := Loan{DueAt: due, ReturnedAt: &returnedAt}

	// Evaluation long after the return changes nothing.
	assert.Equal(t, 2, OverdueDays(loan, due.AddDate(0, 1, 0)))
}

func TestCalculatePenaltyThreeDaysLate(t *testing.T) {
	// Borrowed 2024-01-01 for 7 days, evaluated 2024-01-11.
	borrowed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	loan := Loan{
		ID:         uuid.New(),
		BorrowedAt: borrowed,
		DueAt:      borrowed.AddDate(0, 0, 7),
	}
	book := mkBook(2, "300")

	line := CalculatePenalty(loan, book, borrowed.AddDate(0, 0, 10), standardRates())

	assert.Equal(t, 3, line.OverdueDays)
	assertMoney(t, "3.0", line.LateFee)
	assertMoney(t, "0", line.DamageFee)
	assertMoney(t, "0", line.LossFee)
	assertMoney(t, "3.00", line.Total)
}

func TestCalculatePenaltyLostBook(t *testing.T) {
	borrowed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	loan := Loan{
		ID:         uuid.New(),
		BorrowedAt: borrowed,
		DueAt:      borrowed.AddDate(0, 0, 7),
		IsLost:     true,
	}
	book := mkBook(2, "300")

	// The late fee keeps accruing while the loan is open.
	line := CalculatePenalty(loan, book, borrowed.AddDate(0, 0, 10), standardRates())

	assertMoney(t, "300", line.LossFee)
	assertMoney(t, "3", line.LateFee)
	assertMoney(t, "303.00", line.Total)
}

func TestCalculatePenaltyLostBookWithOverride(t *testing.T) {
	override := decimal.RequireFromString("120.50")
	loan := Loan{
		DueAt:               baseTime,
		IsLost:              true,
		LostReplacementCost: &override,
	}
	book := mkBook(2, "300")

	line := CalculatePenalty(loan, book, baseTime, standardRates())
	assertMoney(t, "120.50", line.LossFee)
	assertMoney(t, "120.50", line.Total)
}

func TestCalculatePenaltyBrokenPages(t *testing.T) {
	loan := Loan{DueAt: baseTime, BrokenPageCount: 4}
	book := mkBook(2, "300")

	// A page-damage variant used a 2.0 rate; the rate is configuration,
	// never a hardcoded behavior.
	rates := Rates{
		LateFeePerDay: decimal.RequireFromString("1.0"),
		BrokenPageFee: decimal.RequireFromString("2.0"),
	}
	line := CalculatePenalty(loan, book, baseTime, rates)
	assertMoney(t, "8.0", line.DamageFee)
	assertMoney(t, "8.00", line.Total)
}

func TestCalculatePenaltyRoundsHalfUp(t *testing.T) {
	loan := Loan{DueAt: baseTime, BrokenPageCount: 1}
	book := mkBook(1, "0")
	rates := Rates{
		LateFeePerDay: decimal.Zero,
		BrokenPageFee: decimal.RequireFromString("0.125"),
	}

	line := CalculatePenalty(loan, book, baseTime, rates)
	assertMoney(t, "0.13", line.Total)
}

func TestZeroLateFeeBeforeDueDate(t *testing.T) {
	loan := Loan{DueAt: baseTime.AddDate(0, 0, 7)}
	book := mkBook(1, "50")

	line := CalculatePenalty(loan, book, baseTime, standardRates())
	assert.Equal(t, 0, line.OverdueDays)
	assertMoney(t, "0", line.LateFee)
	assertMoney(t, "0.00", line.Total)
}

func TestCalculatePenaltyDoesNotMutateLoan(t *testing.T) {
	loan := Loan{DueAt: baseTime, Resolved: false}
	book := mkBook(1, "50")

	_ = CalculatePenalty(loan, book, baseTime.AddDate(0, 0, 30), standardRates())
	require.False(t, loan.Resolved)
}

func TestPenaltyMonotonicWhileOpen(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		loan := Loan{
			DueAt:           baseTime,
			BrokenPageCount: rapid.IntRange(0, 10).Draw(t, "brokenPages"),
			IsLost:          rapid.Bool().Draw(t, "isLost"),
		}
		book := mkBook(1, "75")
		rates := standardRates()

		h1 := rapid.IntRange(0, 24*100).Draw(t, "hours1")
		h2 := rapid.IntRange(h1, 24*200).Draw(t, "hours2")
		earlier := baseTime.Add(time.Duration(h1) * time.Hour)
		later := baseTime.Add(time.Duration(h2) * time.Hour)

		first := CalculatePenalty(loan, book, earlier, rates)
		second := CalculatePenalty(loan, book, later, rates)

		if second.Total.LessThan(first.Total) {
			t.Fatalf("penalty shrank over time: %s at %s, %s at %s",
				first.Total, earlier, second.Total, later)
		}
	})
}

func TestManualLateFeeAlwaysWins(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cents := rapid.Int64Range(0, 1_000_000).Draw(t, "cents")
		override := decimal.New(cents, -2)

		loan := Loan{
			DueAt:         baseTime,
			ManualLateFee: &override,
		}
		book := mkBook(1, "50")

		hoursLate := rapid.IntRange(0, 24*365).Draw(t, "hoursLate")
		now := baseTime.Add(time.Duration(hoursLate) * time.Hour)

		line := CalculatePenalty(loan, book, now, standardRates())
		if !line.LateFee.Equal(override) {
			t.Fatalf("expected late fee %s, got %s", override, line.LateFee)
		}
	})
}
