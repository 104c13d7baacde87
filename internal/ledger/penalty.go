// internal/ledger/penalty.go
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// OverdueDays counts whole days of lateness, rounding any partial day up.
// An open loan accrues against now; a returned loan is frozen at its return
// timestamp. Loans at or before their due date contribute zero.
func OverdueDays(loan Loan, now time.Time) int {
	end := now
	if loan.ReturnedAt != nil {
		end = *loan.ReturnedAt
	}
	late := end.Sub(loan.DueAt)
	if late <= 0 {
		return 0
	}
	days := int(late / day)
	if late%day > 0 {
		days++
	}
	return days
}

// CalculatePenalty computes the fee breakdown owed on a loan at the given
// evaluation time.
//
// The late fee is overdue days times the per-day rate unless staff set a
// manual override, which always wins. The damage fee is the broken page
// count times the per-page rate. The loss fee applies only to lost loans
// and falls back to the book's price when no explicit replacement cost was
// recorded. The total is rounded half-up to two decimal places.
//
// The function is pure: it never mutates the loan, and in particular never
// touches the resolved flag.
func CalculatePenalty(loan Loan, book Book, now time.Time, rates Rates) PenaltyLine {
	days := OverdueDays(loan, now)

	lateFee := decimal.NewFromInt(int64(days)).Mul(rates.LateFeePerDay)
	if loan.ManualLateFee != nil {
		lateFee = *loan.ManualLateFee
	}

	damageFee := decimal.NewFromInt(int64(loan.BrokenPageCount)).Mul(rates.BrokenPageFee)

	lossFee := decimal.Zero
	if loan.IsLost {
		lossFee = book.Price
		if loan.LostReplacementCost != nil {
			lossFee = *loan.LostReplacementCost
		}
	}

	return PenaltyLine{
		LateFee:     lateFee,
		DamageFee:   damageFee,
		LossFee:     lossFee,
		Total:       lateFee.Add(damageFee).Add(lossFee).Round(2),
		OverdueDays: days,
	}
}
