// internal/ledger/availability.go
package ledger

// AvailableCopies derives how many copies of a book are presently loanable:
// total copies minus the active (unreturned, not lost) loans referencing it.
// Loans for other books are ignored, so the full loan snapshot can be passed.
//
// The result is the raw signed value. Over-committed inventory yields a
// negative number; display layers clamp to zero, but the inconsistency stays
// observable here.
func AvailableCopies(book Book, loans []Loan) int {
	active := 0
	for _, l := range loans {
		if l.BookID == book.ID && l.Active() {
			active++
		}
	}
	return book.TotalCopies - active
}
