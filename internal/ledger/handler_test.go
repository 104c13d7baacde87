// internal/ledger/handler_test.go
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubService lets handler tests script the service layer.
type stubService struct {
	borrowOrReserve func(ctx context.Context, customerID, bookID uuid.UUID) (*BorrowOutcome, error)
	returnLoan      func(ctx context.Context, loanID uuid.UUID) (*Loan, error)
	loanPenalty     func(ctx context.Context, loanID uuid.UUID) (*PenaltyLine, error)
	getLoan         func(ctx context.Context, loanID uuid.UUID) (*Loan, error)
}

func (s *stubService) BorrowOrReserve(ctx context.Context, customerID, bookID uuid.UUID) (*BorrowOutcome, error) {
	return s.borrowOrReserve(ctx, customerID, bookID)
}

func (s *stubService) ReturnLoan(ctx context.Context, loanID uuid.UUID) (*Loan, error) {
	return s.returnLoan(ctx, loanID)
}

func (s *stubService) UndoReturn(ctx context.Context, loanID uuid.UUID) (*Loan, error) {
	return nil, fmt.Errorf("not scripted")
}

func (s *stubService) UpdateLoanCondition(ctx context.Context, loanID uuid.UUID, update ConditionUpdate) (*Loan, error) {
	return nil, fmt.Errorf("not scripted")
}

func (s *stubService) LoanPenalty(ctx context.Context, loanID uuid.UUID) (*PenaltyLine, error) {
	return s.loanPenalty(ctx, loanID)
}

func (s *stubService) ResolvePenalty(ctx context.Context, loanID uuid.UUID) (*Loan, error) {
	return nil, fmt.Errorf("not scripted")
}

func (s *stubService) GetLoan(ctx context.Context, loanID uuid.UUID) (*Loan, error) {
	return s.getLoan(ctx, loanID)
}

func (s *stubService) ListLoans(ctx context.Context, filter LoanFilter) ([]*Loan, error) {
	return nil, nil
}

func (s *stubService) ListReservations(ctx context.Context, status ReservationStatus) ([]*Reservation, error) {
	return nil, nil
}

func (s *stubService) CancelReservation(ctx context.Context, reservationID uuid.UUID) (*Reservation, error) {
	return nil, fmt.Errorf("not scripted")
}

func (s *stubService) FulfillReservation(ctx context.Context, reservationID uuid.UUID) (*Loan, error) {
	return nil, fmt.Errorf("not scripted")
}

func (s *stubService) ExpireReservations(ctx context.Context) (int, error) {
	return 0, nil
}

func borrowBody(t *testing.T, customerID, bookID uuid.UUID) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(map[string]string{
		"customer_id": customerID.String(),
		"book_id":     bookID.String(),
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestHandleBorrowCreated(t *testing.T) {
	loan := mkActiveLoan(uuid.New(), uuid.New())
	stub := &stubService{
		borrowOrReserve: func(ctx context.Context, customerID, bookID uuid.UUID) (*BorrowOutcome, error) {
			return &BorrowOutcome{Loan: &loan}, nil
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/borrow", borrowBody(t, loan.CustomerID, loan.BookID))
	NewHandler(stub).Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var outcome BorrowOutcome
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&outcome))
	require.NotNil(t, outcome.Loan)
	assert.Equal(t, loan.ID, outcome.Loan.ID)
	assert.Nil(t, outcome.Reservation)
}

func TestHandleBorrowBlocked(t *testing.T) {
	stub := &stubService{
		borrowOrReserve: func(ctx context.Context, customerID, bookID uuid.UUID) (*BorrowOutcome, error) {
			return nil, blocked(ReasonActiveLoanExists)
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/borrow", borrowBody(t, uuid.New(), uuid.New()))
	NewHandler(stub).Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)

	var payload map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	assert.Equal(t, string(ReasonActiveLoanExists), payload["reason"])
	assert.Equal(t, ReasonActiveLoanExists.Message(), payload["message"])
}

func TestHandleBorrowRejectsMissingFields(t *testing.T) {
	stub := &stubService{
		borrowOrReserve: func(ctx context.Context, customerID, bookID uuid.UUID) (*BorrowOutcome, error) {
			t.Fatal("service must not be called for invalid requests")
			return nil, nil
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/borrow", bytes.NewBufferString(`{"customer_id":"`+uuid.New().String()+`"}`))
	NewHandler(stub).Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleReturnAlreadyReturned(t *testing.T) {
	stub := &stubService{
		returnLoan: func(ctx context.Context, loanID uuid.UUID) (*Loan, error) {
			return nil, blocked(ReasonAlreadyReturned)
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/loans/"+uuid.New().String()+"/return", nil)
	NewHandler(stub).Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)

	var payload map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	assert.Equal(t, string(ReasonAlreadyReturned), payload["reason"])
}

func TestHandleLoanPenalty(t *testing.T) {
	line := CalculatePenalty(Loan{DueAt: baseTime}, mkBook(1, "50"),
		baseTime.AddDate(0, 0, 2), standardRates())
	stub := &stubService{
		loanPenalty: func(ctx context.Context, loanID uuid.UUID) (*PenaltyLine, error) {
			return &line, nil
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/loans/"+uuid.New().String()+"/penalty", nil)
	NewHandler(stub).Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got PenaltyLine
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, line.OverdueDays, got.OverdueDays)
	assert.True(t, line.Total.Equal(got.Total))
}

func TestHandleGetLoanNotFound(t *testing.T) {
	id := uuid.New()
	stub := &stubService{
		getLoan: func(ctx context.Context, loanID uuid.UUID) (*Loan, error) {
			return nil, fmt.Errorf("loan with ID %s not found", loanID)
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/loans/"+id.String(), nil)
	NewHandler(stub).Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetLoanInvalidID(t *testing.T) {
	stub := &stubService{}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/loans/not-a-uuid", nil)
	NewHandler(stub).Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
