// internal/ledger/handler.go
package ledger

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Handler struct {
	service  Service
	validate *validator.Validate
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
	}
}

// Routes wires the ledger endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/borrow", h.handleBorrowOrReserve)

	r.Get("/loans", h.handleListLoans)
	r.Get("/loans/{id}", h.handleGetLoan)
	r.Post("/loans/{id}/return", h.handleReturnLoan)
	r.Post("/loans/{id}/undo-return", h.handleUndoReturn)
	r.Patch("/loans/{id}", h.handleUpdateCondition)
	r.Get("/loans/{id}/penalty", h.handleLoanPenalty)
	r.Post("/loans/{id}/resolve", h.handleResolvePenalty)

	r.Get("/reservations", h.handleListReservations)
	r.Post("/reservations/{id}/cancel", h.handleCancelReservation)
	r.Post("/reservations/{id}/fulfill", h.handleFulfillReservation)
	r.Post("/reservations/expire-due", h.handleExpireReservations)

	return r
}

type borrowRequest struct {
	CustomerID uuid.UUID `json:"customer_id" validate:"required"`
	BookID     uuid.UUID `json:"book_id" validate:"required"`
}

func (h *Handler) handleBorrowOrReserve(w http.ResponseWriter, r *http.Request) {
	var req borrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	outcome, err := h.service.BorrowOrReserve(r.Context(), req.CustomerID, req.BookID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(outcome)
}

func (h *Handler) handleListLoans(w http.ResponseWriter, r *http.Request) {
	filter := LoanFilter{ActiveOnly: r.URL.Query().Get("active") == "true"}
	if v := r.URL.Query().Get("customer_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			http.Error(w, "invalid customer ID", http.StatusBadRequest)
			return
		}
		filter.CustomerID = id
	}
	if v := r.URL.Query().Get("book_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			http.Error(w, "invalid book ID", http.StatusBadRequest)
			return
		}
		filter.BookID = id
	}

	loans, err := h.service.ListLoans(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(loans)
}

func (h *Handler) handleGetLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	loan, err := h.service.GetLoan(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(loan)
}

func (h *Handler) handleReturnLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	loan, err := h.service.ReturnLoan(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(loan)
}

func (h *Handler) handleUndoReturn(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	loan, err := h.service.UndoReturn(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(loan)
}

type conditionRequest struct {
	BrokenPageCount     *int             `json:"broken_page_count" validate:"omitempty,min=0"`
	IsLost              *bool            `json:"is_lost"`
	LostReplacementCost *decimal.Decimal `json:"lost_replacement_cost"`
	ManualLateFee       *decimal.Decimal `json:"manual_late_fee"`
}

func (h *Handler) handleUpdateCondition(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req conditionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	loan, err := h.service.UpdateLoanCondition(r.Context(), id, ConditionUpdate{
		BrokenPageCount:     req.BrokenPageCount,
		IsLost:              req.IsLost,
		LostReplacementCost: req.LostReplacementCost,
		ManualLateFee:       req.ManualLateFee,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(loan)
}

func (h *Handler) handleLoanPenalty(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	line, err := h.service.LoanPenalty(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(line)
}

func (h *Handler) handleResolvePenalty(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	loan, err := h.service.ResolvePenalty(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(loan)
}

func (h *Handler) handleListReservations(w http.ResponseWriter, r *http.Request) {
	status := ReservationStatus(r.URL.Query().Get("status"))
	reservations, err := h.service.ListReservations(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(reservations)
}

func (h *Handler) handleCancelReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	reservation, err := h.service.CancelReservation(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(reservation)
}

func (h *Handler) handleFulfillReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	loan, err := h.service.FulfillReservation(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(loan)
}

func (h *Handler) handleExpireReservations(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.ExpireReservations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]int{"expired": count})
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// statusForReason maps each rule reason to one HTTP status.
func statusForReason(reason Reason) int {
	switch reason {
	case ReasonInvalidPeriod:
		return http.StatusBadRequest
	default:
		return http.StatusConflict
	}
}

// writeError renders rule errors as structured JSON with their 1:1 message,
// and everything else as a plain server error.
func writeError(w http.ResponseWriter, err error) {
	if reason, ok := ReasonOf(err); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusForReason(reason))
		json.NewEncoder(w).Encode(map[string]string{
			"reason":  string(reason),
			"message": reason.Message(),
		})
		return
	}
	if errors.Is(err, ErrReservationTerminal) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if errors.Is(err, sql.ErrNoRows) || strings.Contains(err.Error(), "not found") {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
