// internal/ledger/implementation.go
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"bookledger/pkg/eventstore"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// BookSource supplies the inventory facts for a book. The catalog service
// implements it.
type BookSource interface {
	LedgerBook(ctx context.Context, id uuid.UUID) (Book, error)
}

// CustomerSource confirms a customer exists. The customer registry
// implements it.
type CustomerSource interface {
	LedgerCustomer(ctx context.Context, id uuid.UUID) (Customer, error)
}

// Config carries the loan policy the service applies on every decision.
type Config struct {
	LoanPeriodDays        int
	ReservationPeriodDays int
	Rates                 Rates
}

// service implements the Service interface on top of the Postgres read
// models, the event store and the pure engine.
type service struct {
	db        *sql.DB
	es        *eventstore.EventStore
	engine    *Engine
	books     BookSource
	customers CustomerSource
	cfg       Config
	limiter   *rate.Limiter
	tracer    trace.Tracer
	decisions metric.Int64Counter
	now       func() time.Time
}

// NewService creates a new ledger service instance.
func NewService(db *sql.DB, es *eventstore.EventStore, books BookSource, customers CustomerSource, cfg Config) Service {
	decisions, _ := otel.Meter("bookledger/ledger").Int64Counter("ledger.borrow.decisions")
	return &service{
		db:        db,
		es:        es,
		engine:    NewEngine(),
		books:     books,
		customers: customers,
		cfg:       cfg,
		limiter:   rate.NewLimiter(rate.Every(time.Second), 10),
		tracer:    otel.Tracer("bookledger/ledger"),
		decisions: decisions,
		now:       time.Now,
	}
}

// BorrowOrReserve re-reads the loan and reservation snapshots, lets the
// engine decide, and persists whichever value it produced.
func (s *service) BorrowOrReserve(ctx context.Context, customerID, bookID uuid.UUID) (*BorrowOutcome, error) {
	if !s.limiter.Allow() {
		return nil, fmt.Errorf("rate limit exceeded")
	}

	ctx, span := s.tracer.Start(ctx, "ledger.borrow_or_reserve",
		trace.WithAttributes(
			attribute.String("customer.id", customerID.String()),
			attribute.String("book.id", bookID.String()),
		),
	)
	defer span.End()

	customer, err := s.customers.LedgerCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	book, err := s.books.LedgerBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	loans, err := s.loanSnapshot(ctx, bookID, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load loan snapshot: %w", err)
	}
	reservations, err := s.reservationSnapshot(ctx, bookID, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation snapshot: %w", err)
	}

	now := s.now()
	outcome, err := s.engine.BorrowOrReserve(customer, book, loans, reservations,
		s.cfg.LoanPeriodDays, s.cfg.ReservationPeriodDays, now)
	if err != nil {
		s.decisions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "blocked")))
		return nil, err
	}

	switch {
	case outcome.Loan != nil:
		s.decisions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "loan")))
		if err := s.persistNewLoan(ctx, *outcome.Loan); err != nil {
			return nil, err
		}
	case outcome.Reservation != nil:
		s.decisions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "reservation")))
		// An existing pending reservation is returned as-is, nothing to persist.
		if outcome.Reservation.CreatedAt.Equal(now) {
			if err := s.persistNewReservation(ctx, *outcome.Reservation); err != nil {
				return nil, err
			}
		}
	}

	return &outcome, nil
}

func (s *service) persistNewLoan(ctx context.Context, loan Loan) error {
	eventData, err := json.Marshal(LoanStartedEvent{
		LoanID:     loan.ID,
		BookID:     loan.BookID,
		CustomerID: loan.CustomerID,
		DueAt:      loan.DueAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	event := eventstore.Event{
		AggregateID:   loan.ID,
		AggregateType: "loan",
		EventType:     "LoanStarted",
		EventData:     eventData,
		Version:       1,
	}
	if err := s.es.AppendEvents(ctx, loan.ID, "loan", 0, []eventstore.Event{event}); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	query := `
		INSERT INTO loans (id, book_id, customer_id, borrowed_at, due_at, broken_page_count, is_lost, resolved, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.ExecContext(ctx, query, loan.ID, loan.BookID, loan.CustomerID,
		loan.BorrowedAt, loan.DueAt, loan.BrokenPageCount, loan.IsLost, loan.Resolved, loan.Version)
	if err != nil {
		return fmt.Errorf("failed to update read model: %w", err)
	}
	return nil
}

func (s *service) persistNewReservation(ctx context.Context, r Reservation) error {
	eventData, err := json.Marshal(ReservationCreatedEvent{
		ReservationID: r.ID,
		BookID:        r.BookID,
		CustomerID:    r.CustomerID,
		ExpiresAt:     r.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	event := eventstore.Event{
		AggregateID:   r.ID,
		AggregateType: "reservation",
		EventType:     "ReservationCreated",
		EventData:     eventData,
		Version:       1,
	}
	if err := s.es.AppendEvents(ctx, r.ID, "reservation", 0, []eventstore.Event{event}); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	query := `
		INSERT INTO reservations (id, book_id, customer_id, created_at, expires_at, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.ExecContext(ctx, query, r.ID, r.BookID, r.CustomerID, r.CreatedAt, r.ExpiresAt, string(r.Status))
	if err != nil {
		return fmt.Errorf("failed to update read model: %w", err)
	}
	return nil
}

// ReturnLoan closes a loan at the current instant.
func (s *service) ReturnLoan(ctx context.Context, loanID uuid.UUID) (*Loan, error) {
	if !s.limiter.Allow() {
		return nil, fmt.Errorf("rate limit exceeded")
	}

	ctx, span := s.tracer.Start(ctx, "ledger.return_loan",
		trace.WithAttributes(attribute.String("loan.id", loanID.String())))
	defer span.End()

	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	returned, err := ReturnLoan(*loan, s.now())
	if err != nil {
		return nil, err
	}
	returned.Version = loan.Version + 1

	eventData, err := json.Marshal(LoanReturnedEvent{LoanID: loanID, ReturnedAt: *returned.ReturnedAt})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}
	event := eventstore.Event{
		AggregateID:   loanID,
		AggregateType: "loan",
		EventType:     "LoanReturned",
		EventData:     eventData,
		Version:       returned.Version,
	}
	if err := s.es.AppendEvents(ctx, loanID, "loan", loan.Version, []eventstore.Event{event}); err != nil {
		return nil, fmt.Errorf("failed to append event: %w", err)
	}

	query := `
		UPDATE loans
		SET returned_at = $1, version = $2, updated_at = NOW()
		WHERE id = $3 AND version = $4
	`
	if _, err := s.db.ExecContext(ctx, query, returned.ReturnedAt, returned.Version, loanID, loan.Version); err != nil {
		return nil, fmt.Errorf("failed to update read model: %w", err)
	}

	return &returned, nil
}

// UndoReturn reverses an accidental return.
func (s *service) UndoReturn(ctx context.Context, loanID uuid.UUID) (*Loan, error) {
	if !s.limiter.Allow() {
		return nil, fmt.Errorf("rate limit exceeded")
	}

	ctx, span := s.tracer.Start(ctx, "ledger.undo_return",
		trace.WithAttributes(attribute.String("loan.id", loanID.String())))
	defer span.End()

	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	reopened, err := UndoReturn(*loan)
	if err != nil {
		return nil, err
	}
	reopened.Version = loan.Version + 1

	eventData, err := json.Marshal(ReturnUndoneEvent{LoanID: loanID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}
	event := eventstore.Event{
		AggregateID:   loanID,
		AggregateType: "loan",
		EventType:     "ReturnUndone",
		EventData:     eventData,
		Version:       reopened.Version,
	}
	if err := s.es.AppendEvents(ctx, loanID, "loan", loan.Version, []eventstore.Event{event}); err != nil {
		return nil, fmt.Errorf("failed to append event: %w", err)
	}

	query := `
		UPDATE loans
		SET returned_at = NULL, version = $1, updated_at = NOW()
		WHERE id = $2 AND version = $3
	`
	if _, err := s.db.ExecContext(ctx, query, reopened.Version, loanID, loan.Version); err != nil {
		return nil, fmt.Errorf("failed to update read model: %w", err)
	}

	return &reopened, nil
}

// UpdateLoanCondition records staff edits: damage, loss and fee overrides.
// Condition edits are only accepted while the loan is open.
func (s *service) UpdateLoanCondition(ctx context.Context, loanID uuid.UUID, update ConditionUpdate) (*Loan, error) {
	if !s.limiter.Allow() {
		return nil, fmt.Errorf("rate limit exceeded")
	}

	ctx, span := s.tracer.Start(ctx, "ledger.update_condition",
		trace.WithAttributes(attribute.String("loan.id", loanID.String())))
	defer span.End()

	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.ReturnedAt != nil {
		return nil, fmt.Errorf("loan %s is closed", loanID)
	}

	updated := *loan
	if update.BrokenPageCount != nil {
		if *update.BrokenPageCount < 0 {
			return nil, fmt.Errorf("broken page count must not be negative")
		}
		updated.BrokenPageCount = *update.BrokenPageCount
	}
	if update.IsLost != nil {
		updated.IsLost = *update.IsLost
	}
	if update.LostReplacementCost != nil {
		cost := *update.LostReplacementCost
		updated.LostReplacementCost = &cost
	}
	if update.ManualLateFee != nil {
		fee := *update.ManualLateFee
		updated.ManualLateFee = &fee
	}
	updated.Version = loan.Version + 1

	eventData, err := json.Marshal(LoanConditionUpdatedEvent{
		LoanID:              loanID,
		BrokenPageCount:     updated.BrokenPageCount,
		IsLost:              updated.IsLost,
		LostReplacementCost: updated.LostReplacementCost,
		ManualLateFee:       updated.ManualLateFee,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}
	event := eventstore.Event{
		AggregateID:   loanID,
		AggregateType: "loan",
		EventType:     "LoanConditionUpdated",
		EventData:     eventData,
		Version:       updated.Version,
	}
	if err := s.es.AppendEvents(ctx, loanID, "loan", loan.Version, []eventstore.Event{event}); err != nil {
		return nil, fmt.Errorf("failed to append event: %w", err)
	}

	query := `
		UPDATE loans
		SET broken_page_count = $1, is_lost = $2, lost_replacement_cost = $3, manual_late_fee = $4,
		    version = $5, updated_at = NOW()
		WHERE id = $6 AND version = $7
	`
	_, err = s.db.ExecContext(ctx, query, updated.BrokenPageCount, updated.IsLost,
		nullDecimal(updated.LostReplacementCost), nullDecimal(updated.ManualLateFee),
		updated.Version, loanID, loan.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to update read model: %w", err)
	}

	return &updated, nil
}

// LoanPenalty computes the penalty currently owed on a loan.
func (s *service) LoanPenalty(ctx context.Context, loanID uuid.UUID) (*PenaltyLine, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.loan_penalty",
		trace.WithAttributes(attribute.String("loan.id", loanID.String())))
	defer span.End()

	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	book, err := s.books.LedgerBook(ctx, loan.BookID)
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	line := s.engine.Settle(*loan, book, s.now(), s.cfg.Rates)
	return &line, nil
}

// ResolvePenalty flags a loan's penalty as settled.
func (s *service) ResolvePenalty(ctx context.Context, loanID uuid.UUID) (*Loan, error) {
	if !s.limiter.Allow() {
		return nil, fmt.Errorf("rate limit exceeded")
	}

	ctx, span := s.tracer.Start(ctx, "ledger.resolve_penalty",
		trace.WithAttributes(attribute.String("loan.id", loanID.String())))
	defer span.End()

	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	resolved := s.engine.MarkResolved(*loan)
	resolved.Version = loan.Version + 1

	eventData, err := json.Marshal(PenaltyResolvedEvent{LoanID: loanID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}
	event := eventstore.Event{
		AggregateID:   loanID,
		AggregateType: "loan",
		EventType:     "PenaltyResolved",
		EventData:     eventData,
		Version:       resolved.Version,
	}
	if err := s.es.AppendEvents(ctx, loanID, "loan", loan.Version, []eventstore.Event{event}); err != nil {
		return nil, fmt.Errorf("failed to append event: %w", err)
	}

	query := `
		UPDATE loans
		SET resolved = TRUE, version = $1, updated_at = NOW()
		WHERE id = $2 AND version = $3
	`
	if _, err := s.db.ExecContext(ctx, query, resolved.Version, loanID, loan.Version); err != nil {
		return nil, fmt.Errorf("failed to update read model: %w", err)
	}

	return &resolved, nil
}

const loanColumns = `id, book_id, customer_id, borrowed_at, due_at, returned_at,
	broken_page_count, is_lost, lost_replacement_cost, manual_late_fee, resolved, version`

// GetLoan retrieves a single loan from the read model.
func (s *service) GetLoan(ctx context.Context, loanID uuid.UUID) (*Loan, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, loanID)
	loan, err := scanLoan(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("loan with ID %s not found", loanID)
		}
		return nil, fmt.Errorf("failed to get loan from read model: %w", err)
	}
	return loan, nil
}

// ListLoans retrieves loans matching the filter.
func (s *service) ListLoans(ctx context.Context, filter LoanFilter) ([]*Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE 1=1`
	args := []interface{}{}
	if filter.CustomerID != uuid.Nil {
		args = append(args, filter.CustomerID)
		query += fmt.Sprintf(" AND customer_id = $%d", len(args))
	}
	if filter.BookID != uuid.Nil {
		args = append(args, filter.BookID)
		query += fmt.Sprintf(" AND book_id = $%d", len(args))
	}
	if filter.ActiveOnly {
		query += " AND returned_at IS NULL AND is_lost = FALSE"
	}
	query += " ORDER BY borrowed_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var loans []*Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

// loanSnapshot loads every loan that can influence a borrow decision for
// the given book and customer.
func (s *service) loanSnapshot(ctx context.Context, bookID, customerID uuid.UUID) ([]Loan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE book_id = $1 OR customer_id = $2`,
		bookID, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, *loan)
	}
	return loans, rows.Err()
}

func (s *service) reservationSnapshot(ctx context.Context, bookID, customerID uuid.UUID) ([]Reservation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, book_id, customer_id, created_at, expires_at, status
		FROM reservations
		WHERE book_id = $1 AND customer_id = $2
	`, bookID, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []Reservation
	for rows.Next() {
		var r Reservation
		var status string
		if err := rows.Scan(&r.ID, &r.BookID, &r.CustomerID, &r.CreatedAt, &r.ExpiresAt, &status); err != nil {
			return nil, err
		}
		r.Status = ReservationStatus(status)
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

// ListReservations retrieves reservations, optionally filtered by status.
func (s *service) ListReservations(ctx context.Context, status ReservationStatus) ([]*Reservation, error) {
	query := `
		SELECT id, book_id, customer_id, created_at, expires_at, status
		FROM reservations
	`
	args := []interface{}{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, string(status))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*Reservation
	for rows.Next() {
		var r Reservation
		var st string
		if err := rows.Scan(&r.ID, &r.BookID, &r.CustomerID, &r.CreatedAt, &r.ExpiresAt, &st); err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		r.Status = ReservationStatus(st)
		reservations = append(reservations, &r)
	}
	return reservations, rows.Err()
}

// CancelReservation moves a pending reservation to CANCELLED.
func (s *service) CancelReservation(ctx context.Context, reservationID uuid.UUID) (*Reservation, error) {
	return s.transitionReservation(ctx, reservationID, ReservationCancelled)
}

// FulfillReservation converts a pending reservation into a loan. The borrow
// rules are re-checked against a fresh snapshot; the reservation stays
// PENDING when they fail.
func (s *service) FulfillReservation(ctx context.Context, reservationID uuid.UUID) (*Loan, error) {
	if !s.limiter.Allow() {
		return nil, fmt.Errorf("rate limit exceeded")
	}

	ctx, span := s.tracer.Start(ctx, "ledger.fulfill_reservation",
		trace.WithAttributes(attribute.String("reservation.id", reservationID.String())))
	defer span.End()

	reservation, err := s.getReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.Status != ReservationPending {
		return nil, ErrReservationTerminal
	}

	customer, err := s.customers.LedgerCustomer(ctx, reservation.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	book, err := s.books.LedgerBook(ctx, reservation.BookID)
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	loans, err := s.loanSnapshot(ctx, reservation.BookID, reservation.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load loan snapshot: %w", err)
	}

	loan, err := StartLoan(customer, book, loans, s.cfg.LoanPeriodDays, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.persistNewLoan(ctx, loan); err != nil {
		return nil, err
	}
	if _, err := s.transitionReservation(ctx, reservationID, ReservationFulfilled); err != nil {
		return nil, err
	}

	return &loan, nil
}

// ExpireReservations materializes the derived EXPIRED state for every
// pending reservation past its expiry. It returns the number swept.
func (s *service) ExpireReservations(ctx context.Context) (int, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.expire_reservations")
	defer span.End()

	pending, err := s.ListReservations(ctx, ReservationPending)
	if err != nil {
		return 0, err
	}

	snapshot := make([]Reservation, 0, len(pending))
	for _, r := range pending {
		snapshot = append(snapshot, *r)
	}

	expired := ExpireDue(snapshot, s.now())
	for _, r := range expired {
		if _, err := s.transitionReservation(ctx, r.ID, ReservationExpired); err != nil {
			return 0, err
		}
	}
	return len(expired), nil
}

func (s *service) getReservation(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	var r Reservation
	var status string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, book_id, customer_id, created_at, expires_at, status
		FROM reservations
		WHERE id = $1
	`, id).Scan(&r.ID, &r.BookID, &r.CustomerID, &r.CreatedAt, &r.ExpiresAt, &status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("reservation with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get reservation from read model: %w", err)
	}
	r.Status = ReservationStatus(status)
	return &r, nil
}

func (s *service) transitionReservation(ctx context.Context, id uuid.UUID, to ReservationStatus) (*Reservation, error) {
	reservation, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	moved, err := reservation.Transition(to)
	if err != nil {
		return nil, err
	}

	eventData, err := json.Marshal(ReservationStatusChangedEvent{ReservationID: id, Status: to})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}
	version, err := s.es.GetCurrentVersion(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation version: %w", err)
	}
	event := eventstore.Event{
		AggregateID:   id,
		AggregateType: "reservation",
		EventType:     "ReservationStatusChanged",
		EventData:     eventData,
		Version:       version + 1,
	}
	if err := s.es.AppendEvents(ctx, id, "reservation", version, []eventstore.Event{event}); err != nil {
		return nil, fmt.Errorf("failed to append event: %w", err)
	}

	query := `
		UPDATE reservations
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`
	if _, err := s.db.ExecContext(ctx, query, string(to), id, string(ReservationPending)); err != nil {
		return nil, fmt.Errorf("failed to update read model: %w", err)
	}

	return &moved, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLoan(row rowScanner) (*Loan, error) {
	loan := &Loan{}
	var returnedAt sql.NullTime
	var lostCost, manualFee decimal.NullDecimal

	err := row.Scan(
		&loan.ID,
		&loan.BookID,
		&loan.CustomerID,
		&loan.BorrowedAt,
		&loan.DueAt,
		&returnedAt,
		&loan.BrokenPageCount,
		&loan.IsLost,
		&lostCost,
		&manualFee,
		&loan.Resolved,
		&loan.Version,
	)
	if err != nil {
		return nil, err
	}

	if returnedAt.Valid {
		t := returnedAt.Time
		loan.ReturnedAt = &t
	}
	if lostCost.Valid {
		loan.LostReplacementCost = &lostCost.Decimal
	}
	if manualFee.Valid {
		loan.ManualLateFee = &manualFee.Decimal
	}
	return loan, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
