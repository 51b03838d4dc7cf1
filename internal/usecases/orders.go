package usecases

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"eximbot/internal/entities"
	"eximbot/internal/metrics"
	"eximbot/internal/repository"
)

type orderStore interface {
	Create(ctx context.Context, order entities.CreditOrder) error
	ListPending(ctx context.Context, page, pageSize int) ([]entities.CreditOrder, int, error)
	GetForUpdateTx(ctx context.Context, tx pgx.Tx, orderID string) (*entities.CreditOrder, error)
	MarkFulfilledTx(ctx context.Context, tx pgx.Tx, orderID string) error
}

type orderLedger interface {
	CreditTx(ctx context.Context, tx pgx.Tx, userID int64, amount float64) (float64, error)
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
)

type FulfillStatus int

const (
	Fulfilled FulfillStatus = iota
	FulfillNotFound
	AlreadyFulfilled
	FulfillError
)

// FulfillResult reports an order fulfillment. UserID and Credits are set on
// Fulfilled so the chat layer can notify the recipient.
type FulfillResult struct {
	Status  FulfillStatus
	UserID  int64
	Credits int
	Err     error
}

// OrderWorkflow drives manual credit top-ups: anyone may open an order,
// only allowlisted admins may list and fulfill them.
type OrderWorkflow struct {
	db      txBeginner
	orders  orderStore
	credits orderLedger
	admins  map[int64]struct{}
	metrics *metrics.Metrics
}

func NewOrderWorkflow(db txBeginner, orders orderStore,
	credits orderLedger, admins map[int64]struct{}, m *metrics.Metrics) *OrderWorkflow {
	return &OrderWorkflow{db: db, orders: orders, credits: credits, admins: admins, metrics: m}
}

// IsAdmin reports whether the actor is on the allowlist supplied at
// construction.
func (w *OrderWorkflow) IsAdmin(actorID int64) bool {
	_, ok := w.admins[actorID]
	return ok
}

// Create opens a pending top-up order. Duplicate order ids surface as
// repository.ErrDuplicate.
func (w *OrderWorkflow) Create(ctx context.Context, orderID string, userID int64, credits, amount int) error {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" || credits <= 0 || amount <= 0 {
		return ErrInvalidInput
	}

	err := w.orders.Create(ctx, entities.CreditOrder{
		OrderID: orderID,
		UserID:  userID,
		Credits: credits,
		Amount:  amount,
	})
	if err == nil && w.metrics != nil {
		w.metrics.OrdersCreated.Inc()
	}
	return err
}

// ListPending returns one admin-only page of open orders plus the page count.
func (w *OrderWorkflow) ListPending(ctx context.Context, actorID int64, page, pageSize int) ([]entities.CreditOrder, int, error) {
	if !w.IsAdmin(actorID) {
		return nil, 0, ErrUnauthorized
	}
	return w.orders.ListPending(ctx, page, pageSize)
}

// Fulfill credits the order's user and flips the order to fulfilled, in one
// transaction. It is idempotent: after the first Fulfilled, repeated calls
// report AlreadyFulfilled with no side effects.
func (w *OrderWorkflow) Fulfill(ctx context.Context, actorID int64, orderID string) FulfillResult {
	if !w.IsAdmin(actorID) {
		return FulfillResult{Status: FulfillError, Err: ErrUnauthorized}
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return FulfillResult{Status: FulfillError, Err: ErrInvalidInput}
	}

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return FulfillResult{Status: FulfillError, Err: err}
	}
	defer tx.Rollback(ctx)

	order, err := w.orders.GetForUpdateTx(ctx, tx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return FulfillResult{Status: FulfillNotFound}
	}
	if err != nil {
		return FulfillResult{Status: FulfillError, Err: err}
	}

	if order.Status == entities.OrderStatusFulfilled {
		return FulfillResult{Status: AlreadyFulfilled, UserID: order.UserID, Credits: order.Credits}
	}

	if _, err := w.credits.CreditTx(ctx, tx, order.UserID, float64(order.Credits)); err != nil {
		return FulfillResult{Status: FulfillError, Err: err}
	}
	if err := w.orders.MarkFulfilledTx(ctx, tx, orderID); err != nil {
		return FulfillResult{Status: FulfillError, Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return FulfillResult{Status: FulfillError, Err: err}
	}
	if w.metrics != nil {
		w.metrics.OrdersFulfilled.Inc()
	}
	return FulfillResult{Status: Fulfilled, UserID: order.UserID, Credits: order.Credits}
}
