package usecases

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"

	"eximbot/internal/entities"
	"eximbot/internal/repository"
)

type fakeOrderStore struct {
	order     *entities.CreditOrder
	getErr    error
	created   []entities.CreditOrder
	fulfilled []string
}

func (s *fakeOrderStore) Create(ctx context.Context, order entities.CreditOrder) error {
	s.created = append(s.created, order)
	return nil
}

func (s *fakeOrderStore) ListPending(ctx context.Context, page, pageSize int) ([]entities.CreditOrder, int, error) {
	return []entities.CreditOrder{}, 1, nil
}

func (s *fakeOrderStore) GetForUpdateTx(ctx context.Context, tx pgx.Tx, orderID string) (*entities.CreditOrder, error) {
	return s.order, s.getErr
}

func (s *fakeOrderStore) MarkFulfilledTx(ctx context.Context, tx pgx.Tx, orderID string) error {
	s.fulfilled = append(s.fulfilled, orderID)
	return nil
}

func newTestWorkflow(admins ...int64) *OrderWorkflow {
	set := make(map[int64]struct{}, len(admins))
	for _, id := range admins {
		set[id] = struct{}{}
	}
	return NewOrderWorkflow(nil, nil, nil, set, nil)
}

func TestIsAdmin(t *testing.T) {
	w := newTestWorkflow(42)

	assert.True(t, w.IsAdmin(42))
	assert.False(t, w.IsAdmin(7))
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	w := newTestWorkflow()
	ctx := context.Background()

	assert.ErrorIs(t, w.Create(ctx, "", 1, 25, 50000), ErrInvalidInput)
	assert.ErrorIs(t, w.Create(ctx, "   ", 1, 25, 50000), ErrInvalidInput)
	assert.ErrorIs(t, w.Create(ctx, "ord-1", 1, 0, 50000), ErrInvalidInput)
	assert.ErrorIs(t, w.Create(ctx, "ord-1", 1, -5, 50000), ErrInvalidInput)
	assert.ErrorIs(t, w.Create(ctx, "ord-1", 1, 25, 0), ErrInvalidInput)
}

func TestListPendingRequiresAdmin(t *testing.T) {
	w := newTestWorkflow(42)

	_, _, err := w.ListPending(context.Background(), 7, 1, 5)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestFulfillRequiresAdmin(t *testing.T) {
	w := newTestWorkflow(42)

	res := w.Fulfill(context.Background(), 7, "ord-1")
	assert.Equal(t, FulfillError, res.Status)
	assert.ErrorIs(t, res.Err, ErrUnauthorized)
}

func TestFulfillRejectsBlankOrderID(t *testing.T) {
	w := newTestWorkflow(42)

	res := w.Fulfill(context.Background(), 42, "   ")
	assert.Equal(t, FulfillError, res.Status)
	assert.ErrorIs(t, res.Err, ErrInvalidInput)
}

func TestFulfillCreditsAndMarksInOneTransaction(t *testing.T) {
	db := &fakeDB{}
	store := &fakeOrderStore{order: &entities.CreditOrder{
		OrderID: "ord-1", UserID: 9, Credits: 25, Amount: 50000,
		Status: entities.OrderStatusPending,
	}}
	ledger := &fakeLedger{}
	w := NewOrderWorkflow(db, store, ledger, map[int64]struct{}{42: {}}, nil)

	res := w.Fulfill(context.Background(), 42, "ord-1")

	assert.Equal(t, Fulfilled, res.Status)
	assert.Equal(t, int64(9), res.UserID)
	assert.Equal(t, 25, res.Credits)
	assert.Equal(t, 25.0, ledger.credited)
	assert.Equal(t, int64(9), ledger.creditedTo)
	assert.Equal(t, []string{"ord-1"}, store.fulfilled)
	assert.True(t, db.tx.committed)
}

func TestFulfillIdempotent(t *testing.T) {
	db := &fakeDB{}
	store := &fakeOrderStore{order: &entities.CreditOrder{
		OrderID: "ord-1", UserID: 9, Credits: 25,
		Status: entities.OrderStatusFulfilled,
	}}
	ledger := &fakeLedger{}
	w := NewOrderWorkflow(db, store, ledger, map[int64]struct{}{42: {}}, nil)

	res := w.Fulfill(context.Background(), 42, "ord-1")

	assert.Equal(t, AlreadyFulfilled, res.Status)
	assert.Equal(t, int64(9), res.UserID)
	assert.Equal(t, 25, res.Credits)
	assert.Equal(t, 0.0, ledger.credited)
	assert.Empty(t, store.fulfilled)
	assert.False(t, db.tx.committed)
	assert.True(t, db.tx.rolledBack)
}

func TestFulfillNotFound(t *testing.T) {
	db := &fakeDB{}
	store := &fakeOrderStore{getErr: repository.ErrNotFound}
	w := NewOrderWorkflow(db, store, &fakeLedger{}, map[int64]struct{}{42: {}}, nil)

	res := w.Fulfill(context.Background(), 42, "ord-ghost")

	assert.Equal(t, FulfillNotFound, res.Status)
	assert.False(t, db.tx.committed)
}
