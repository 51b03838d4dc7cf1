package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"eximbot/internal/entities"
)

// OrderRepository owns credit_orders. Status transitions happen only through
// the order workflow's transaction.
type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts a pending order. A reused order_id surfaces as ErrDuplicate.
func (r *OrderRepository) Create(ctx context.Context, order entities.CreditOrder) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO credit_orders (order_id, user_id, credits, amount, status)
		VALUES ($1, $2, $3, $4, $5)
	`, order.OrderID, order.UserID, order.Credits, order.Amount, entities.OrderStatusPending)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// ListPending returns one page of pending orders, newest first, plus the
// total page count.
func (r *OrderRepository) ListPending(ctx context.Context, page, pageSize int) ([]entities.CreditOrder, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	var total int
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM credit_orders WHERE status = $1", entities.OrderStatusPending).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count pending orders: %w", err)
	}

	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	rows, err := r.db.Query(ctx, `
		SELECT order_id, user_id, credits, amount, status, created_at, fulfilled_at
		FROM credit_orders
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, entities.OrderStatusPending, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list pending orders: %w", err)
	}
	defer rows.Close()

	orders := []entities.CreditOrder{}
	for rows.Next() {
		var o entities.CreditOrder
		if err := rows.Scan(&o.OrderID, &o.UserID, &o.Credits, &o.Amount, &o.Status, &o.CreatedAt, &o.FulfilledAt); err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, totalPages, rows.Err()
}

// Get returns an order by id.
func (r *OrderRepository) Get(ctx context.Context, orderID string) (*entities.CreditOrder, error) {
	return scanOrder(r.db.QueryRow(ctx, `
		SELECT order_id, user_id, credits, amount, status, created_at, fulfilled_at
		FROM credit_orders
		WHERE order_id = $1
	`, orderID))
}

// GetForUpdateTx locks and returns an order inside the caller's transaction.
func (r *OrderRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, orderID string) (*entities.CreditOrder, error) {
	return scanOrder(tx.QueryRow(ctx, `
		SELECT order_id, user_id, credits, amount, status, created_at, fulfilled_at
		FROM credit_orders
		WHERE order_id = $1
		FOR UPDATE
	`, orderID))
}

func scanOrder(row pgx.Row) (*entities.CreditOrder, error) {
	var o entities.CreditOrder
	err := row.Scan(&o.OrderID, &o.UserID, &o.Credits, &o.Amount, &o.Status, &o.CreatedAt, &o.FulfilledAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// MarkFulfilledTx flips the order to fulfilled inside the caller's transaction.
func (r *OrderRepository) MarkFulfilledTx(ctx context.Context, tx pgx.Tx, orderID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE credit_orders
		SET status = $2, fulfilled_at = NOW()
		WHERE order_id = $1
	`, orderID, entities.OrderStatusFulfilled)
	return err
}
