package entities

import "time"

const (
	OrderStatusPending   = "pending"
	OrderStatusFulfilled = "fulfilled"
)

// CreditOrder is a manual top-up order. It is created pending and flips to
// fulfilled exactly once, when an admin confirms the payment out of band.
type CreditOrder struct {
	OrderID     string
	UserID      int64
	Credits     int
	Amount      int
	Status      string
	CreatedAt   time.Time
	FulfilledAt *time.Time
}

// CommandStats aggregates per-command usage counters for one user.
type CommandStats struct {
	UserID     int64
	Total      int
	PerCommand map[string]int
}
