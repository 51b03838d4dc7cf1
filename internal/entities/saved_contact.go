package entities

import "time"

// SavedContact is the per-user snapshot materialized when a contact is
// unlocked. Rows are immutable after insert.
type SavedContact struct {
	ID                 int
	UserID             int64
	ImporterName       string
	Country            string
	Phone              string
	Email              string
	Website            string
	WAAvailability     bool
	HSCode             string
	ProductDescription string
	SavedAt            time.Time
}
