package usecases

import "eximbot/internal/entities"

// Unlock price rungs in credits. WhatsApp-reachable contacts are the top
// rung, a complete phone/email/website triple the second, everything else
// the base rate.
const (
	PriceWAAvailable  = 3.0
	PriceFullContact  = 2.0
	PriceBase         = 1.0
	// MinUnlockPrice is a billing floor. Price never produces it on a
	// well-formed row; the unlock engine clamps to it and logs an anomaly
	// if a cost ever comes out lower.
	MinUnlockPrice = 0.5
)

// Price maps a contact to its unlock cost in credits. It is total: missing
// fields are treated as empty and never make it fail.
func Price(c entities.DisplayContact) float64 {
	if c.WAAvailable {
		return PriceWAAvailable
	}
	if c.Contact != "" && c.Email != "" && c.Website != "" {
		return PriceFullContact
	}
	return PriceBase
}
