package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"eximbot/internal/entities"
	"eximbot/internal/usecases"
)

func TestFormatRupiah(t *testing.T) {
	assert.Equal(t, "0", formatRupiah(0))
	assert.Equal(t, "500", formatRupiah(500))
	assert.Equal(t, "50.000", formatRupiah(50000))
	assert.Equal(t, "1.250.000", formatRupiah(1250000))
}

func TestFormatContactCardLockedShowsPrice(t *testing.T) {
	view := usecases.ContactView{
		DisplayContact: entities.DisplayContact{
			Name:    "PT SamXXXXXX",
			Country: "Japan",
			Contact: "+81 90XXXXXX",
		},
		Saved: false,
		Tier:  2.0,
	}

	card := formatContactCard(view)
	assert.Contains(t, card, "PT SamXXXXXX")
	assert.Contains(t, card, "2.0 kredit")
	assert.NotContains(t, card, "tersimpan di daftar")
}

func TestFormatContactCardSavedHidesPrice(t *testing.T) {
	view := usecases.ContactView{
		DisplayContact: entities.DisplayContact{Name: "Ocean Foods Ltd"},
		Saved:          true,
		Tier:           3.0,
	}

	card := formatContactCard(view)
	assert.Contains(t, card, "Sudah tersimpan")
	assert.NotContains(t, card, "kredit")
}

func TestFormatSavedListEmpty(t *testing.T) {
	assert.Contains(t, formatSavedList(nil), "Belum ada kontak")
}

func TestFormatSavedListTimestampLayout(t *testing.T) {
	savedAt := time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC)
	out := formatSavedList([]entities.SavedContact{{
		ImporterName: "Ocean Foods Ltd",
		Country:      "Japan",
		SavedAt:      savedAt,
	}})

	assert.Contains(t, out, "2026-08-30 14:05")
	assert.Contains(t, out, "Ocean Foods Ltd")
}

func TestFormatUnlockOutcome(t *testing.T) {
	out := formatUnlockOutcome(usecases.UnlockOutcome{
		Status:  usecases.UnlockInsufficientCredits,
		Balance: 1.0,
		Cost:    3.0,
	}, "Ocean Foods Ltd")
	assert.Contains(t, out, "butuh 3.0")
	assert.Contains(t, out, "sisa 1.0")

	out = formatUnlockOutcome(usecases.UnlockOutcome{
		Status:  usecases.UnlockSaved,
		Balance: 0.5,
	}, "Ocean Foods Ltd")
	assert.Contains(t, out, "Ocean Foods Ltd")
	assert.Contains(t, out, "0.5")
}
