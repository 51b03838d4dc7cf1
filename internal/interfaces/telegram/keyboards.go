package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"eximbot/internal/entities"
)

// categoryButtons is the closed category set, in display order. Data values
// are the search-layer category keys.
var categoryButtons = []struct {
	Label string
	Key   string
}{
	{"🐟 Ikan Hidup (0301)", "0301"},
	{"🐟 Ikan Segar (0302)", "0302"},
	{"🧊 Ikan Beku (0303)", "0303"},
	{"🍣 Fillet Ikan (0304)", "0304"},
	{"🐠 Ikan Teri (0305)", "anchovy"},
	{"☕ Kopi (0901)", "0901"},
	{"🍇 Manggis (0810)", "manggis"},
	{"🥥 Minyak Kelapa (1513)", "1513"},
	{"🔥 Briket Arang (44029010)", "44029010"},
}

// topupPackages are the credit bundles offered in chat. Amounts are rupiah.
var topupPackages = []struct {
	Credits int
	Amount  int
}{
	{25, 50000},
	{75, 150000},
	{150, 250000},
}

// CreateCategoryKeyboard creates inline keyboard buttons for the HS-code
// category menu, two per row.
func CreateCategoryKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, cat := range categoryButtons {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(cat.Label, "cat_"+cat.Key))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("💳 Top Up Kredit", "action_topup"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// CreateTopupKeyboard lists the purchasable credit bundles.
func CreateTopupKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range topupPackages {
		label := fmt.Sprintf("%d kredit — Rp%s", p.Credits, formatRupiah(p.Amount))
		data := fmt.Sprintf("topup_%d_%d", p.Credits, p.Amount)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, data),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏠 Kembali", "action_menu"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// CreateSaveKeyboard offers to unlock one search result.
func CreateSaveKeyboard(importerID int, tier float64) tgbotapi.InlineKeyboardMarkup {
	label := fmt.Sprintf("🔓 Buka kontak (%.1f kredit)", tier)
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("save_%d", importerID)),
		),
	)
}

// CreateFollowUpMenu creates menu buttons after a result batch.
func CreateFollowUpMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 Menu Kategori", "action_menu"),
			tgbotapi.NewInlineKeyboardButtonData("🔁 Cari Lagi", "action_repeat"),
			tgbotapi.NewInlineKeyboardButtonData("💳 Top Up", "action_topup"),
		),
	)
}

// CreateOrdersKeyboard renders fulfill buttons for one page of pending
// orders, plus pagination when there is more than one page.
func CreateOrdersKeyboard(orders []entities.CreditOrder, page, totalPages int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, o := range orders {
		label := fmt.Sprintf("✅ %s — %d kredit (user %d)", shortOrderID(o.OrderID), o.Credits, o.UserID)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "fulfill_"+o.OrderID),
		))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if page > 1 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅️", fmt.Sprintf("orders_page_%d", page-1)))
	}
	if page < totalPages {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("➡️", fmt.Sprintf("orders_page_%d", page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func shortOrderID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
