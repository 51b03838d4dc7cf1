package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eximbot/internal/entities"
)

func TestCreateCategoryKeyboardCoversAllCategories(t *testing.T) {
	kb := CreateCategoryKeyboard()

	var datas []string
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			datas = append(datas, *btn.CallbackData)
		}
	}

	for _, cat := range categoryButtons {
		assert.Contains(t, datas, "cat_"+cat.Key)
	}
	assert.Contains(t, datas, "action_topup")
}

func TestCreateFollowUpMenuOffersRepeatSearch(t *testing.T) {
	kb := CreateFollowUpMenu()

	var datas []string
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			datas = append(datas, *btn.CallbackData)
		}
	}

	assert.Contains(t, datas, "action_repeat")
	assert.Contains(t, datas, "action_menu")
	assert.Contains(t, datas, "action_topup")
}

func TestCreateTopupKeyboardData(t *testing.T) {
	kb := CreateTopupKeyboard()

	require.Len(t, kb.InlineKeyboard, len(topupPackages)+1)
	assert.Equal(t, "topup_25_50000", *kb.InlineKeyboard[0][0].CallbackData)
	assert.Contains(t, kb.InlineKeyboard[0][0].Text, "Rp50.000")
}

func TestCreateSaveKeyboard(t *testing.T) {
	kb := CreateSaveKeyboard(42, 3.0)

	require.Len(t, kb.InlineKeyboard, 1)
	assert.Equal(t, "save_42", *kb.InlineKeyboard[0][0].CallbackData)
	assert.Contains(t, kb.InlineKeyboard[0][0].Text, "3.0")
}

func TestCreateOrdersKeyboardPagination(t *testing.T) {
	orders := []entities.CreditOrder{{OrderID: "abcd1234-ffff", UserID: 5, Credits: 25}}

	kb := CreateOrdersKeyboard(orders, 2, 3)

	require.Len(t, kb.InlineKeyboard, 2)
	assert.Equal(t, "fulfill_abcd1234-ffff", *kb.InlineKeyboard[0][0].CallbackData)
	assert.Contains(t, kb.InlineKeyboard[0][0].Text, "abcd1234")

	nav := kb.InlineKeyboard[1]
	require.Len(t, nav, 2)
	assert.Equal(t, "orders_page_1", *nav[0].CallbackData)
	assert.Equal(t, "orders_page_3", *nav[1].CallbackData)
}

func TestShortOrderID(t *testing.T) {
	assert.Equal(t, "abcd1234", shortOrderID("abcd1234-ffff"))
	assert.Equal(t, "short", shortOrderID("short"))
}
