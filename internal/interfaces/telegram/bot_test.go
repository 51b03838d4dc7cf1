package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func TestHandleCallbackIgnoresMissingMessage(t *testing.T) {
	b := &Bot{}

	assert.NotPanics(t, func() {
		b.handleCallback(&tgbotapi.CallbackQuery{ID: "1", Data: "cat_0301"})
	})
	assert.NotPanics(t, func() {
		b.handleCallback(&tgbotapi.CallbackQuery{ID: "2", Data: "save_7", Message: &tgbotapi.Message{}})
	})
}
