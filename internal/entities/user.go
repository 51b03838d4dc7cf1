package entities

// AdminUser is a dashboard account for the order-fulfillment panel. It is
// linked to a Telegram identity so fulfillments done over HTTP run under the
// same allowlisted actor as fulfillments done in chat.
type AdminUser struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	TelegramID   int64  `json:"telegram_id"`
	Role         string `json:"role"`
}
