package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"eximbot/internal/entities"
	"eximbot/internal/infrastructure"
	"eximbot/internal/logger"
	"eximbot/internal/metrics"
	"eximbot/internal/repository"
	"eximbot/internal/usecases"
)

const (
	// updateBudget bounds the database work done for one chat update.
	updateBudget = 30 * time.Second
	// maxCardsPerReply keeps result batches readable in chat.
	maxCardsPerReply = 10
	ordersPageSize   = 5
)

// Bot is the Telegram collaborator: it renders structured core outcomes into
// chat messages and keyboards. No transactional logic lives here.
type Bot struct {
	api             *tgbotapi.BotAPI
	search          *usecases.SearchService
	unlock          *usecases.UnlockEngine
	workflow        *usecases.OrderWorkflow
	credits         *repository.CreditRepository
	saved           *repository.SavedContactRepository
	importers       *repository.ImporterRepository
	stats           *repository.StatsRepository
	sessions        *infrastructure.SessionManager
	limiter         *infrastructure.UserRateLimiter
	metrics         *metrics.Metrics
	startingCredits float64
}

type BotDeps struct {
	Search          *usecases.SearchService
	Unlock          *usecases.UnlockEngine
	Workflow        *usecases.OrderWorkflow
	Credits         *repository.CreditRepository
	Saved           *repository.SavedContactRepository
	Importers       *repository.ImporterRepository
	Stats           *repository.StatsRepository
	Sessions        *infrastructure.SessionManager
	Limiter         *infrastructure.UserRateLimiter
	Metrics         *metrics.Metrics
	StartingCredits float64
}

func NewBot(token string, deps BotDeps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram connect: %w", err)
	}
	return &Bot{
		api:             api,
		search:          deps.Search,
		unlock:          deps.Unlock,
		workflow:        deps.Workflow,
		credits:         deps.Credits,
		saved:           deps.Saved,
		importers:       deps.Importers,
		stats:           deps.Stats,
		sessions:        deps.Sessions,
		limiter:         deps.Limiter,
		metrics:         deps.Metrics,
		startingCredits: deps.StartingCredits,
	}, nil
}

// Run consumes the long-poll update channel until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	logger.Log.Info("telegram bot connected", zap.String("username", b.api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleMessage(update.Message)
			}
			if update.CallbackQuery != nil {
				b.handleCallback(update.CallbackQuery)
			}
		}
	}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if !b.limiter.Allow(chatID) {
		return // drop silently, same as spammed clicks
	}

	ctx, cancel := context.WithTimeout(context.Background(), updateBudget)
	defer cancel()

	if msg.IsCommand() {
		b.handleCommand(ctx, chatID, msg.Command(), msg.CommandArguments())
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	b.track(ctx, chatID, "search")
	b.sessions.GetOrCreateSession(chatID).SetLastQuery(text)
	b.sendSearchResults(ctx, chatID, b.search.Search(ctx, text))
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, command, args string) {
	b.track(ctx, chatID, command)

	switch command {
	case "start":
		redeemed, err := b.credits.HasRedeemedFreeCredits(ctx, chatID)
		if err != nil {
			logger.Log.Warn("free credits lookup failed", zap.Int64("user_id", chatID), zap.Error(err))
		}

		var text string
		if redeemed {
			text = fmt.Sprintf(
				"Selamat datang kembali! 👋\n\nSaldo Anda %.1f kredit.\n\n"+
					"Pilih kategori atau ketik kata kunci (misal: _ikan segar_):",
				b.credits.Get(ctx, chatID))
		} else {
			if err := b.credits.Initialize(ctx, chatID, b.startingCredits); err != nil {
				logger.Log.Error("starting credits grant failed", zap.Int64("user_id", chatID), zap.Error(err))
			}
			text = fmt.Sprintf(
				"Selamat datang! 👋\n\nSaya bantu cari kontak importir luar negeri. "+
					"Saldo awal Anda %.1f kredit.\n\nPilih kategori atau ketik kata kunci (misal: _ikan segar_):",
				b.startingCredits)
		}
		reply := tgbotapi.NewMessage(chatID, text)
		reply.ParseMode = "Markdown"
		keyboard := CreateCategoryKeyboard()
		reply.ReplyMarkup = &keyboard
		b.send(reply)

	case "saved":
		contacts, err := b.saved.List(ctx, chatID)
		if err != nil {
			logger.Log.Error("saved list failed", zap.Int64("user_id", chatID), zap.Error(err))
			b.sendText(chatID, "⚠️ Gagal memuat daftar, coba lagi ya.")
			return
		}
		b.sendMarkdown(chatID, formatSavedList(contacts))

	case "credits":
		balance := b.credits.Get(ctx, chatID)
		b.sendMarkdown(chatID, fmt.Sprintf("💰 Saldo Anda: *%.1f kredit*\n\nTop up dengan /topup", balance))

	case "topup":
		reply := tgbotapi.NewMessage(chatID, "💳 Pilih paket kredit:")
		keyboard := CreateTopupKeyboard()
		reply.ReplyMarkup = &keyboard
		b.send(reply)

	case "stats":
		stats, err := b.stats.Stats(ctx, chatID)
		if err != nil {
			b.sendText(chatID, "⚠️ Gagal memuat statistik.")
			return
		}
		b.sendMarkdown(chatID, formatStats(stats))

	case "orders":
		page := 1
		if n, err := strconv.Atoi(strings.TrimSpace(args)); err == nil && n > 0 {
			page = n
		}
		b.sendPendingOrders(ctx, chatID, page)

	default:
		b.sendText(chatID, "Perintah tidak dikenal. Coba /start, /saved, /credits, /topup atau /stats.")
	}
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	// Telegram omits Message on callbacks for old or inaccessible messages.
	if cb.Message == nil || cb.Message.Chat == nil {
		return
	}

	data := cb.Data
	chatID := cb.Message.Chat.ID
	session := b.sessions.GetOrCreateSession(chatID)

	// Check if click is allowed (debouncing & concurrent request prevention)
	if !session.IsAllowedClick() {
		b.api.Request(tgbotapi.NewCallback(cb.ID, "Sabar ya..."))
		return
	}
	session.StartProcessing()
	defer session.FinishProcessing()

	b.api.Request(tgbotapi.NewCallback(cb.ID, ""))

	ctx, cancel := context.WithTimeout(context.Background(), updateBudget)
	defer cancel()

	switch {
	case strings.HasPrefix(data, "cat_"):
		key := strings.TrimPrefix(data, "cat_")
		b.track(ctx, chatID, "category")
		b.sendSearchResults(ctx, chatID, b.search.SearchCategory(ctx, key))

	case strings.HasPrefix(data, "save_"):
		b.handleUnlock(ctx, chatID, strings.TrimPrefix(data, "save_"))

	case strings.HasPrefix(data, "topup_"):
		b.handleTopup(ctx, chatID, strings.TrimPrefix(data, "topup_"))

	case strings.HasPrefix(data, "orders_page_"):
		page, err := strconv.Atoi(strings.TrimPrefix(data, "orders_page_"))
		if err != nil || page < 1 {
			return
		}
		b.sendPendingOrders(ctx, chatID, page)

	case strings.HasPrefix(data, "fulfill_"):
		b.handleFulfill(ctx, chatID, strings.TrimPrefix(data, "fulfill_"))

	case data == "action_menu":
		reply := tgbotapi.NewMessage(chatID, "👋 Pilih kategori:")
		keyboard := CreateCategoryKeyboard()
		reply.ReplyMarkup = &keyboard
		b.send(reply)

	case data == "action_topup":
		reply := tgbotapi.NewMessage(chatID, "💳 Pilih paket kredit:")
		keyboard := CreateTopupKeyboard()
		reply.ReplyMarkup = &keyboard
		b.send(reply)

	case data == "action_repeat":
		query := session.GetLastQuery()
		if query == "" {
			b.sendText(chatID, "Ketik kata kunci dulu ya, misal: ikan segar")
			return
		}
		b.track(ctx, chatID, "search")
		b.sendSearchResults(ctx, chatID, b.search.Search(ctx, query))
	}
}

func (b *Bot) sendSearchResults(ctx context.Context, chatID int64, results []entities.DisplayContact) {
	if len(results) == 0 {
		reply := tgbotapi.NewMessage(chatID, "🔍 Tidak ada importir yang cocok. Coba kata kunci lain.")
		keyboard := CreateFollowUpMenu()
		reply.ReplyMarkup = &keyboard
		b.send(reply)
		return
	}

	savedNames, err := b.saved.Names(ctx, chatID)
	if err != nil {
		logger.Log.Warn("saved names lookup failed", zap.Int64("user_id", chatID), zap.Error(err))
		savedNames = map[string]struct{}{}
	}

	shown := len(results)
	if shown > maxCardsPerReply {
		shown = maxCardsPerReply
	}

	for _, c := range results[:shown] {
		_, isSaved := savedNames[c.Name]
		view := usecases.Project(c, isSaved)

		msg := tgbotapi.NewMessage(chatID, formatContactCard(view))
		msg.ParseMode = "Markdown"
		if !view.Saved {
			keyboard := CreateSaveKeyboard(c.ID, view.Tier)
			msg.ReplyMarkup = &keyboard
		}
		b.send(msg)
	}

	summary := tgbotapi.NewMessage(chatID,
		fmt.Sprintf("Menampilkan %d dari %d hasil.", shown, len(results)))
	keyboard := CreateFollowUpMenu()
	summary.ReplyMarkup = &keyboard
	b.send(summary)
}

func (b *Bot) handleUnlock(ctx context.Context, chatID int64, rawID string) {
	importerID, err := strconv.Atoi(rawID)
	if err != nil {
		return
	}

	imp, err := b.importers.GetByID(ctx, importerID)
	if errors.Is(err, repository.ErrNotFound) {
		b.sendText(chatID, "❌ Kontak tidak ditemukan di katalog.")
		return
	}
	if err != nil {
		b.sendText(chatID, "⚠️ Terjadi kesalahan, coba lagi ya.")
		return
	}

	outcome := b.unlock.Unlock(ctx, chatID, imp.Name)
	b.sendMarkdown(chatID, formatUnlockOutcome(outcome, imp.Name))

	if outcome.Status == usecases.UnlockSaved {
		view := usecases.Project(imp.ToDisplay(), true)
		b.sendMarkdown(chatID, formatContactCard(view))
	}
}

func (b *Bot) handleTopup(ctx context.Context, chatID int64, payload string) {
	parts := strings.SplitN(payload, "_", 2)
	if len(parts) != 2 {
		return
	}
	credits, err1 := strconv.Atoi(parts[0])
	amount, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return
	}

	orderID := uuid.NewString()
	if err := b.workflow.Create(ctx, orderID, chatID, credits, amount); err != nil {
		logger.Log.Error("order create failed", zap.Int64("user_id", chatID), zap.Error(err))
		b.sendText(chatID, "⚠️ Gagal membuat pesanan, coba lagi ya.")
		return
	}

	order := entities.CreditOrder{
		OrderID: orderID,
		UserID:  chatID,
		Credits: credits,
		Amount:  amount,
		Status:  entities.OrderStatusPending,
	}
	b.sendMarkdown(chatID, formatOrderInstructions(order))
	b.sendOrderQR(chatID, order)
}

// sendOrderQR attaches the transfer reference as a QR image so the payment
// proof can carry the exact order id.
func (b *Bot) sendOrderQR(chatID int64, order entities.CreditOrder) {
	payload := fmt.Sprintf("EXIMBOT-TOPUP|%s|%d|%d", order.OrderID, order.Credits, order.Amount)
	png, err := qrPNG(payload)
	if err != nil {
		logger.Log.Warn("order qr encode failed", zap.String("order_id", order.OrderID), zap.Error(err))
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "order.png", Bytes: png})
	photo.Caption = "Lampirkan QR ini pada bukti transfer Anda."
	b.send(photo)
}

func (b *Bot) handleFulfill(ctx context.Context, chatID int64, orderID string) {
	result := b.workflow.Fulfill(ctx, chatID, orderID)
	switch result.Status {
	case usecases.Fulfilled:
		b.sendMarkdown(chatID, fmt.Sprintf("✅ Pesanan `%s` terkonfirmasi. %d kredit masuk ke user %d.",
			orderID, result.Credits, result.UserID))
		b.sendMarkdown(result.UserID, fmt.Sprintf("🎉 Top up terkonfirmasi! %d kredit masuk ke saldo Anda.\nCek dengan /credits", result.Credits))
	case usecases.FulfillNotFound:
		b.sendText(chatID, "❌ Pesanan tidak ditemukan.")
	case usecases.AlreadyFulfilled:
		b.sendText(chatID, "ℹ️ Pesanan sudah pernah dikonfirmasi.")
	default:
		if errors.Is(result.Err, usecases.ErrUnauthorized) {
			b.sendText(chatID, "🚫 Perintah khusus admin.")
			return
		}
		b.sendText(chatID, "⚠️ Konfirmasi gagal, coba lagi ya.")
	}
}

func (b *Bot) sendPendingOrders(ctx context.Context, chatID int64, page int) {
	orders, totalPages, err := b.workflow.ListPending(ctx, chatID, page, ordersPageSize)
	if errors.Is(err, usecases.ErrUnauthorized) {
		b.sendText(chatID, "🚫 Perintah khusus admin.")
		return
	}
	if err != nil {
		b.sendText(chatID, "⚠️ Gagal memuat pesanan.")
		return
	}

	reply := tgbotapi.NewMessage(chatID, formatPendingOrders(orders, page, totalPages))
	reply.ParseMode = "Markdown"
	if len(orders) > 0 {
		keyboard := CreateOrdersKeyboard(orders, page, totalPages)
		reply.ReplyMarkup = &keyboard
	}
	b.send(reply)
}

func (b *Bot) track(ctx context.Context, chatID int64, command string) {
	if err := b.stats.Track(ctx, chatID, command); err != nil {
		logger.Log.Warn("command tracking failed", zap.Int64("user_id", chatID), zap.Error(err))
	}
	if b.metrics != nil {
		b.metrics.CommandsHandled.WithLabelValues(command).Inc()
	}
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		logger.Log.Warn("telegram send failed", zap.Error(err))
		if b.metrics != nil {
			b.metrics.Errors.WithLabelValues("telegram").Inc()
		}
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	b.send(msg)
}

func qrPNG(payload string) ([]byte, error) {
	return qrcode.Encode(payload, qrcode.Medium, 256)
}
