package telegram

import (
	"fmt"
	"strings"

	"eximbot/internal/entities"
	"eximbot/internal/usecases"
)

const savedAtLayout = "2006-01-02 15:04"

func formatRupiah(amount int) string {
	s := fmt.Sprintf("%d", amount)
	var sb strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			sb.WriteByte('.')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// formatContactCard renders one search result. Locked contacts show the
// redacted fields and the unlock price hint.
func formatContactCard(view usecases.ContactView) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏢 *%s*\n", view.Name))
	if view.Country != "" {
		sb.WriteString(fmt.Sprintf("🌍 %s\n", view.Country))
	}
	if view.HSCode != "" {
		sb.WriteString(fmt.Sprintf("📦 %s", view.HSCode))
		if view.ProductDescription != "" {
			sb.WriteString(fmt.Sprintf(" — %s", view.ProductDescription))
		}
		sb.WriteString("\n")
	}
	if view.Contact != "" {
		sb.WriteString(fmt.Sprintf("📞 %s\n", view.Contact))
	}
	if view.Email != "" {
		sb.WriteString(fmt.Sprintf("✉️ %s\n", view.Email))
	}
	if view.Website != "" {
		sb.WriteString(fmt.Sprintf("🌐 %s\n", view.Website))
	}
	if view.WAAvailable {
		sb.WriteString("💬 WhatsApp tersedia\n")
	}
	if view.Saved {
		sb.WriteString("✅ Sudah tersimpan di daftar Anda\n")
	} else {
		sb.WriteString(fmt.Sprintf("💰 Biaya buka: %.1f kredit\n", view.Tier))
	}
	return sb.String()
}

// formatSavedList renders the user's unlocked contacts, newest first.
func formatSavedList(contacts []entities.SavedContact) string {
	if len(contacts) == 0 {
		return "📭 Belum ada kontak tersimpan. Cari importir lalu buka kontaknya."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📒 *Kontak Tersimpan* (%d)\n\n", len(contacts)))
	for _, sc := range contacts {
		sb.WriteString(fmt.Sprintf("🏢 *%s*", sc.ImporterName))
		if sc.Country != "" {
			sb.WriteString(fmt.Sprintf(" — %s", sc.Country))
		}
		sb.WriteString("\n")
		if sc.Phone != "" {
			sb.WriteString(fmt.Sprintf("  📞 %s\n", sc.Phone))
		}
		if sc.Email != "" {
			sb.WriteString(fmt.Sprintf("  ✉️ %s\n", sc.Email))
		}
		if sc.Website != "" {
			sb.WriteString(fmt.Sprintf("  🌐 %s\n", sc.Website))
		}
		if sc.WAAvailability {
			sb.WriteString("  💬 WhatsApp tersedia\n")
		}
		sb.WriteString(fmt.Sprintf("  🕐 %s\n\n", sc.SavedAt.Format(savedAtLayout)))
	}
	return sb.String()
}

func formatStats(stats *entities.CommandStats) string {
	if stats.Total == 0 {
		return "📊 Belum ada aktivitas tercatat."
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 *Statistik Anda* — total %d perintah\n\n", stats.Total))
	for command, count := range stats.PerCommand {
		sb.WriteString(fmt.Sprintf("  /%s: %d\n", command, count))
	}
	return sb.String()
}

func formatUnlockOutcome(outcome usecases.UnlockOutcome, importerName string) string {
	switch outcome.Status {
	case usecases.UnlockSaved:
		return fmt.Sprintf("✅ Kontak *%s* terbuka dan tersimpan!\n💰 Sisa kredit: %.1f\n\nLihat dengan /saved", importerName, outcome.Balance)
	case usecases.UnlockAlreadySaved:
		return fmt.Sprintf("ℹ️ Kontak *%s* sudah ada di daftar Anda. Lihat dengan /saved", importerName)
	case usecases.UnlockInsufficientCredits:
		return fmt.Sprintf("❌ Kredit tidak cukup (butuh %.1f, sisa %.1f).\n💳 Top up dengan /topup", outcome.Cost, outcome.Balance)
	case usecases.UnlockNotFound:
		return "❌ Kontak tidak ditemukan di katalog."
	default:
		return "⚠️ Terjadi kesalahan, coba lagi ya."
	}
}

func formatOrderInstructions(order entities.CreditOrder) string {
	return fmt.Sprintf(
		"🧾 *Pesanan dibuat*\n\nID: `%s`\nKredit: %d\nTotal: Rp%s\n\n"+
			"Silakan transfer sesuai nominal lalu kirim bukti ke admin. "+
			"Kredit masuk setelah admin konfirmasi.",
		order.OrderID, order.Credits, formatRupiah(order.Amount))
}

func formatPendingOrders(orders []entities.CreditOrder, page, totalPages int) string {
	if len(orders) == 0 {
		return "📭 Tidak ada pesanan menunggu."
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 *Pesanan menunggu* (hal %d/%d)\n\n", page, totalPages))
	for _, o := range orders {
		sb.WriteString(fmt.Sprintf("`%s`\n  user %d — %d kredit — Rp%s — %s\n",
			o.OrderID, o.UserID, o.Credits, formatRupiah(o.Amount), o.CreatedAt.Format(savedAtLayout)))
	}
	return sb.String()
}
