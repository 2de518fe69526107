package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/camuig/trade-journal/internal/config"
	"github.com/camuig/trade-journal/internal/logger"
	"github.com/camuig/trade-journal/internal/storage"
)

// Notifier forwards journal events to a single Telegram chat. A disabled
// notifier only logs.
type Notifier struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	enabled bool
	logger  *logger.Logger
}

func NewNotifier(cfg *config.Config, log *logger.Logger) *Notifier {
	if !cfg.Telegram.Enabled {
		return &Notifier{enabled: false, logger: log}
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		log.Error("failed to create telegram bot", "error", err)
		return &Notifier{enabled: false, logger: log}
	}

	log.Info("telegram bot connected", "username", bot.Self.UserName)

	return &Notifier{
		bot:     bot,
		chatID:  cfg.Telegram.ChatID,
		enabled: true,
		logger:  log,
	}
}

func (n *Notifier) NotifyTrade(t *storage.Trade) {
	n.send(tradeMessage(t))
}

func (n *Notifier) NotifyOverAllocation(saleID uint, amount, available float64) {
	n.send(overAllocationMessage(saleID, amount, available))
}

func (n *Notifier) NotifyError(context string, err error) {
	n.send(errorMessage(context, err))
}

func (n *Notifier) NotifyStatus(message string) {
	n.send(message)
}

// escape quotes user-entered text for ModeMarkdown.
func escape(text string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, text)
}

func tradeMessage(t *storage.Trade) string {
	name, currency := escape(t.AssetName), escape(t.Currency)
	if t.IsSell() {
		emoji := "🔴"
		if t.ProfitLoss > 0 {
			emoji = "💰"
		}
		return fmt.Sprintf("%s *SELL* %s\nQty: %g @ %.2f %s\nTotal: %.2f\nP&L: %.2f",
			emoji, name, t.Quantity, t.Price, currency, t.TotalAmount, t.ProfitLoss)
	}
	msg := fmt.Sprintf("🟢 *BUY* %s\nQty: %g @ %.2f %s\nTotal: %.2f",
		name, t.Quantity, t.Price, currency, t.TotalAmount)
	if t.RelatedTradeID != nil {
		msg += fmt.Sprintf("\nFunded by sale #%d", *t.RelatedTradeID)
	}
	return msg
}

func errorMessage(context string, err error) string {
	return fmt.Sprintf("⚠️ *Error* [%s]\n%s", escape(context), escape(err.Error()))
}

func overAllocationMessage(saleID uint, amount, available float64) string {
	return fmt.Sprintf("⚠️ *Over-allocation* sale #%d\nPurchase: %.2f\nAvailable: %.2f\nExcess: %.2f",
		saleID, amount, available, amount-available)
}

func (n *Notifier) send(text string) {
	if !n.enabled {
		n.logger.Debug("telegram disabled, message dropped", "text", text)
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error("send telegram message", "error", err)
	}
}
