package telegram

import (
	"errors"
	"strings"
	"testing"

	"github.com/camuig/trade-journal/internal/config"
	"github.com/camuig/trade-journal/internal/logger"
	"github.com/camuig/trade-journal/internal/storage"
)

func TestTradeMessage(t *testing.T) {
	saleID := uint(7)
	buy := &storage.Trade{
		AssetName: "Sber", TradeType: storage.TradeBuy, Quantity: 10, Price: 100,
		TotalAmount: 1000, Currency: "toman", RelatedTradeID: &saleID,
	}
	msg := tradeMessage(buy)
	for _, want := range []string{"*BUY* Sber", "Qty: 10 @ 100.00 toman", "Total: 1000.00", "sale #7"} {
		if !strings.Contains(msg, want) {
			t.Errorf("buy message %q lacks %q", msg, want)
		}
	}

	sell := &storage.Trade{
		AssetName: "Sber", TradeType: storage.TradeSell, Quantity: 5, Price: 150,
		TotalAmount: 750, ProfitLoss: 250, Currency: "toman",
	}
	msg = tradeMessage(sell)
	if !strings.HasPrefix(msg, "💰 *SELL* Sber") || !strings.Contains(msg, "P&L: 250.00") {
		t.Errorf("sell message = %q", msg)
	}

	sell.ProfitLoss = -10
	if msg := tradeMessage(sell); !strings.HasPrefix(msg, "🔴") {
		t.Errorf("losing sell message = %q", msg)
	}
}

func TestMessagesEscapeMarkdown(t *testing.T) {
	trade := &storage.Trade{
		AssetName: "Gold_Coin*1", TradeType: storage.TradeBuy, Quantity: 1, Price: 10,
		TotalAmount: 10, Currency: "toman",
	}
	if msg := tradeMessage(trade); !strings.Contains(msg, `Gold\_Coin\*1`) {
		t.Errorf("trade message not escaped: %q", msg)
	}

	msg := errorMessage("recalculate Gold_Coin", errors.New("update position: near `*`"))
	if !strings.Contains(msg, `Gold\_Coin`) || !strings.Contains(msg, "near \\`\\*\\`") {
		t.Errorf("error message not escaped: %q", msg)
	}
	if !strings.HasPrefix(msg, "⚠️ *Error*") {
		t.Errorf("markup lost: %q", msg)
	}
}

func TestOverAllocationMessage(t *testing.T) {
	msg := overAllocationMessage(3, 1100000, 1000000)
	if !strings.Contains(msg, "sale #3") || !strings.Contains(msg, "Excess: 100000.00") {
		t.Errorf("message = %q", msg)
	}
}

func TestDisabledNotifierDoesNotSend(t *testing.T) {
	n := NewNotifier(config.Default(), logger.Discard())
	if n.enabled {
		t.Fatal("notifier enabled without telegram config")
	}
	n.NotifyTrade(&storage.Trade{AssetName: "Sber", TradeType: storage.TradeBuy})
	n.NotifyOverAllocation(1, 2, 1)
	n.NotifyError("recalculate Sber", errors.New("boom"))
	n.NotifyStatus("journal started")
}
