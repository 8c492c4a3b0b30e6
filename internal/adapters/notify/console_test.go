package notify_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alejandrodnm/polyedge/internal/adapters/notify"
	"github.com/alejandrodnm/polyedge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePortfolio() domain.Portfolio {
	return domain.Portfolio{
		Balance:        101.0,
		InitialBalance: 100.0,
		Trades: []domain.Trade{
			{
				ID:             "t1",
				MarketID:       "m1",
				Title:          "Will BTC be above $120k?",
				Type:           domain.BuyYes,
				Amount:         1.5,
				Price:          0.6,
				CurrentBalance: 98.5,
				ExpiresAt:      time.Now().UTC().Add(6 * time.Hour),
			},
			{
				ID:          "t2",
				MarketID:    "m2",
				Title:       "Will ETH be above $5k?",
				Type:        domain.BuyNo,
				Amount:      2.0,
				Price:       0.4,
				Resolved:    true,
				Result:      domain.ResultWin,
				FinalPayout: 5.0,
			},
		},
	}
}

func TestConsole_Summary(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, false)

	require.NoError(t, c.Notify(context.Background(), makePortfolio()))

	out := buf.String()
	assert.Contains(t, out, "balance 101.00 USDC")
	assert.Contains(t, out, "+1.00")
	assert.Contains(t, out, "open:1")
	assert.Contains(t, out, "W:1 L:0")

	// Sin tabla no se listan los trades
	assert.NotContains(t, out, "BUY_YES")
}

func TestConsole_Table(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true)

	require.NoError(t, c.Notify(context.Background(), makePortfolio()))

	out := buf.String()
	assert.Contains(t, out, "BUY_YES")
	assert.Contains(t, out, "Will BTC be above $120k?")

	// Solo los abiertos: el WIN resuelto no aparece en la tabla
	assert.NotContains(t, out, "BUY_NO")
}

func TestConsole_TableSkippedWithoutOpenTrades(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true)

	require.NoError(t, c.Notify(context.Background(), domain.Portfolio{Balance: 100, InitialBalance: 100}))

	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}
