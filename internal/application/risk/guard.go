package risk

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/polyedge/internal/ports"
)

// Guard is the single admission check run before every prospective trade.
// It never mutates anything: on admit, the caller is responsible for the
// debit and the journal write, in that order.
type Guard struct {
	ledger              ports.LedgerStore
	maxPositionFraction float64
}

// NewGuard creates a Guard with the configured max position fraction (0-1).
func NewGuard(ledger ports.LedgerStore, maxPositionFraction float64) *Guard {
	return &Guard{ledger: ledger, maxPositionFraction: maxPositionFraction}
}

// Admit decides whether a trade of `amount` on marketID may proceed given the
// current balance. A rejection is a normal outcome, logged with its reason.
// The max-position bound is inclusive: exactly balance*fraction passes.
func (g *Guard) Admit(ctx context.Context, marketID string, amount, balance float64) bool {
	if amount <= 0 {
		slog.Debug("guard: rejected, non-positive amount",
			"market", marketID, "amount", amount)
		return false
	}

	exists, err := g.ledger.HasPosition(ctx, marketID)
	if err != nil {
		// Can't verify uniqueness → don't trade. Retried next iteration.
		slog.Warn("guard: rejected, position lookup failed",
			"market", marketID, "err", err)
		return false
	}
	if exists {
		slog.Info("guard: rejected, market already traded",
			"market", marketID)
		return false
	}

	maxSpend := balance * g.maxPositionFraction
	if amount > maxSpend {
		slog.Info("guard: rejected, position too large",
			"market", marketID,
			"amount", fmt.Sprintf("%.2f", amount),
			"max", fmt.Sprintf("%.2f", maxSpend),
		)
		return false
	}

	if amount > balance {
		slog.Info("guard: rejected, insufficient balance",
			"market", marketID,
			"amount", fmt.Sprintf("%.2f", amount),
			"balance", fmt.Sprintf("%.2f", balance),
		)
		return false
	}

	return true
}
