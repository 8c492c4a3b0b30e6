package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/polyedge/internal/application/risk"
	"github.com/alejandrodnm/polyedge/internal/domain"
	"github.com/alejandrodnm/polyedge/internal/ports"
)

// Resolver finalizes expired, unresolved trades against the outcome source.
// Trades whose market is unreachable or not yet settled stay open and get
// retried on every subsequent sweep — no backoff, the scheduler interval is
// the only pacing.
type Resolver struct {
	ledger   ports.LedgerStore
	outcomes ports.OutcomeSource
	balance  *risk.BalanceController
}

// New creates a Resolver wired to the ledger, the outcome source and the
// balance controller that receives settlement credits.
func New(ledger ports.LedgerStore, outcomes ports.OutcomeSource, balance *risk.BalanceController) *Resolver {
	return &Resolver{ledger: ledger, outcomes: outcomes, balance: balance}
}

// Sweep walks the journal once and settles whatever it can. Per-trade
// failures are logged and skipped. Returns the number of trades settled.
// Only a persistence failure or a circuit-breaker trip aborts the sweep.
func (r *Resolver) Sweep(ctx context.Context) (int, error) {
	trades, err := r.ledger.LoadTrades(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolver.Sweep: load trades: %w", err)
	}

	now := time.Now().UTC()
	var settled []domain.Trade
	var breakerErr error

	for _, t := range trades {
		// Idempotence gate: a resolved trade never triggers another
		// outcome query, let alone another credit.
		if t.Resolved || !t.Expired(now) {
			continue
		}

		outcome, isSettled, err := r.outcomes.FetchOutcome(ctx, t.MarketID)
		if err != nil {
			slog.Warn("resolver: outcome source failed, will retry next sweep",
				"market", t.MarketID, "err", err)
			continue
		}
		if !isSettled {
			slog.Debug("resolver: market expired but not settled yet",
				"market", t.MarketID)
			continue
		}

		if t.Wins(outcome) {
			payout := t.Shares() // 1 USDC per share on a binary market
			if err := r.balance.ApplyDelta(ctx, payout, domain.ReasonAdjustment); err != nil {
				if errors.Is(err, risk.ErrCircuitBreaker) {
					breakerErr = err
					break
				}
				// Credit not durably recorded → leave the trade open so the
				// next sweep retries the whole settlement.
				slog.Error("resolver: failed to credit payout, trade stays open",
					"market", t.MarketID, "err", err)
				continue
			}
			t.Resolved = true
			t.Result = domain.ResultWin
			t.FinalPayout = payout
			slog.Info("resolver: WIN",
				"market", t.MarketID,
				"title", t.Title,
				"payout", fmt.Sprintf("%.2f", payout),
				"profit", fmt.Sprintf("%+.2f", payout-t.Amount),
			)
		} else {
			// The debit already happened at entry; nothing comes back.
			t.Resolved = true
			t.Result = domain.ResultLoss
			t.FinalPayout = 0
			slog.Info("resolver: LOSS",
				"market", t.MarketID,
				"title", t.Title,
				"amount", fmt.Sprintf("-%.2f", t.Amount),
			)
		}
		settled = append(settled, t)
	}

	if len(settled) > 0 {
		if err := r.ledger.SaveResolved(ctx, settled); err != nil {
			// Credits are already in the checkpoint log; the startup
			// reconciliation check will flag the drift if we die here.
			return len(settled), fmt.Errorf("resolver.Sweep: persist resolutions: %w", err)
		}
		slog.Info("resolver: journal updated with results", "settled", len(settled))
	}

	return len(settled), breakerErr
}
