package risk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/alejandrodnm/polyedge/internal/domain"
	"github.com/alejandrodnm/polyedge/internal/ports"
)

// ErrCircuitBreaker signals catastrophic loss. It is fatal: the caller must
// stop the whole process, not just the current iteration.
var ErrCircuitBreaker = errors.New("risk: circuit breaker tripped, balance below 50% of initial")

const (
	// circuitBreakerFraction is the stop-loss floor relative to the initial balance.
	circuitBreakerFraction = 0.5

	// reconcileTolerance absorbs float rounding between journal and checkpoint log.
	reconcileTolerance = 0.01
)

// BalanceController owns the single authoritative balance for the process
// lifetime. Single writer, passed explicitly to whoever needs it — no
// package-level state.
type BalanceController struct {
	ledger  ports.LedgerStore
	initial float64
	balance float64
	tripped bool
}

// NewBalanceController recovers the balance from the last checkpoint, or
// initializes it from initialBalance and writes an INITIAL checkpoint when
// the history is empty.
func NewBalanceController(ctx context.Context, ledger ports.LedgerStore, initialBalance float64) (*BalanceController, error) {
	bc := &BalanceController{ledger: ledger, initial: initialBalance}

	cp, ok, err := bc.ledger.LastCheckpoint(ctx)
	if err != nil {
		return nil, fmt.Errorf("risk.NewBalanceController: recover checkpoint: %w", err)
	}

	if ok {
		bc.balance = cp.Balance
		slog.Info("balance recovered from checkpoint history",
			"balance", fmt.Sprintf("%.2f", bc.balance),
			"last_reason", cp.Reason,
			"last_ts", cp.Timestamp.Format(time.RFC3339),
		)
	} else {
		bc.balance = initialBalance
		if err := bc.ledger.AppendCheckpoint(ctx, domain.Checkpoint{
			Timestamp: time.Now().UTC(),
			Balance:   bc.balance,
			Delta:     0,
			Reason:    domain.ReasonInitial,
		}); err != nil {
			return nil, fmt.Errorf("risk.NewBalanceController: write initial checkpoint: %w", err)
		}
		slog.Info("balance initialized", "balance", fmt.Sprintf("%.2f", bc.balance))
	}

	bc.reconcileJournal(ctx)

	// A restart below the floor must not resume trading.
	if bc.balance < bc.initial*circuitBreakerFraction {
		bc.tripped = true
		return bc, ErrCircuitBreaker
	}

	return bc, nil
}

// ApplyDelta adds delta to the balance (positive = credit, negative = debit),
// persists the checkpoint, and evaluates the circuit breaker. The in-memory
// value only moves after the checkpoint is durably written, so it always
// equals the last persisted entry.
func (bc *BalanceController) ApplyDelta(ctx context.Context, delta float64, reason domain.CheckpointReason) error {
	if bc.tripped {
		return ErrCircuitBreaker
	}

	next := bc.balance + delta
	if err := bc.ledger.AppendCheckpoint(ctx, domain.Checkpoint{
		Timestamp: time.Now().UTC(),
		Balance:   next,
		Delta:     delta,
		Reason:    reason,
	}); err != nil {
		return fmt.Errorf("risk.ApplyDelta: persist checkpoint: %w", err)
	}
	bc.balance = next

	slog.Info("balance updated",
		"balance", fmt.Sprintf("%.2f", bc.balance),
		"delta", fmt.Sprintf("%+.2f", delta),
		"reason", reason,
	)

	if bc.balance < bc.initial*circuitBreakerFraction {
		bc.tripped = true
		slog.Error("CRITICAL: balance below 50% of initial, halting all trading",
			"balance", fmt.Sprintf("%.2f", bc.balance),
			"initial", fmt.Sprintf("%.2f", bc.initial),
		)
		return ErrCircuitBreaker
	}
	return nil
}

// Current returns the in-memory balance, which always equals the last
// persisted checkpoint.
func (bc *BalanceController) Current() float64 { return bc.balance }

// Initial returns the configured starting balance.
func (bc *BalanceController) Initial() float64 { return bc.initial }

// Tripped reports whether the circuit breaker has fired.
func (bc *BalanceController) Tripped() bool { return bc.tripped }

// reconcileJournal recomputes the balance implied by the trade journal and
// warns when it diverges from the checkpoint beyond tolerance. The checkpoint
// log stays authoritative either way; this only surfaces drift caused by a
// crash between the debit and the trade record.
func (bc *BalanceController) reconcileJournal(ctx context.Context) {
	trades, err := bc.ledger.LoadTrades(ctx)
	if err != nil || len(trades) == 0 {
		return
	}

	implied := bc.initial
	for _, t := range trades {
		implied -= t.Amount
		if t.Resolved {
			implied += t.FinalPayout
		}
	}

	if diff := math.Abs(implied - bc.balance); diff > reconcileTolerance {
		slog.Warn("journal and checkpoint history disagree; keeping checkpoint balance",
			"checkpoint", fmt.Sprintf("%.4f", bc.balance),
			"journal_implied", fmt.Sprintf("%.4f", implied),
			"diff", fmt.Sprintf("%.4f", diff),
		)
	}
}
