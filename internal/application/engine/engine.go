package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/polyedge/internal/application/risk"
	"github.com/alejandrodnm/polyedge/internal/domain"
	"github.com/alejandrodnm/polyedge/internal/ports"
)

// ScannerService is the minimal surface the engine needs from the scanner.
type ScannerService interface {
	RunOnce(ctx context.Context) ([]domain.Opportunity, error)
}

// Sweeper is the minimal surface the engine needs from the resolver.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// HeartbeatWriter marks a completed iteration for external monitoring.
type HeartbeatWriter interface {
	Beat(now time.Time) error
}

// Config holds the engine's trading parameters.
type Config struct {
	Interval            time.Duration
	Simulation          bool
	MaxPositionFraction float64
}

// Engine runs the single-threaded iteration loop: scan → admit → trade →
// resolve. Iterations never overlap; all ledger mutation happens here or in
// the resolver it drives, on this one logical thread.
type Engine struct {
	cfg       Config
	scanner   ScannerService
	guard     *risk.Guard
	balance   *risk.BalanceController
	ledger    ports.LedgerStore
	resolver  Sweeper
	executor  ports.OrderExecutor // nil in simulation mode
	heartbeat HeartbeatWriter
	notifier  ports.Notifier
}

// New wires an Engine. executor may be nil when cfg.Simulation is true.
func New(
	cfg Config,
	scanner ScannerService,
	guard *risk.Guard,
	balance *risk.BalanceController,
	ledger ports.LedgerStore,
	res Sweeper,
	executor ports.OrderExecutor,
	heartbeat HeartbeatWriter,
	notifier ports.Notifier,
) *Engine {
	return &Engine{
		cfg:       cfg,
		scanner:   scanner,
		guard:     guard,
		balance:   balance,
		ledger:    ledger,
		resolver:  res,
		executor:  executor,
		heartbeat: heartbeat,
		notifier:  notifier,
	}
}

// Run executes one iteration immediately, then one per tick, until the
// context is cancelled or the circuit breaker trips. A breaker trip is
// returned to the caller so the whole process stops — trading must not
// survive a 50% drawdown.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting",
		"interval", e.cfg.Interval,
		"simulation", e.cfg.Simulation,
		"balance", fmt.Sprintf("%.2f", e.balance.Current()),
	)

	if err := e.Iterate(ctx); err != nil {
		if errors.Is(err, risk.ErrCircuitBreaker) {
			return err
		}
		slog.Error("iteration failed", "err", err)
	}

	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("engine stopped")
			return nil
		case <-ticker.C:
			if err := e.Iterate(ctx); err != nil {
				if errors.Is(err, risk.ErrCircuitBreaker) {
					return err
				}
				slog.Error("iteration failed", "err", err)
			}
		}
	}
}

// Iterate runs exactly one scan → trade → resolve cycle.
func (e *Engine) Iterate(ctx context.Context) error {
	start := time.Now()

	if err := e.heartbeat.Beat(start); err != nil {
		slog.Warn("heartbeat write failed", "err", err)
	}

	opps, err := e.scanner.RunOnce(ctx)
	if err != nil {
		// Transient feed failure: skip trading this round, but still try
		// to settle whatever is already on the books.
		slog.Warn("scan failed, skipping trade phase", "err", err)
		opps = nil
	}

	for _, opp := range opps {
		if err := e.tryTrade(ctx, opp); err != nil {
			if errors.Is(err, risk.ErrCircuitBreaker) {
				return err
			}
			slog.Error("trade attempt failed", "market", opp.Market.ID, "err", err)
		}
	}

	if _, err := e.resolver.Sweep(ctx); err != nil {
		if errors.Is(err, risk.ErrCircuitBreaker) {
			return err
		}
		slog.Error("resolution sweep failed", "err", err)
	}

	e.notifyPortfolio(ctx)

	slog.Info("iteration complete",
		"opportunities", len(opps),
		"balance", fmt.Sprintf("%.2f", e.balance.Current()),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// tryTrade sizes, admits and commits a single trade intent. Write order is
// fixed: order placement (live) → balance debit → journal record. A crash in
// between under-counts available balance, never over-counts it.
func (e *Engine) tryTrade(ctx context.Context, opp domain.Opportunity) error {
	m := opp.Market
	balance := e.balance.Current()
	size := balance * e.cfg.MaxPositionFraction

	if !e.guard.Admit(ctx, m.ID, size, balance) {
		return nil
	}

	slog.Info("executing trade",
		"mode", mode(e.cfg.Simulation),
		"market", m.ID,
		"title", m.Title,
		"side", opp.Signal.Recommendation,
		"amount", fmt.Sprintf("%.2f", size),
		"price", fmt.Sprintf("%.2f", m.Price),
		"source", opp.Signal.Source,
	)

	reason := domain.ReasonSimTrade
	orderID := ""

	if !e.cfg.Simulation {
		placed, err := e.placeOrder(ctx, opp, size)
		if err != nil {
			// Best effort: no ledger mutation if the order never existed.
			return fmt.Errorf("engine.tryTrade: place order: %w", err)
		}
		reason = domain.ReasonLiveTrade
		orderID = placed.OrderID
	}

	if err := e.balance.ApplyDelta(ctx, -size, reason); err != nil {
		return fmt.Errorf("engine.tryTrade: debit: %w", err)
	}

	trade := domain.Trade{
		ID:             uuid.New().String(),
		MarketID:       m.ID,
		Title:          m.Title,
		Type:           opp.Signal.Recommendation,
		Amount:         size,
		Price:          m.Price,
		Timestamp:      time.Now().UTC(),
		CurrentBalance: e.balance.Current(), // snapshot right after the debit
		ExpiresAt:      m.EndDate,
		Simulation:     e.cfg.Simulation,
		OrderID:        orderID,
	}

	if err := e.ledger.RecordTrade(ctx, trade); err != nil {
		// Debit is already durable; the startup reconciliation check
		// surfaces this drift. Never report the trade as executed.
		return fmt.Errorf("engine.tryTrade: record trade: %w", err)
	}
	return nil
}

// placeOrder submits a live BUY limit order for the recommended side.
func (e *Engine) placeOrder(ctx context.Context, opp domain.Opportunity, size float64) (ports.PlacedOrder, error) {
	tokenID := opp.Market.YesToken()
	if opp.Signal.Recommendation == domain.BuyNo {
		tokenID = opp.Market.NoToken()
	}

	negRisk, err := e.executor.IsNegRisk(ctx, tokenID)
	if err != nil {
		return ports.PlacedOrder{}, fmt.Errorf("neg-risk lookup: %w", err)
	}

	return e.executor.PlaceOrder(ctx, ports.PlaceOrderRequest{
		TokenID: tokenID,
		Price:   opp.Market.Price,
		Size:    size,
		NegRisk: negRisk,
	})
}

func (e *Engine) notifyPortfolio(ctx context.Context) {
	if e.notifier == nil {
		return
	}
	trades, err := e.ledger.LoadTrades(ctx)
	if err != nil {
		return
	}
	p := domain.Portfolio{
		Balance:        e.balance.Current(),
		InitialBalance: e.balance.Initial(),
		Trades:         trades,
	}
	if err := e.notifier.Notify(ctx, p); err != nil {
		slog.Warn("notifier error", "err", err)
	}
}

func mode(simulation bool) string {
	if simulation {
		return "SIMULATION"
	}
	return "LIVE"
}
