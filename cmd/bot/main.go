package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/polyedge/config"
	"github.com/alejandrodnm/polyedge/internal/adapters/coingecko"
	"github.com/alejandrodnm/polyedge/internal/adapters/notify"
	"github.com/alejandrodnm/polyedge/internal/adapters/polymarket"
	"github.com/alejandrodnm/polyedge/internal/adapters/storage"
	"github.com/alejandrodnm/polyedge/internal/application/engine"
	"github.com/alejandrodnm/polyedge/internal/application/resolver"
	"github.com/alejandrodnm/polyedge/internal/application/risk"
	"github.com/alejandrodnm/polyedge/internal/application/scanner"
	"github.com/alejandrodnm/polyedge/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one iteration and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print open positions table after each iteration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("polyedge starting",
		"config", *configPath,
		"mode", tradeMode(cfg.Trading.Simulation),
		"interval", cfg.Interval(),
		"initial_balance", cfg.Trading.InitialBalance,
		"min_discrepancy", cfg.Trading.MinDiscrepancy,
		"max_position_fraction", cfg.Trading.MaxPositionFraction,
		"storage", cfg.Storage.Backend,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := openLedger(cfg)
	if err != nil {
		slog.Error("failed to open ledger storage", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	balance, err := risk.NewBalanceController(ctx, store, cfg.Trading.InitialBalance)
	if err != nil {
		if errors.Is(err, risk.ErrCircuitBreaker) {
			slog.Error("refusing to start: recovered balance is below the stop-loss floor")
		} else {
			slog.Error("failed to recover balance", "err", err)
		}
		os.Exit(1)
	}

	client := polymarket.NewClient(cfg.API.CLOBBase, cfg.API.GammaBase, polymarket.MarketFilter{
		MinLiquidity:    cfg.Trading.MinLiquidity,
		MaxHoursToClose: cfg.Trading.MaxHoursToClose,
	})

	var executor ports.OrderExecutor
	if !cfg.Trading.Simulation {
		auth, err := polymarket.NewAuthClient(client, cfg.Trading.PrivateKey)
		if err != nil {
			slog.Error("failed to init trading client", "err", err)
			os.Exit(1)
		}
		executor = polymarket.NewTradingClient(auth)
		slog.Info("live trading enabled", "wallet", auth.Address())
	}

	prices := coingecko.NewClient(cfg.API.CoinGeckoBase)
	analyzer := scanner.NewAnalyzer(prices, cfg.Trading.MinDiscrepancy)
	scan := scanner.New(client, analyzer)
	guard := risk.NewGuard(store, cfg.Trading.MaxPositionFraction)
	res := resolver.New(store, client, balance)
	heartbeat := storage.NewHeartbeatFile(cfg.Storage.Dir)
	notifier := notify.NewConsole(*table)

	eng := engine.New(engine.Config{
		Interval:            cfg.Interval(),
		Simulation:          cfg.Trading.Simulation,
		MaxPositionFraction: cfg.Trading.MaxPositionFraction,
	}, scan, guard, balance, store, res, executor, heartbeat, notifier)

	if *once {
		err = eng.Iterate(ctx)
	} else {
		err = eng.Run(ctx)
	}
	if err != nil {
		if errors.Is(err, risk.ErrCircuitBreaker) {
			slog.Error("circuit breaker tripped: trading halted permanently",
				"balance", fmt.Sprintf("%.2f", balance.Current()),
			)
		} else {
			slog.Error("engine exited with error", "err", err)
		}
		os.Exit(1)
	}

	slog.Info("polyedge stopped cleanly")
}

// openLedger abre el backend configurado de ledger.
func openLedger(cfg *config.Config) (ports.LedgerStore, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		return storage.NewSQLiteStore(cfg.Storage.DSN)
	default:
		return storage.NewFileStore(cfg.Storage.Dir)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func tradeMode(simulation bool) string {
	if simulation {
		return "SIMULATION"
	}
	return "LIVE"
}
