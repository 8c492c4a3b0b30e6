package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/alejandrodnm/polyedge/internal/domain"
	"github.com/alejandrodnm/polyedge/internal/ports"
)

// Analyzer estima una probabilidad externa para un mercado a partir de
// heurísticas sobre el título y datos de precio spot. Es deliberadamente
// simple: glue heurístico, no un modelo. El ledger no depende de su calidad.
type Analyzer struct {
	prices         ports.PriceProvider
	minDiscrepancy float64
}

// NewAnalyzer crea un Analyzer con el umbral mínimo de discrepancia.
func NewAnalyzer(prices ports.PriceProvider, minDiscrepancy float64) *Analyzer {
	return &Analyzer{prices: prices, minDiscrepancy: minDiscrepancy}
}

var targetPriceRe = regexp.MustCompile(`\$?(\d{1,3}(?:,\d{3})*(?:\.\d+)?)\s*([kK]?)`)

// símbolos soportados, en orden de chequeo sobre el título
var symbolHints = []struct {
	symbol string
	hints  []string
}{
	{"BTC", []string{"bitcoin", "btc"}},
	{"ETH", []string{"ethereum", "eth"}},
	{"SOL", []string{"solana", "sol"}},
	{"DOGE", []string{"doge"}},
	{"XRP", []string{"ripple", "xrp"}},
}

// Analyze devuelve la señal detectada para el mercado, si la discrepancia
// entre el precio del mercado y la probabilidad estimada supera el mínimo.
func (a *Analyzer) Analyze(ctx context.Context, m domain.Market) (domain.Signal, bool) {
	title := strings.ToLower(m.Title)

	if symbol := detectSymbol(title); symbol != "" {
		if sig, ok := a.analyzeUpDown(ctx, m, title, symbol); ok {
			return sig, true
		}
		if sig, ok := a.analyzeTargetPrice(ctx, m, title, symbol); ok {
			return sig, true
		}
	}

	if sig, ok := a.analyzeMacro(m, title); ok {
		return sig, true
	}

	return domain.Signal{}, false
}

// analyzeUpDown cubre los mercados "X up or down": si el movimiento 24h es
// claro (>1% en cualquier dirección), la tendencia manda.
func (a *Analyzer) analyzeUpDown(ctx context.Context, m domain.Market, title, symbol string) (domain.Signal, bool) {
	if !strings.Contains(title, "up or down") {
		return domain.Signal{}, false
	}

	change, ok := a.prices.Change24h(ctx, symbol)
	if !ok {
		return domain.Signal{}, false
	}

	trendProb := 0.5
	if change > 1.0 {
		trendProb = 0.9
	}
	if change < -1.0 {
		trendProb = 0.1
	}

	return a.signal(m, symbol+"UpDown", trendProb)
}

// analyzeTargetPrice cubre los mercados "X above/below $N": compara el precio
// spot actual con el target extraído del título.
func (a *Analyzer) analyzeTargetPrice(ctx context.Context, m domain.Market, title, symbol string) (domain.Signal, bool) {
	spot, ok := a.prices.SpotPrice(ctx, symbol)
	if !ok || spot <= 0 {
		return domain.Signal{}, false
	}

	target, ok := extractTargetPrice(title)
	if !ok {
		return domain.Signal{}, false
	}

	distance := (target - spot) / spot
	trendProb := 0.5

	switch {
	case strings.Contains(title, "above") || strings.Contains(title, "higher") || strings.Contains(title, "up"):
		trendProb = 0.01
		if spot > target {
			trendProb = 0.99
		}
		if math.Abs(distance) < 0.005 {
			trendProb = 0.5 // demasiado cerca del target para opinar
		}
	case strings.Contains(title, "below") || strings.Contains(title, "lower") || strings.Contains(title, "down"):
		trendProb = 0.01
		if spot < target {
			trendProb = 0.99
		}
		if math.Abs(distance) < 0.005 {
			trendProb = 0.5
		}
	default:
		return domain.Signal{}, false
	}

	return a.signal(m, symbol+"Trend", trendProb)
}

// analyzeMacro cubre mercados de tipos de interés: el consenso de mercado
// casi siempre acierta la decisión de la Fed.
func (a *Analyzer) analyzeMacro(m domain.Market, title string) (domain.Signal, bool) {
	if !strings.Contains(title, "fed") && !strings.Contains(title, "interest rate") {
		return domain.Signal{}, false
	}
	return a.signal(m, "MacroConsensus", 0.95)
}

// signal construye la señal si la discrepancia supera el mínimo configurado.
func (a *Analyzer) signal(m domain.Market, source string, trendProb float64) (domain.Signal, bool) {
	diff := math.Abs(m.Price - trendProb)
	if diff < a.minDiscrepancy {
		return domain.Signal{}, false
	}

	rec := domain.BuyNo
	if m.Price < trendProb {
		rec = domain.BuyYes
	}

	slog.Debug("analyzer: discrepancy detected",
		"market", m.ID,
		"source", source,
		"market_price", fmt.Sprintf("%.2f", m.Price),
		"trend_prob", fmt.Sprintf("%.2f", trendProb),
		"discrepancy", fmt.Sprintf("%.2f", diff),
	)

	return domain.Signal{
		Source:           source,
		TrendProbability: trendProb,
		Discrepancy:      diff,
		Recommendation:   rec,
	}, true
}

func detectSymbol(title string) string {
	for _, s := range symbolHints {
		for _, h := range s.hints {
			if strings.Contains(title, h) {
				return s.symbol
			}
		}
	}
	return ""
}

// extractTargetPrice saca el primer número con pinta de precio del título.
// Soporta separadores de miles y el sufijo k: "$120,000" y "$120k" → 120000.
func extractTargetPrice(title string) (float64, bool) {
	match := targetPriceRe.FindStringSubmatch(title)
	if match == nil {
		return 0, false
	}

	raw := strings.ReplaceAll(match[1], ",", "")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	if match[2] != "" {
		v *= 1000
	}
	return v, true
}
