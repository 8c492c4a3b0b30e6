package scanner

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/polyedge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePrices responde con valores fijos por símbolo.
type fakePrices struct {
	spot   map[string]float64
	change map[string]float64
}

func (f *fakePrices) SpotPrice(_ context.Context, symbol string) (float64, bool) {
	v, ok := f.spot[symbol]
	return v, ok
}

func (f *fakePrices) Change24h(_ context.Context, symbol string) (float64, bool) {
	v, ok := f.change[symbol]
	return v, ok
}

func makeMarket(title string, price float64) domain.Market {
	return domain.Market{
		ID:      "m1",
		Title:   title,
		Price:   price,
		EndDate: time.Now().UTC().Add(6 * time.Hour),
	}
}

func TestAnalyzer_UpDown_PositiveTrend(t *testing.T) {
	prices := &fakePrices{change: map[string]float64{"BTC": 3.2}}
	a := NewAnalyzer(prices, 0.08)

	sig, ok := a.Analyze(context.Background(), makeMarket("Bitcoin up or down today?", 0.55))
	require.True(t, ok)

	// Movimiento 24h > 1% → tendencia 0.9, mercado a 0.55 → comprar YES
	assert.Equal(t, "BTCUpDown", sig.Source)
	assert.InDelta(t, 0.9, sig.TrendProbability, 0.0001)
	assert.InDelta(t, 0.35, sig.Discrepancy, 0.0001)
	assert.Equal(t, domain.BuyYes, sig.Recommendation)
}

func TestAnalyzer_UpDown_NegativeTrend(t *testing.T) {
	prices := &fakePrices{change: map[string]float64{"ETH": -2.5}}
	a := NewAnalyzer(prices, 0.08)

	sig, ok := a.Analyze(context.Background(), makeMarket("Ethereum up or down today?", 0.55))
	require.True(t, ok)

	assert.InDelta(t, 0.1, sig.TrendProbability, 0.0001)
	assert.Equal(t, domain.BuyNo, sig.Recommendation)
}

func TestAnalyzer_UpDown_FlatMarketNoSignal(t *testing.T) {
	prices := &fakePrices{change: map[string]float64{"BTC": 0.3}}
	a := NewAnalyzer(prices, 0.08)

	// Tendencia neutra 0.5 contra mercado a 0.52: discrepancia bajo el mínimo
	_, ok := a.Analyze(context.Background(), makeMarket("Bitcoin up or down today?", 0.52))
	assert.False(t, ok)
}

func TestAnalyzer_TargetPrice_AboveAlreadyCrossed(t *testing.T) {
	prices := &fakePrices{spot: map[string]float64{"BTC": 125000}}
	a := NewAnalyzer(prices, 0.08)

	sig, ok := a.Analyze(context.Background(), makeMarket("Will Bitcoin be above $120,000 on Friday?", 0.60))
	require.True(t, ok)

	// Spot ya cruzó el target → casi seguro que sí
	assert.Equal(t, "BTCTrend", sig.Source)
	assert.InDelta(t, 0.99, sig.TrendProbability, 0.0001)
	assert.Equal(t, domain.BuyYes, sig.Recommendation)
}

func TestAnalyzer_TargetPrice_BelowTarget(t *testing.T) {
	prices := &fakePrices{spot: map[string]float64{"BTC": 110000}}
	a := NewAnalyzer(prices, 0.08)

	sig, ok := a.Analyze(context.Background(), makeMarket("Will Bitcoin be above $120k on Friday?", 0.40))
	require.True(t, ok)

	assert.InDelta(t, 0.01, sig.TrendProbability, 0.0001)
	assert.Equal(t, domain.BuyNo, sig.Recommendation)
}

func TestAnalyzer_TargetPrice_TooCloseToCall(t *testing.T) {
	// A menos de 0.5% del target no se opina, y 0.5 vs 0.5 no da señal
	prices := &fakePrices{spot: map[string]float64{"BTC": 120100}}
	a := NewAnalyzer(prices, 0.08)

	_, ok := a.Analyze(context.Background(), makeMarket("Will Bitcoin be above $120,000 on Friday?", 0.50))
	assert.False(t, ok)
}

func TestAnalyzer_Macro(t *testing.T) {
	a := NewAnalyzer(&fakePrices{}, 0.08)

	sig, ok := a.Analyze(context.Background(), makeMarket("Will the Fed hold interest rates in September?", 0.80))
	require.True(t, ok)

	assert.Equal(t, "MacroConsensus", sig.Source)
	assert.InDelta(t, 0.95, sig.TrendProbability, 0.0001)
	assert.Equal(t, domain.BuyYes, sig.Recommendation)
}

func TestAnalyzer_UnknownTitleNoSignal(t *testing.T) {
	a := NewAnalyzer(&fakePrices{}, 0.08)

	_, ok := a.Analyze(context.Background(), makeMarket("Will it rain in London tomorrow?", 0.30))
	assert.False(t, ok)
}

func TestAnalyzer_NoPriceDataNoSignal(t *testing.T) {
	// Proveedor sin datos: ni up/down ni target price pueden opinar
	a := NewAnalyzer(&fakePrices{}, 0.08)

	_, ok := a.Analyze(context.Background(), makeMarket("Bitcoin up or down today?", 0.20))
	assert.False(t, ok)
}

func TestExtractTargetPrice(t *testing.T) {
	cases := []struct {
		title string
		want  float64
		ok    bool
	}{
		{"will bitcoin be above $120,000?", 120000, true},
		{"will bitcoin be above $120k?", 120000, true},
		{"eth above 4,500 this week", 4500, true},
		{"solana below $95.5", 95.5, true},
		{"no price here", 0, false},
	}

	for _, tc := range cases {
		got, ok := extractTargetPrice(tc.title)
		assert.Equal(t, tc.ok, ok, tc.title)
		if tc.ok {
			assert.InDelta(t, tc.want, got, 0.0001, tc.title)
		}
	}
}

func TestDetectSymbol(t *testing.T) {
	assert.Equal(t, "BTC", detectSymbol("will bitcoin hit a new high?"))
	assert.Equal(t, "ETH", detectSymbol("ethereum up or down"))
	assert.Equal(t, "SOL", detectSymbol("solana above $200"))
	assert.Equal(t, "", detectSymbol("will it rain in london"))
}
