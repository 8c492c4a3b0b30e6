package risk_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alejandrodnm/polyedge/internal/application/risk"
	"github.com/alejandrodnm/polyedge/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestGuard_AdmitHappyPath(t *testing.T) {
	g := risk.NewGuard(&fakeLedger{}, 0.015)

	// 1.5% de 100 = 1.50 exacto: el límite es inclusivo
	assert.True(t, g.Admit(context.Background(), "m1", 1.50, 100))
	assert.True(t, g.Admit(context.Background(), "m1", 1.0, 100))
}

func TestGuard_RejectsOversizedPosition(t *testing.T) {
	g := risk.NewGuard(&fakeLedger{}, 0.015)

	assert.False(t, g.Admit(context.Background(), "m1", 1.51, 100))
}

func TestGuard_RejectsDuplicateMarket(t *testing.T) {
	ledger := &fakeLedger{trades: []domain.Trade{
		{ID: "t1", MarketID: "m1", Amount: 1.5},
	}}
	g := risk.NewGuard(ledger, 0.5)

	assert.False(t, g.Admit(context.Background(), "m1", 1.0, 100))
	assert.True(t, g.Admit(context.Background(), "m2", 1.0, 100))
}

func TestGuard_RejectsResolvedMarketToo(t *testing.T) {
	ledger := &fakeLedger{trades: []domain.Trade{
		{ID: "t1", MarketID: "m1", Amount: 1.5, Resolved: true, Result: domain.ResultLoss},
	}}
	g := risk.NewGuard(ledger, 0.5)

	// Un mercado operado una vez no se reentra nunca, ni resuelto
	assert.False(t, g.Admit(context.Background(), "m1", 1.0, 100))
}

func TestGuard_RejectsInsufficientBalance(t *testing.T) {
	// Fracción alta para que el límite de posición no tape el de balance
	g := risk.NewGuard(&fakeLedger{}, 2.0)

	assert.False(t, g.Admit(context.Background(), "m1", 150, 100))
}

func TestGuard_RejectsNonPositiveAmount(t *testing.T) {
	g := risk.NewGuard(&fakeLedger{}, 0.5)

	assert.False(t, g.Admit(context.Background(), "m1", 0, 100))
	assert.False(t, g.Admit(context.Background(), "m1", -5, 100))
}

func TestGuard_RejectsOnLookupFailure(t *testing.T) {
	ledger := &fakeLedger{positionErr: errors.New("storage offline")}
	g := risk.NewGuard(ledger, 0.5)

	// Sin verificación de unicidad no se opera
	assert.False(t, g.Admit(context.Background(), "m1", 1.0, 100))
}
