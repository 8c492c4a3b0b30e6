package ports

import (
	"context"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

// MarketProvider devuelve los mercados binarios candidatos de cada iteración.
type MarketProvider interface {
	// FetchActiveMarkets devuelve mercados binarios activos, líquidos y que
	// cierran dentro de la ventana corta configurada.
	FetchActiveMarkets(ctx context.Context) ([]domain.Market, error)
}

// OutcomeSource resuelve el resultado liquidado de un mercado cerrado.
type OutcomeSource interface {
	// FetchOutcome devuelve el outcome del mercado y settled=true si ya
	// está liquidado. Un mercado aún abierto devuelve settled=false sin error.
	FetchOutcome(ctx context.Context, marketID string) (outcome domain.Outcome, settled bool, err error)
}
