package scanner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/polyedge/internal/domain"
	"github.com/alejandrodnm/polyedge/internal/ports"
)

// Scanner recorre los mercados candidatos y devuelve los que tienen una
// discrepancia accionable. No muta nada: el engine decide qué hacer con
// cada oportunidad.
type Scanner struct {
	markets  ports.MarketProvider
	analyzer *Analyzer
}

// New crea un Scanner con el provider de mercados y el analyzer inyectados.
func New(markets ports.MarketProvider, analyzer *Analyzer) *Scanner {
	return &Scanner{markets: markets, analyzer: analyzer}
}

// RunOnce ejecuta un ciclo de escaneo. Un fallo del feed de mercados aborta
// el ciclo; un fallo por mercado solo se salta ese mercado.
func (s *Scanner) RunOnce(ctx context.Context) ([]domain.Opportunity, error) {
	markets, err := s.markets.FetchActiveMarkets(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanner.RunOnce: fetch markets: %w", err)
	}

	slog.Info("scan: candidate markets fetched", "count", len(markets))

	var opps []domain.Opportunity
	for _, m := range markets {
		if ctx.Err() != nil {
			return opps, ctx.Err()
		}
		sig, ok := s.analyzer.Analyze(ctx, m)
		if !ok {
			continue
		}
		opps = append(opps, domain.Opportunity{Market: m, Signal: sig})
	}

	slog.Info("scan: cycle complete",
		"markets", len(markets),
		"opportunities", len(opps),
	)
	return opps, nil
}
