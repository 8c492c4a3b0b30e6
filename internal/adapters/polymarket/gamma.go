package polymarket

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

const gammaMarketsPath = "/markets"

// MarketFilter acota los mercados que devuelve FetchActiveMarkets.
type MarketFilter struct {
	MinLiquidity    float64
	MaxHoursToClose float64
}

// FetchActiveMarkets implementa ports.MarketProvider: devuelve los mercados
// binarios activos, líquidos y de cierre corto, ordenados por liquidez.
func (c *Client) FetchActiveMarkets(ctx context.Context) ([]domain.Market, error) {
	q := url.Values{}
	q.Set("active", "true")
	q.Set("closed", "false")
	q.Set("limit", "500")
	q.Set("order", "liquidity")
	q.Set("ascending", "false")

	var resp gammaMarketsResponse
	reqURL := c.gammaBase + gammaMarketsPath + "?" + q.Encode()
	if err := c.get(ctx, c.gammaLimiter, reqURL, &resp); err != nil {
		return nil, fmt.Errorf("gamma.FetchActiveMarkets: %w", err)
	}

	now := time.Now().UTC()
	markets := make([]domain.Market, 0, len(resp))
	skipped := 0
	for _, gm := range resp {
		m, err := mapGammaMarket(gm)
		if err != nil {
			skipped++
			continue
		}
		if !c.filter.keep(m, now) {
			continue
		}
		markets = append(markets, m)
	}

	slog.Debug("gamma markets fetched",
		"total", len(resp),
		"kept", len(markets),
		"unmappable", skipped,
	)
	return markets, nil
}

// FetchOutcome implementa ports.OutcomeSource consultando el mercado en Gamma.
// Un mercado todavía abierto devuelve settled=false sin error.
func (c *Client) FetchOutcome(ctx context.Context, marketID string) (domain.Outcome, bool, error) {
	var gm gammaMarket
	reqURL := c.gammaBase + gammaMarketsPath + "/" + url.PathEscape(marketID)
	if err := c.get(ctx, c.gammaLimiter, reqURL, &gm); err != nil {
		return 0, false, fmt.Errorf("gamma.FetchOutcome %s: %w", marketID, err)
	}

	if !gm.Closed {
		return 0, false, nil
	}

	idx, err := gm.ConsensusOutcome.Int64()
	if err != nil {
		// Cerrado pero sin consenso publicado todavía: tratar como no liquidado.
		return 0, false, nil
	}

	switch idx {
	case 0:
		return domain.OutcomeYes, true, nil
	case 1:
		return domain.OutcomeNo, true, nil
	default:
		return 0, false, fmt.Errorf("gamma.FetchOutcome %s: unexpected outcome index %d", marketID, idx)
	}
}

// keep aplica el filtro de liquidez y ventana temporal.
func (f MarketFilter) keep(m domain.Market, now time.Time) bool {
	if m.Liquidity < f.MinLiquidity {
		return false
	}
	hours := m.EndDate.Sub(now).Hours()
	return hours > 0 && hours <= f.MaxHoursToClose
}
