package polymarket

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

// mapGammaMarket convierte el DTO de Gamma a domain.Market.
// Devuelve error si el mercado no es binario o le faltan campos básicos.
func mapGammaMarket(gm gammaMarket) (domain.Market, error) {
	prices, err := parseStringArray(gm.OutcomePrices)
	if err != nil {
		return domain.Market{}, fmt.Errorf("outcome prices: %w", err)
	}
	if len(prices) != 2 {
		return domain.Market{}, fmt.Errorf("not a binary market: %d outcomes", len(prices))
	}

	price, err := strconv.ParseFloat(prices[0], 64)
	if err != nil {
		return domain.Market{}, fmt.Errorf("yes price %q: %w", prices[0], err)
	}

	var tokens [2]string
	if ids, err := parseStringArray(gm.ClobTokenIDs); err == nil && len(ids) == 2 {
		tokens[0], tokens[1] = ids[0], ids[1]
	}

	endDate, err := time.Parse(time.RFC3339, gm.EndDate)
	if err != nil {
		return domain.Market{}, fmt.Errorf("end date %q: %w", gm.EndDate, err)
	}

	return domain.Market{
		ID:        gm.ID,
		Title:     gm.Question,
		Price:     price,
		Tokens:    tokens,
		Volume:    numberOrZero(gm.Volume),
		Liquidity: numberOrZero(gm.Liquidity),
		EndDate:   endDate,
	}, nil
}

// parseStringArray parsea los arrays que Gamma serializa como string JSON.
func parseStringArray(raw string) ([]string, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty array field")
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func numberOrZero(n json.Number) float64 {
	v, err := n.Float64()
	if err != nil {
		return 0
	}
	return v
}
