package polymarket

import "encoding/json"

// DTOs raw de la API de Polymarket. Solo se usan dentro de este paquete.
// La conversión a domain entities se hace en mapping.go.

// --- Gamma API ---

// gammaMarket es un mercado de GET /markets. Gamma devuelve varios campos
// numéricos y arrays como strings JSON, de ahí los json.Number y el parseo
// en dos pasos de mapping.go.
type gammaMarket struct {
	ID               string      `json:"id"`
	ConditionID      string      `json:"conditionId"`
	Question         string      `json:"question"`
	OutcomePrices    string      `json:"outcomePrices"` // p.ej. `["0.6", "0.4"]`
	ClobTokenIDs     string      `json:"clobTokenIds"`  // p.ej. `["123...", "456..."]`
	Volume           json.Number `json:"volume"`
	Liquidity        json.Number `json:"liquidity"`
	EndDate          string      `json:"endDate"`
	Active           bool        `json:"active"`
	Closed           bool        `json:"closed"`
	ConsensusOutcome json.Number `json:"consensusOutcome"` // índice del outcome ganador, solo con Closed
}

// gammaMarketsResponse es la respuesta de GET /markets.
type gammaMarketsResponse []gammaMarket

// --- CLOB API ---

// clobNegRiskResponse es la respuesta de GET /neg-risk.
type clobNegRiskResponse struct {
	NegRisk bool `json:"neg_risk"`
}

// clobOrderResponse es la respuesta de POST /order.
type clobOrderResponse struct {
	ErrorMsg string `json:"errorMsg"`
	OrderID  string `json:"orderID"`
	Status   string `json:"status"`
	Success  bool   `json:"success"`
}
