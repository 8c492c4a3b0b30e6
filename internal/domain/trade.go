package domain

import "time"

// TradeType es el lado comprado del mercado binario.
type TradeType string

const (
	BuyYes TradeType = "BUY_YES"
	BuyNo  TradeType = "BUY_NO"
)

// TradeResult es el resultado final de un trade resuelto.
type TradeResult string

const (
	ResultWin  TradeResult = "WIN"
	ResultLoss TradeResult = "LOSS"
)

// Trade es una orden ejecutada (real o simulada) contra un mercado binario.
// Los campos Resolved/Result/FinalPayout son los únicos mutables: los escribe
// el resolver exactamente una vez. Todo lo demás es inmutable tras la admisión.
type Trade struct {
	ID             string      `json:"id"`
	MarketID       string      `json:"marketId"`
	Title          string      `json:"title"`
	Type           TradeType   `json:"type"`
	Amount         float64     `json:"amount"`
	Price          float64     `json:"price"`
	Timestamp      time.Time   `json:"timestamp"`
	CurrentBalance float64     `json:"currentBalance"` // snapshot del balance justo después del débito
	ExpiresAt      time.Time   `json:"expiresAt"`
	Simulation     bool        `json:"simulation"`
	OrderID        string      `json:"orderId,omitempty"` // referencia externa en modo live
	Resolved       bool        `json:"resolved"`
	Result         TradeResult `json:"result,omitempty"`
	FinalPayout    float64     `json:"finalPayout"`
}

// Shares devuelve las shares compradas: amount / price de entrada.
// En un mercado binario cada share ganadora paga 1 USDC.
func (t Trade) Shares() float64 {
	if t.Price <= 0 {
		return 0
	}
	return t.Amount / t.Price
}

// Expired devuelve true si el mercado del trade ya cerró.
func (t Trade) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && t.ExpiresAt.Before(now)
}

// Wins devuelve true si el outcome liquidado favorece el lado comprado.
func (t Trade) Wins(outcome Outcome) bool {
	return (t.Type == BuyYes && outcome == OutcomeYes) ||
		(t.Type == BuyNo && outcome == OutcomeNo)
}
