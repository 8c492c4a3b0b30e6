package domain

import "time"

// Market representa un mercado de predicción binario en Polymarket.
type Market struct {
	ID        string
	Title     string
	Price     float64 // probabilidad implícita del lado YES, 0-1
	Tokens    [2]string // token_ids CLOB: [0] YES, [1] NO
	Volume    float64
	Liquidity float64
	EndDate   time.Time
}

// HoursToClose devuelve las horas hasta que el mercado cierra.
// Devuelve 0 si EndDate no está definido o ya pasó.
func (m Market) HoursToClose(now time.Time) float64 {
	if m.EndDate.IsZero() {
		return 0
	}
	h := m.EndDate.Sub(now).Hours()
	if h < 0 {
		return 0
	}
	return h
}

// YesToken devuelve el token del lado YES.
func (m Market) YesToken() string { return m.Tokens[0] }

// NoToken devuelve el token del lado NO.
func (m Market) NoToken() string { return m.Tokens[1] }

// Outcome es el resultado liquidado de un mercado binario.
type Outcome int

const (
	OutcomeYes Outcome = iota
	OutcomeNo
)

// Signal es la estimación externa de probabilidad para un mercado.
// Solo llega al guard si Discrepancy supera el mínimo configurado.
type Signal struct {
	Source           string
	TrendProbability float64
	Discrepancy      float64 // |precio del mercado - TrendProbability|
	Recommendation   TradeType
}

// Opportunity agrupa un mercado con su señal detectada.
type Opportunity struct {
	Market Market
	Signal Signal
}
