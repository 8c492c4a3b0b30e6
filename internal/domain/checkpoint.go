package domain

import "time"

// CheckpointReason clasifica la causa de un delta de balance.
type CheckpointReason string

const (
	ReasonInitial    CheckpointReason = "INITIAL"
	ReasonSimTrade   CheckpointReason = "SIM_TRADE"
	ReasonLiveTrade  CheckpointReason = "LIVE_TRADE"
	ReasonAdjustment CheckpointReason = "ADJUSTMENT"
)

// Checkpoint es una entrada del historial de balance: el balance resultante
// tras aplicar Delta. El log de checkpoints es append-only y reproducirlo en
// orden debe terminar siempre en el balance en memoria.
type Checkpoint struct {
	Timestamp time.Time
	Balance   float64 // balance resultante tras aplicar Delta
	Delta     float64
	Reason    CheckpointReason
}

// Heartbeat marca la última iteración completada, para monitoreo externo.
// No forma parte de los invariantes financieros.
type Heartbeat struct {
	LastScan time.Time `json:"lastScan"`
}
