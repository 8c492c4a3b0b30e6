package ports

import (
	"context"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

// LedgerStore es la fuente de verdad durable del balance y las posiciones.
// El journal de trades se reescribe completo en cada mutación; el historial
// de balance es estrictamente append-only.
type LedgerStore interface {
	// RecordTrade añade un trade nuevo al journal. Si el storage no está
	// disponible devuelve un error explícito: un trade nunca se pierde en silencio.
	RecordTrade(ctx context.Context, t domain.Trade) error

	// LoadTrades devuelve todos los trades en orden de creación.
	// Con journal corrupto o ilegible devuelve un set vacío sin error
	// (política de recuperación: degradado pero vivo).
	LoadTrades(ctx context.Context) ([]domain.Trade, error)

	// HasPosition devuelve true si algún trade (resuelto o no) referencia
	// el marketID. Reentrar en un mercado ya operado está prohibido siempre.
	HasPosition(ctx context.Context, marketID string) (bool, error)

	// SaveResolved persiste las mutaciones de resolución de los trades dados.
	SaveResolved(ctx context.Context, resolved []domain.Trade) error

	// AppendCheckpoint añade una entrada al historial de balance.
	AppendCheckpoint(ctx context.Context, cp domain.Checkpoint) error

	// LastCheckpoint devuelve la última entrada del historial leyendo solo
	// el final del log (recuperación O(1), sin replay del journal).
	LastCheckpoint(ctx context.Context) (domain.Checkpoint, bool, error)

	// Close cierra el storage limpiamente.
	Close() error
}
