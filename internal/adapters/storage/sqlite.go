package storage

// sqlite.go — backend alternativo del ledger sobre SQLite.
//
// Mismo contrato que FileStore con dos diferencias mecánicas:
//   - la resolución es un UPDATE por fila en vez de reescritura del journal
//   - LastCheckpoint es ORDER BY id DESC LIMIT 1 en vez de tail-read
// Se selecciona con storage.backend: sqlite. Útil cuando el volumen de
// trades crece más de lo que un JSON reescrito aguanta con dignidad.

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/polyedge/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
    id              TEXT PRIMARY KEY,
    market_id       TEXT NOT NULL,
    title           TEXT,
    type            TEXT NOT NULL,
    amount          REAL NOT NULL,
    price           REAL NOT NULL,
    created_at      DATETIME NOT NULL,
    current_balance REAL NOT NULL,
    expires_at      DATETIME,
    simulation      INTEGER NOT NULL DEFAULT 1,
    order_id        TEXT NOT NULL DEFAULT '',
    resolved        INTEGER NOT NULL DEFAULT 0,
    result          TEXT NOT NULL DEFAULT '',
    final_payout    REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_trades_market ON trades(market_id);

-- Historial de balance: solo INSERT, nunca UPDATE ni DELETE
CREATE TABLE IF NOT EXISTS balance_history (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    ts      DATETIME NOT NULL,
    balance REAL NOT NULL,
    delta   REAL NOT NULL,
    reason  TEXT NOT NULL
);
`

// SQLiteStore implementa ports.LedgerStore sobre SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore abre (o crea) la base de datos y aplica el schema.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", dsn, err)
	}

	// Un solo writer lógico; evita SQLITE_BUSY con el pool por defecto.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// RecordTrade inserta el trade nuevo. El PRIMARY KEY sobre id y la admisión
// previa del guard hacen el doble-insert imposible en operación normal.
func (s *SQLiteStore) RecordTrade(ctx context.Context, t domain.Trade) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trades (id, market_id, title, type, amount, price, created_at,
			current_balance, expires_at, simulation, order_id, resolved, result, final_payout)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.MarketID, t.Title, string(t.Type), t.Amount, t.Price,
		formatTime(t.Timestamp), t.CurrentBalance, formatTime(t.ExpiresAt),
		boolToInt(t.Simulation), t.OrderID, boolToInt(t.Resolved),
		string(t.Result), t.FinalPayout,
	)
	if err != nil {
		return fmt.Errorf("storage.RecordTrade: insert: %w", err)
	}
	return nil
}

// LoadTrades devuelve los trades en orden de creación. Un error de lectura
// degrada a set vacío, igual que el backend de archivos.
func (s *SQLiteStore) LoadTrades(ctx context.Context) ([]domain.Trade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, market_id, title, type, amount, price, created_at,
			current_balance, expires_at, simulation, order_id, resolved, result, final_payout
		FROM trades ORDER BY created_at, rowid`)
	if err != nil {
		slog.Warn("ledger: unreadable trades table, starting from empty set", "err", err)
		return nil, nil
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		var t domain.Trade
		var typ, result, createdAt, expiresAt string
		var sim, resolved int
		if err := rows.Scan(&t.ID, &t.MarketID, &t.Title, &typ, &t.Amount, &t.Price,
			&createdAt, &t.CurrentBalance, &expiresAt, &sim, &t.OrderID,
			&resolved, &result, &t.FinalPayout); err != nil {
			slog.Warn("ledger: skipping unreadable trade row", "err", err)
			continue
		}
		t.Type = domain.TradeType(typ)
		t.Result = domain.TradeResult(result)
		t.Simulation = sim != 0
		t.Resolved = resolved != 0
		t.Timestamp = parseTime(createdAt)
		t.ExpiresAt = parseTime(expiresAt)
		trades = append(trades, t)
	}
	return trades, nil
}

// HasPosition consulta por índice si el mercado fue operado alguna vez.
func (s *SQLiteStore) HasPosition(ctx context.Context, marketID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM trades WHERE market_id = ?`, marketID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("storage.HasPosition: %w", err)
	}
	return n > 0, nil
}

// SaveResolved aplica las mutaciones de resolución fila a fila.
func (s *SQLiteStore) SaveResolved(ctx context.Context, resolved []domain.Trade) error {
	if len(resolved) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveResolved: begin: %w", err)
	}
	defer tx.Rollback()

	for _, t := range resolved {
		if _, err := tx.ExecContext(ctx, `
			UPDATE trades SET resolved = 1, result = ?, final_payout = ?
			WHERE id = ?`,
			string(t.Result), t.FinalPayout, t.ID,
		); err != nil {
			return fmt.Errorf("storage.SaveResolved: update %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveResolved: commit: %w", err)
	}
	return nil
}

// AppendCheckpoint inserta una entrada nueva en el historial de balance.
func (s *SQLiteStore) AppendCheckpoint(ctx context.Context, cp domain.Checkpoint) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO balance_history (ts, balance, delta, reason) VALUES (?, ?, ?, ?)`,
		formatTime(cp.Timestamp), cp.Balance, cp.Delta, string(cp.Reason),
	)
	if err != nil {
		return fmt.Errorf("storage.AppendCheckpoint: insert: %w", err)
	}
	return nil
}

// LastCheckpoint lee solo la última entrada del historial.
func (s *SQLiteStore) LastCheckpoint(ctx context.Context) (domain.Checkpoint, bool, error) {
	var cp domain.Checkpoint
	var ts, reason string
	err := s.db.QueryRowContext(ctx, `
		SELECT ts, balance, delta, reason FROM balance_history
		ORDER BY id DESC LIMIT 1`).Scan(&ts, &cp.Balance, &cp.Delta, &reason)
	if err == sql.ErrNoRows {
		return domain.Checkpoint{}, false, nil
	}
	if err != nil {
		return domain.Checkpoint{}, false, fmt.Errorf("storage.LastCheckpoint: %w", err)
	}
	cp.Timestamp = parseTime(ts)
	cp.Reason = domain.CheckpointReason(reason)
	return cp, true, nil
}

// Close cierra la conexión a la base de datos limpiamente.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// El driver de modernc guarda DATETIME como texto; persistimos RFC3339
// para poder ordenar y parsear sin ambigüedad.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return ts
}
