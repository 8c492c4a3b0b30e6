package storage

// file.go — ledger sobre archivos planos, inspeccionable a mano.
//
// Layout:
//   - trades.json: array JSON con indentación. Se reescribe completo en cada
//     mutación (append de trade nuevo, resolución). Volumen bajo: un puñado
//     de trades por día.
//   - equity.csv: historial de balance, estrictamente append-only. Una línea
//     por delta: timestamp,balance,delta,reason. La recuperación lee solo la
//     última línea (seek desde el final), nunca reproduce el journal.
//
// Las reescrituras del journal van a un archivo temporal + rename para no
// dejar un journal a medias si el proceso muere durante el write.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

const (
	journalFile  = "trades.json"
	equityFile   = "equity.csv"
	equityHeader = "timestamp,balance,delta,reason"

	// tailChunk cubre de sobra la línea más larga posible del CSV.
	tailChunk = 512
)

// FileStore implementa ports.LedgerStore sobre trades.json + equity.csv.
type FileStore struct {
	journalPath string
	equityPath  string
}

// NewFileStore crea el directorio de datos y los archivos si no existen.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage.NewFileStore: mkdir %q: %w", dir, err)
	}

	fs := &FileStore{
		journalPath: filepath.Join(dir, journalFile),
		equityPath:  filepath.Join(dir, equityFile),
	}

	if _, err := os.Stat(fs.journalPath); errors.Is(err, os.ErrNotExist) {
		if err := fs.rewriteJournal(nil); err != nil {
			return nil, err
		}
	}
	if _, err := os.Stat(fs.equityPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(fs.equityPath, []byte(equityHeader+"\n"), 0o644); err != nil {
			return nil, fmt.Errorf("storage.NewFileStore: init %s: %w", equityFile, err)
		}
	}

	return fs, nil
}

// RecordTrade añade el trade al final del journal y lo reescribe completo.
// A diferencia de LoadTrades, aquí un journal corrupto es un error duro:
// reescribir encima destruiría el historial existente.
func (fs *FileStore) RecordTrade(_ context.Context, t domain.Trade) error {
	trades, err := fs.readJournal()
	if err != nil {
		return fmt.Errorf("storage.RecordTrade: %w", err)
	}
	trades = append(trades, t)
	if err := fs.rewriteJournal(trades); err != nil {
		return fmt.Errorf("storage.RecordTrade: %w", err)
	}
	return nil
}

// LoadTrades devuelve todos los trades en orden de creación.
// Journal corrupto o ilegible → set vacío, sin error (degradado pero vivo).
func (fs *FileStore) LoadTrades(_ context.Context) ([]domain.Trade, error) {
	trades, err := fs.readJournal()
	if err != nil {
		slog.Warn("ledger: unreadable journal, starting from empty set",
			"path", fs.journalPath, "err", err)
		return nil, nil
	}
	return trades, nil
}

// HasPosition devuelve true si algún trade del journal referencia marketID,
// resuelto o no. Un mercado operado una vez no se vuelve a tocar.
func (fs *FileStore) HasPosition(ctx context.Context, marketID string) (bool, error) {
	trades, err := fs.LoadTrades(ctx)
	if err != nil {
		return false, err
	}
	for _, t := range trades {
		if t.MarketID == marketID {
			return true, nil
		}
	}
	return false, nil
}

// SaveResolved sustituye en el journal los trades resueltos (por ID) y
// reescribe el archivo completo.
func (fs *FileStore) SaveResolved(_ context.Context, resolved []domain.Trade) error {
	if len(resolved) == 0 {
		return nil
	}

	trades, err := fs.readJournal()
	if err != nil {
		return fmt.Errorf("storage.SaveResolved: %w", err)
	}

	byID := make(map[string]domain.Trade, len(resolved))
	for _, r := range resolved {
		byID[r.ID] = r
	}
	for i, t := range trades {
		if r, ok := byID[t.ID]; ok {
			trades[i] = r
		}
	}

	if err := fs.rewriteJournal(trades); err != nil {
		return fmt.Errorf("storage.SaveResolved: %w", err)
	}
	return nil
}

// AppendCheckpoint añade una línea al historial de balance. Nunca reescribe.
func (fs *FileStore) AppendCheckpoint(_ context.Context, cp domain.Checkpoint) error {
	f, err := os.OpenFile(fs.equityPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("storage.AppendCheckpoint: open: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s,%.4f,%.4f,%s\n",
		cp.Timestamp.UTC().Format(time.RFC3339),
		cp.Balance,
		cp.Delta,
		cp.Reason,
	)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("storage.AppendCheckpoint: write: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("storage.AppendCheckpoint: sync: %w", err)
	}
	return nil
}

// LastCheckpoint lee solo el final de equity.csv y parsea la última línea.
// No reproduce el historial: recuperación O(1) sin importar su tamaño.
func (fs *FileStore) LastCheckpoint(_ context.Context) (domain.Checkpoint, bool, error) {
	line, err := lastLine(fs.equityPath)
	if err != nil {
		return domain.Checkpoint{}, false, fmt.Errorf("storage.LastCheckpoint: %w", err)
	}
	if line == "" || line == equityHeader {
		return domain.Checkpoint{}, false, nil
	}

	cp, err := parseCheckpointLine(line)
	if err != nil {
		return domain.Checkpoint{}, false, fmt.Errorf("storage.LastCheckpoint: %w", err)
	}
	return cp, true, nil
}

// Close no mantiene recursos abiertos entre operaciones.
func (fs *FileStore) Close() error { return nil }

func (fs *FileStore) readJournal() ([]domain.Trade, error) {
	data, err := os.ReadFile(fs.journalPath)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	var trades []domain.Trade
	if err := json.Unmarshal(data, &trades); err != nil {
		return nil, fmt.Errorf("parse journal: %w", err)
	}
	return trades, nil
}

// rewriteJournal escribe el journal completo vía archivo temporal + rename.
func (fs *FileStore) rewriteJournal(trades []domain.Trade) error {
	if trades == nil {
		trades = []domain.Trade{}
	}
	data, err := json.MarshalIndent(trades, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal journal: %w", err)
	}

	tmp := fs.journalPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	if err := os.Rename(tmp, fs.journalPath); err != nil {
		return fmt.Errorf("replace journal: %w", err)
	}
	return nil
}

// lastLine devuelve la última línea no vacía del archivo, leyendo solo
// un chunk desde el final.
func lastLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	size := info.Size()
	if size == 0 {
		return "", nil
	}

	offset := size - tailChunk
	if offset < 0 {
		offset = 0
	}
	buf := make([]byte, size-offset)
	if _, err := f.ReadAt(buf, offset); err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}

	lines := strings.Split(strings.TrimRight(string(buf), "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l, nil
		}
	}
	return "", nil
}

func parseCheckpointLine(line string) (domain.Checkpoint, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 4 {
		return domain.Checkpoint{}, fmt.Errorf("malformed checkpoint line %q", line)
	}

	ts, err := time.Parse(time.RFC3339, parts[0])
	if err != nil {
		return domain.Checkpoint{}, fmt.Errorf("checkpoint timestamp: %w", err)
	}
	balance, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return domain.Checkpoint{}, fmt.Errorf("checkpoint balance: %w", err)
	}
	delta, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return domain.Checkpoint{}, fmt.Errorf("checkpoint delta: %w", err)
	}

	return domain.Checkpoint{
		Timestamp: ts,
		Balance:   balance,
		Delta:     delta,
		Reason:    domain.CheckpointReason(parts[3]),
	}, nil
}
