package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

const heartbeatFile = "heartbeat.json"

// HeartbeatFile sobreescribe heartbeat.json en cada iteración para que un
// monitor externo detecte el proceso colgado. No participa en los
// invariantes financieros del ledger.
type HeartbeatFile struct {
	path string
}

// NewHeartbeatFile apunta el heartbeat al directorio de datos dado.
// Crea el directorio si no existe (con backend sqlite nadie más lo crea).
func NewHeartbeatFile(dir string) *HeartbeatFile {
	_ = os.MkdirAll(dir, 0o755)
	return &HeartbeatFile{path: filepath.Join(dir, heartbeatFile)}
}

// Beat sobreescribe el archivo con el timestamp actual.
func (h *HeartbeatFile) Beat(now time.Time) error {
	data, err := json.MarshalIndent(domain.Heartbeat{LastScan: now.UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("storage.Beat: marshal: %w", err)
	}
	if err := os.WriteFile(h.path, data, 0o644); err != nil {
		return fmt.Errorf("storage.Beat: write: %w", err)
	}
	return nil
}
