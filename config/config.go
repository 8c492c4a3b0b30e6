package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del bot.
type Config struct {
	Trading TradingConfig `yaml:"trading"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// TradingConfig controla el comportamiento del loop de trading.
type TradingConfig struct {
	IntervalSeconds     int     `yaml:"interval_seconds"`
	Simulation          bool    `yaml:"simulation"`
	InitialBalance      float64 `yaml:"initial_balance"`       // balance virtual de arranque en USDC
	MinDiscrepancy      float64 `yaml:"min_discrepancy"`       // discrepancia mínima para tradear
	MaxPositionFraction float64 `yaml:"max_position_fraction"` // fracción máxima del balance por posición
	MinLiquidity        float64 `yaml:"min_liquidity"`         // liquidez mínima del mercado en USDC
	MaxHoursToClose     float64 `yaml:"max_hours_to_close"`    // solo mercados que cierran dentro de esta ventana
	PrivateKey          string  `yaml:"-"`                     // solo vía env POLY_PRIVATE_KEY, nunca YAML
}

// APIConfig contiene los base URLs de las APIs externas.
type APIConfig struct {
	GammaBase     string `yaml:"gamma_base"`
	CLOBBase      string `yaml:"clob_base"`
	CoinGeckoBase string `yaml:"coingecko_base"`
}

// StorageConfig controla dónde y cómo se persiste el ledger.
type StorageConfig struct {
	Backend string `yaml:"backend"` // file | sqlite
	Dir     string `yaml:"dir"`     // directorio para trades.json / equity.csv / heartbeat.json
	DSN     string `yaml:"dsn"`     // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Las variables de entorno sobreescriben los valores del YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return &cfg, nil
}

// Interval devuelve el intervalo entre iteraciones como time.Duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Trading.IntervalSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SIMULATION_MODE"); v != "" {
		cfg.Trading.Simulation = v != "false"
	}
	if v, ok := envFloat("INITIAL_BALANCE"); ok {
		cfg.Trading.InitialBalance = v
	}
	if v, ok := envFloat("MIN_DISCREPANCY"); ok {
		cfg.Trading.MinDiscrepancy = v
	}
	if v, ok := envFloat("MAX_POSITION_SIZE"); ok {
		cfg.Trading.MaxPositionFraction = v
	}
	if v := os.Getenv("POLY_PRIVATE_KEY"); v != "" {
		cfg.Trading.PrivateKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func envFloat(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Trading.IntervalSeconds <= 0 {
		cfg.Trading.IntervalSeconds = 600
	}
	if cfg.Trading.InitialBalance <= 0 {
		cfg.Trading.InitialBalance = 100
	}
	if cfg.Trading.MinDiscrepancy <= 0 {
		cfg.Trading.MinDiscrepancy = 0.08
	}
	if cfg.Trading.MaxPositionFraction <= 0 {
		cfg.Trading.MaxPositionFraction = 0.015
	}
	if cfg.Trading.MinLiquidity <= 0 {
		cfg.Trading.MinLiquidity = 100
	}
	if cfg.Trading.MaxHoursToClose <= 0 {
		cfg.Trading.MaxHoursToClose = 24
	}
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.API.CLOBBase == "" {
		cfg.API.CLOBBase = "https://clob.polymarket.com"
	}
	if cfg.API.CoinGeckoBase == "" {
		cfg.API.CoinGeckoBase = "https://api.coingecko.com"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "file"
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = "data"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "polyedge.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// validate rechaza configuraciones incoherentes en vez de fallar a mitad de un ciclo.
func validate(cfg *Config) error {
	if cfg.Trading.MaxPositionFraction > 1 {
		return fmt.Errorf("max_position_fraction %.2f > 1", cfg.Trading.MaxPositionFraction)
	}
	if cfg.Trading.MinDiscrepancy >= 1 {
		return fmt.Errorf("min_discrepancy %.2f >= 1", cfg.Trading.MinDiscrepancy)
	}
	switch cfg.Storage.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if !cfg.Trading.Simulation && cfg.Trading.PrivateKey == "" {
		return fmt.Errorf("live mode requires POLY_PRIVATE_KEY")
	}
	return nil
}
