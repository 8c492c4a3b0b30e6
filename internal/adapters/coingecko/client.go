package coingecko

// Client consulta precios spot con un cache simple de 60s: el analyzer
// pregunta por cada mercado del ciclo, pero CoinGecko solo se consulta una
// vez por minuto para todos los símbolos soportados.

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBase  = "https://api.coingecko.com"
	simplePrice  = "/api/v3/simple/price"
	cacheTTL     = 60 * time.Second
	fetchTimeout = 10 * time.Second
)

// idMap traduce símbolo → id de CoinGecko.
var idMap = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"SOL":  "solana",
	"DOGE": "dogecoin",
	"XRP":  "ripple",
}

type quote struct {
	USD       float64 `json:"usd"`
	Change24h float64 `json:"usd_24h_change"`
}

// Client implementa ports.PriceProvider.
type Client struct {
	http      *http.Client
	base      string
	quotes    map[string]quote // por símbolo
	lastFetch time.Time
}

// NewClient crea un Client. base vacío usa la API pública.
func NewClient(base string) *Client {
	if base == "" {
		base = defaultBase
	}
	return &Client{
		http:   &http.Client{Timeout: fetchTimeout},
		base:   base,
		quotes: make(map[string]quote),
	}
}

// SpotPrice devuelve el precio USD actual del símbolo.
func (c *Client) SpotPrice(ctx context.Context, symbol string) (float64, bool) {
	q, ok := c.lookup(ctx, symbol)
	return q.USD, ok
}

// Change24h devuelve la variación porcentual de las últimas 24h.
func (c *Client) Change24h(ctx context.Context, symbol string) (float64, bool) {
	q, ok := c.lookup(ctx, symbol)
	return q.Change24h, ok
}

func (c *Client) lookup(ctx context.Context, symbol string) (quote, bool) {
	c.refresh(ctx)
	q, ok := c.quotes[strings.ToUpper(symbol)]
	return q, ok
}

// refresh repuebla el cache si pasó el TTL. Un fallo del fetch deja el cache
// anterior en su sitio: mejor dato viejo que ningún dato.
func (c *Client) refresh(ctx context.Context) {
	if time.Since(c.lastFetch) < cacheTTL {
		return
	}

	ids := make([]string, 0, len(idMap))
	for _, id := range idMap {
		ids = append(ids, id)
	}

	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", "usd")
	q.Set("include_24hr_change", "true")
	reqURL := c.base + simplePrice + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("coingecko refresh failed", "err", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("coingecko refresh failed", "status", resp.StatusCode)
		return
	}

	var byID map[string]quote
	if err := json.NewDecoder(resp.Body).Decode(&byID); err != nil {
		slog.Warn("coingecko refresh failed", "err", fmt.Errorf("decode: %w", err))
		return
	}

	for symbol, id := range idMap {
		if q, ok := byID[id]; ok {
			c.quotes[symbol] = q
		}
	}
	c.lastFetch = time.Now()

	slog.Debug("coingecko prices refreshed", "symbols", len(c.quotes))
}
