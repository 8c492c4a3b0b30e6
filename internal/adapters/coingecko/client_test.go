package coingecko_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alejandrodnm/polyedge/internal/adapters/coingecko"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pricesBody = `{
	"bitcoin": {"usd": 118500.0, "usd_24h_change": 2.3},
	"ethereum": {"usd": 4200.5, "usd_24h_change": -1.7}
}`

func TestClient_SpotAndChange(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/api/v3/simple/price", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		fmt.Fprint(w, pricesBody)
	}))
	defer srv.Close()

	c := coingecko.NewClient(srv.URL)
	ctx := context.Background()

	price, ok := c.SpotPrice(ctx, "BTC")
	require.True(t, ok)
	assert.InDelta(t, 118500.0, price, 0.0001)

	change, ok := c.Change24h(ctx, "ETH")
	require.True(t, ok)
	assert.InDelta(t, -1.7, change, 0.0001)

	// Símbolo en minúsculas también resuelve
	price, ok = c.SpotPrice(ctx, "btc")
	require.True(t, ok)
	assert.InDelta(t, 118500.0, price, 0.0001)

	// El cache absorbe todas las llamadas dentro del TTL
	assert.EqualValues(t, 1, calls.Load())
}

func TestClient_UnknownSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, pricesBody)
	}))
	defer srv.Close()

	c := coingecko.NewClient(srv.URL)
	_, ok := c.SpotPrice(context.Background(), "SHIB")
	assert.False(t, ok)
}

func TestClient_FetchFailureKeepsStaleCache(t *testing.T) {
	fail := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if fail {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, pricesBody)
	}))
	defer srv.Close()

	c := coingecko.NewClient(srv.URL)
	ctx := context.Background()

	price, ok := c.SpotPrice(ctx, "BTC")
	require.True(t, ok)
	assert.InDelta(t, 118500.0, price, 0.0001)

	// Con el upstream caído el dato viejo sigue sirviendo
	fail = true
	price, ok = c.SpotPrice(ctx, "BTC")
	require.True(t, ok)
	assert.InDelta(t, 118500.0, price, 0.0001)
}
