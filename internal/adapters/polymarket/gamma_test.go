package polymarket_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alejandrodnm/polyedge/internal/adapters/polymarket"
	"github.com/alejandrodnm/polyedge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marketJSON(id, question, endDate string, liquidity float64, closed bool, consensus string) string {
	outcome := ""
	if consensus != "" {
		outcome = fmt.Sprintf(`, "consensusOutcome": %s`, consensus)
	}
	return fmt.Sprintf(`{
		"id": %q,
		"conditionId": "0xcond",
		"question": %q,
		"outcomePrices": "[\"0.6\", \"0.4\"]",
		"clobTokenIds": "[\"111\", \"222\"]",
		"volume": "1500.5",
		"liquidity": "%.1f",
		"endDate": %q,
		"active": true,
		"closed": %t%s
	}`, id, question, liquidity, endDate, closed, outcome)
}

func gammaServer(t *testing.T, handler http.HandlerFunc) *polymarket.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return polymarket.NewClient(srv.URL, srv.URL, polymarket.MarketFilter{
		MinLiquidity:    100,
		MaxHoursToClose: 24,
	})
}

func TestFetchActiveMarkets(t *testing.T) {
	soon := time.Now().UTC().Add(6 * time.Hour).Format(time.RFC3339)
	farAway := time.Now().UTC().Add(72 * time.Hour).Format(time.RFC3339)

	c := gammaServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/markets", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("active"))
		assert.Equal(t, "false", r.URL.Query().Get("closed"))

		fmt.Fprintf(w, "[%s, %s, %s]",
			marketJSON("m1", "Will BTC be above $120k?", soon, 5000, false, ""),
			marketJSON("m2", "Illiquid market", soon, 10, false, ""),
			marketJSON("m3", "Closes too late", farAway, 5000, false, ""),
		)
	})

	markets, err := c.FetchActiveMarkets(context.Background())
	require.NoError(t, err)
	require.Len(t, markets, 1)

	m := markets[0]
	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, "Will BTC be above $120k?", m.Title)
	assert.InDelta(t, 0.6, m.Price, 0.0001)
	assert.Equal(t, "111", m.YesToken())
	assert.Equal(t, "222", m.NoToken())
	assert.InDelta(t, 5000, m.Liquidity, 0.0001)
	assert.InDelta(t, 1500.5, m.Volume, 0.0001)
}

func TestFetchActiveMarkets_SkipsUnmappable(t *testing.T) {
	soon := time.Now().UTC().Add(6 * time.Hour).Format(time.RFC3339)

	c := gammaServer(t, func(w http.ResponseWriter, _ *http.Request) {
		// m-bad no es binario: tres outcomes
		fmt.Fprintf(w, `[
			{"id": "m-bad", "question": "?", "outcomePrices": "[\"0.3\",\"0.3\",\"0.4\"]", "endDate": %q, "liquidity": "5000"},
			%s
		]`, soon, marketJSON("m-ok", "Will BTC be above $120k?", soon, 5000, false, ""))
	})

	markets, err := c.FetchActiveMarkets(context.Background())
	require.NoError(t, err)
	require.Len(t, markets, 1)
	assert.Equal(t, "m-ok", markets[0].ID)
}

func TestFetchActiveMarkets_ClientError(t *testing.T) {
	c := gammaServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	_, err := c.FetchActiveMarkets(context.Background())
	require.Error(t, err)
}

func TestFetchOutcome(t *testing.T) {
	past := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)

	cases := []struct {
		name      string
		body      string
		outcome   domain.Outcome
		settled   bool
		expectErr bool
	}{
		{"yes wins", marketJSON("m1", "?", past, 5000, true, "0"), domain.OutcomeYes, true, false},
		{"no wins", marketJSON("m1", "?", past, 5000, true, "1"), domain.OutcomeNo, true, false},
		{"still open", marketJSON("m1", "?", past, 5000, false, ""), 0, false, false},
		{"closed without consensus", marketJSON("m1", "?", past, 5000, true, ""), 0, false, false},
		{"bogus index", marketJSON("m1", "?", past, 5000, true, "7"), 0, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := gammaServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/markets/m1", r.URL.Path)
				fmt.Fprint(w, tc.body)
			})

			outcome, settled, err := c.FetchOutcome(context.Background(), "m1")
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.settled, settled)
			if tc.settled {
				assert.Equal(t, tc.outcome, outcome)
			}
		})
	}
}
