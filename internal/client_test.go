package internal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// MockRoundTripper lets a test answer requests without a listener.
type MockRoundTripper struct {
	Func func(req *http.Request) (*http.Response, error)
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.Func(req)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, zerolog.Nop())
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func TestClient_GetCoinList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/coins/list" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`[
			{"id":"bitcoin","symbol":"btc","name":"Bitcoin"},
			{"id":"ethereum","symbol":"eth","name":"Ethereum"},
			{"id":"bitcoin","symbol":"btc2","name":"Bitcoin Copy"},
			{"id":"","symbol":"x","name":"Nameless"}
		]`))
	})

	coins, err := client.GetCoinList(context.Background())
	if err != nil {
		t.Fatalf("GetCoinList failed: %v", err)
	}
	if len(coins) != 2 {
		t.Fatalf("expected 2 coins, got %d: %+v", len(coins), coins)
	}

	seen := map[string]bool{}
	for _, c := range coins {
		if seen[c.ID] {
			t.Errorf("duplicate id %q", c.ID)
		}
		seen[c.ID] = true
	}
	if coins[0] != (CoinRef{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin"}) {
		t.Errorf("first occurrence not kept: %+v", coins[0])
	}
}

func TestClient_GetCoinData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/coins/bitcoin" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"id":"bitcoin","market_data":{
			"current_price":{"usd":35000.5,"eur":33000},
			"price_change_percentage_24h":-1.25,
			"market_cap":{"usd":680000000000}
		}}`))
	})
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	client.now = func() time.Time { return fixed }

	snap, err := client.GetCoinData(context.Background(), "bitcoin")
	if err != nil {
		t.Fatalf("GetCoinData failed: %v", err)
	}
	want := MarketSnapshot{
		CoinID:       "bitcoin",
		PriceUSD:     35000.5,
		Change24hPct: -1.25,
		MarketCapUSD: 680000000000,
		FetchedAt:    fixed,
	}
	if snap != want {
		t.Errorf("snapshot = %+v, want %+v", snap, want)
	}
}

func TestClient_GetCoinData_SchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"market_data missing", `{"id":"bitcoin"}`},
		{"market_data null", `{"id":"bitcoin","market_data":null}`},
		{"usd price missing", `{"market_data":{"current_price":{"eur":1},"price_change_percentage_24h":1,"market_cap":{"usd":1}}}`},
		{"change null", `{"market_data":{"current_price":{"usd":1},"price_change_percentage_24h":null,"market_cap":{"usd":1}}}`},
		{"market cap missing", `{"market_data":{"current_price":{"usd":1},"price_change_percentage_24h":1}}`},
		{"usd price null", `{"market_data":{"current_price":{"usd":null},"price_change_percentage_24h":1,"market_cap":{"usd":1}}}`},
		{"market cap null", `{"market_data":{"current_price":{"usd":1},"price_change_percentage_24h":1,"market_cap":{"usd":null}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient("http://coingecko.test", time.Second, zerolog.Nop())
			client.httpClient.Transport = &MockRoundTripper{
				Func: func(req *http.Request) (*http.Response, error) {
					return jsonResponse(http.StatusOK, tt.body), nil
				},
			}

			_, err := client.GetCoinData(context.Background(), "bitcoin")
			if !errors.Is(err, ErrSchema) {
				t.Fatalf("expected ErrSchema, got %v", err)
			}
		})
	}
}

func TestClient_GetPriceHistory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/coins/bitcoin/market_chart" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("vs_currency"); got != "usd" {
			t.Errorf("vs_currency = %q", got)
		}
		if got := r.URL.Query().Get("days"); got != "30" {
			t.Errorf("days = %q", got)
		}
		w.Write([]byte(`{"prices": [[1700000000000, 35000.5], [1700003600000, 35100.0]]}`))
	})

	history, err := client.GetPriceHistory(context.Background(), "bitcoin", 30)
	if err != nil {
		t.Fatalf("GetPriceHistory failed: %v", err)
	}
	if history.Len() != 2 {
		t.Fatalf("expected 2 points, got %d", history.Len())
	}
	if !history.Points[0].Timestamp.Before(history.Points[1].Timestamp) {
		t.Errorf("timestamps not strictly increasing: %v", history.Points)
	}
	if got := history.Points[0].Timestamp; !got.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("first timestamp = %v", got)
	}
	if history.Points[0].PriceUSD != 35000.5 || history.Points[1].PriceUSD != 35100.0 {
		t.Errorf("prices = %v", history.Points)
	}
	if history.CoinID != "bitcoin" || history.Days != 30 {
		t.Errorf("key = (%s, %d)", history.CoinID, history.Days)
	}
}

func TestClient_GetPriceHistory_SortsAndDefaultsDays(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("days"); got != "30" {
			t.Errorf("days = %q, want default 30", got)
		}
		w.Write([]byte(`{"prices": [[1700003600000, 2], [1700000000000, 1]]}`))
	})

	history, err := client.GetPriceHistory(context.Background(), "bitcoin", 0)
	if err != nil {
		t.Fatalf("GetPriceHistory failed: %v", err)
	}
	if history.Points[0].PriceUSD != 1 || history.Points[1].PriceUSD != 2 {
		t.Errorf("points not sorted by time: %v", history.Points)
	}
}

func TestClient_GetPriceHistory_SchemaErrors(t *testing.T) {
	for name, body := range map[string]string{
		"prices missing": `{"market_caps": []}`,
		"short pair":     `{"prices": [[1700000000000]]}`,
		"null timestamp": `{"prices": [[null, 5], [1700003600000, 35100.0]]}`,
		"null price":     `{"prices": [[1700000000000, null], [1700003600000, 35100.0]]}`,
	} {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			})
			if _, err := client.GetPriceHistory(context.Background(), "bitcoin", 30); !errors.Is(err, ErrSchema) {
				t.Fatalf("expected ErrSchema, got %v", err)
			}
		})
	}
}

func TestClient_ProtocolErrors(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
		})
		if _, err := client.GetCoinList(context.Background()); !errors.Is(err, ErrProtocol) {
			t.Fatalf("expected ErrProtocol, got %v", err)
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"id":`))
		})
		if _, err := client.GetCoinList(context.Background()); !errors.Is(err, ErrProtocol) {
			t.Fatalf("expected ErrProtocol, got %v", err)
		}
	})
}

func TestClient_NetworkError(t *testing.T) {
	client := NewClient("http://coingecko.test", time.Second, zerolog.Nop())
	dialErr := errors.New("connection refused")
	client.httpClient.Transport = &MockRoundTripper{
		Func: func(req *http.Request) (*http.Response, error) {
			return nil, dialErr
		},
	}

	_, err := client.GetCoinData(context.Background(), "bitcoin")
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if !errors.Is(err, dialErr) {
		t.Errorf("cause not wrapped: %v", err)
	}
}
