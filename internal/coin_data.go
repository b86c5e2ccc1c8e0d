package internal

import "time"

const (
	DefaultCoinName    = "Bitcoin"
	DefaultHistoryDays = 30
	VsCurrency         = "usd"
)

// CoinRef is one entry of the coin directory.
type CoinRef struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

type MarketSnapshot struct {
	CoinID       string    `json:"coin_id"`
	PriceUSD     float64   `json:"price_usd"`
	Change24hPct float64   `json:"change_24h_pct"`
	MarketCapUSD float64   `json:"market_cap_usd"`
	FetchedAt    time.Time `json:"fetched_at"`
}

type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	PriceUSD  float64   `json:"price_usd"`
}

// PriceHistory is ordered by Timestamp ascending.
type PriceHistory struct {
	CoinID string       `json:"coin_id"`
	Days   int          `json:"days"`
	Points []PricePoint `json:"points"`
}

func (h PriceHistory) Len() int {
	return len(h.Points)
}
