package ui

import (
	"fmt"

	"cryptotrack/internal"
)

type Trend int

const (
	Flat Trend = iota
	Up
	Down
)

type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Delta string `json:"delta,omitempty"`
	Trend Trend  `json:"trend"`
}

func Metrics(s internal.MarketSnapshot) []Metric {
	trend := Flat
	switch {
	case s.Change24hPct > 0:
		trend = Up
	case s.Change24hPct < 0:
		trend = Down
	}
	return []Metric{
		{
			Label: "Current Price (USD)",
			Value: FormatUSD(s.PriceUSD),
			Delta: FormatPercent(s.Change24hPct),
			Trend: trend,
		},
		{
			Label: "Market Cap (USD)",
			Value: FormatUSD(s.MarketCapUSD),
		},
	}
}

func Heading(coin internal.CoinRef) string {
	return fmt.Sprintf("%s Price Info", coin.Name)
}
