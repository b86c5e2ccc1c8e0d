package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const DefaultBaseURL = "https://api.coingecko.com"

// Client talks to the CoinGecko v3 REST API. It does no caching of its own.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
	now        func() time.Time
}

func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With().Str("component", "coingecko").Logger(),
		now:    time.Now,
	}
}

type coinListEntry struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

type coinDataResponse struct {
	ID         string `json:"id"`
	MarketData *struct {
		CurrentPrice             map[string]*float64 `json:"current_price"`
		PriceChangePercentage24h *float64            `json:"price_change_percentage_24h"`
		MarketCap                map[string]*float64 `json:"market_cap"`
	} `json:"market_data"`
}

type marketChartResponse struct {
	Prices *[][]*float64 `json:"prices"`
}

// GetCoinList returns the coin directory. Entries without an id are skipped
// and repeated ids keep their first occurrence.
func (c *Client) GetCoinList(ctx context.Context) ([]CoinRef, error) {
	var entries []coinListEntry
	if err := c.getJSON(ctx, "/api/v3/coins/list", nil, &entries); err != nil {
		return nil, err
	}

	coins := make([]CoinRef, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	dropped := 0
	for _, e := range entries {
		if e.ID == "" {
			dropped++
			continue
		}
		if _, ok := seen[e.ID]; ok {
			dropped++
			continue
		}
		seen[e.ID] = struct{}{}
		coins = append(coins, CoinRef{ID: e.ID, Symbol: e.Symbol, Name: e.Name})
	}

	if dropped > 0 {
		c.logger.Warn().Int("dropped", dropped).Msg("Coin list contained empty or duplicate ids")
	}
	c.logger.Debug().Int("coins", len(coins)).Msg("Coin list fetched")
	return coins, nil
}

func (c *Client) GetCoinData(ctx context.Context, coinID string) (MarketSnapshot, error) {
	var resp coinDataResponse
	if err := c.getJSON(ctx, "/api/v3/coins/"+url.PathEscape(coinID), nil, &resp); err != nil {
		return MarketSnapshot{}, err
	}

	md := resp.MarketData
	if md == nil {
		return MarketSnapshot{}, fmt.Errorf("%w: market_data missing [%s]", ErrSchema, coinID)
	}
	price := md.CurrentPrice[VsCurrency]
	if price == nil {
		return MarketSnapshot{}, fmt.Errorf("%w: market_data.current_price.%s missing or null [%s]", ErrSchema, VsCurrency, coinID)
	}
	if md.PriceChangePercentage24h == nil {
		return MarketSnapshot{}, fmt.Errorf("%w: market_data.price_change_percentage_24h missing or null [%s]", ErrSchema, coinID)
	}
	marketCap := md.MarketCap[VsCurrency]
	if marketCap == nil {
		return MarketSnapshot{}, fmt.Errorf("%w: market_data.market_cap.%s missing or null [%s]", ErrSchema, VsCurrency, coinID)
	}

	return MarketSnapshot{
		CoinID:       coinID,
		PriceUSD:     *price,
		Change24hPct: *md.PriceChangePercentage24h,
		MarketCapUSD: *marketCap,
		FetchedAt:    c.now(),
	}, nil
}

// GetPriceHistory fetches the USD price series for the last days days.
func (c *Client) GetPriceHistory(ctx context.Context, coinID string, days int) (PriceHistory, error) {
	if days <= 0 {
		days = DefaultHistoryDays
	}
	query := url.Values{}
	query.Set("vs_currency", VsCurrency)
	query.Set("days", strconv.Itoa(days))

	var resp marketChartResponse
	path := "/api/v3/coins/" + url.PathEscape(coinID) + "/market_chart"
	if err := c.getJSON(ctx, path, query, &resp); err != nil {
		return PriceHistory{}, err
	}
	if resp.Prices == nil {
		return PriceHistory{}, fmt.Errorf("%w: prices missing [%s]", ErrSchema, coinID)
	}

	points := make([]PricePoint, 0, len(*resp.Prices))
	for i, pair := range *resp.Prices {
		if len(pair) != 2 {
			return PriceHistory{}, fmt.Errorf("%w: prices[%d] has %d values, want 2 [%s]", ErrSchema, i, len(pair), coinID)
		}
		if pair[0] == nil || pair[1] == nil {
			return PriceHistory{}, fmt.Errorf("%w: prices[%d] contains null [%s]", ErrSchema, i, coinID)
		}
		points = append(points, PricePoint{
			Timestamp: time.UnixMilli(int64(*pair[0])).UTC(),
			PriceUSD:  *pair[1],
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})

	return PriceHistory{CoinID: coinID, Days: days, Points: points}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: build request [%s]: %w", ErrProtocol, path, err)
	}
	req.Header.Set("Accept", "application/json")

	start := c.now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: HTTP request failed [%s]: %w", ErrNetwork, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Msg("CoinGecko request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: API error [%s]: %s - %s", ErrProtocol, path, resp.Status, string(bodyBytes))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: body read error [%s]: %w", ErrNetwork, path, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: JSON parse error [%s]: %w", ErrProtocol, path, err)
	}
	return nil
}
