// Package tracker memoizes the CoinGecko fetches behind one cache policy per
// data kind and derives the dashboard view from them.
package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"cryptotrack/internal"
	"cryptotrack/internal/cache"
)

const DefaultSnapshotTTL = 60 * time.Second

// ErrUnknownCoin is returned when a name or id is absent from the directory.
var ErrUnknownCoin = fmt.Errorf("%w: coin not in directory", internal.ErrSchema)

type Source interface {
	GetCoinList(ctx context.Context) ([]internal.CoinRef, error)
	GetCoinData(ctx context.Context, coinID string) (internal.MarketSnapshot, error)
	GetPriceHistory(ctx context.Context, coinID string, days int) (internal.PriceHistory, error)
}

type Options struct {
	SnapshotTTL time.Duration
	HistoryDays int
	DefaultCoin string
	Clock       cache.Clock
}

type historyKey struct {
	CoinID string
	Days   int
}

type Tracker struct {
	source      Source
	snapshotTTL time.Duration
	historyDays int
	defaultCoin string
	now         cache.Clock
	logger      zerolog.Logger

	directory *cache.Cache[struct{}, []internal.CoinRef]
	snapshots *cache.Cache[string, internal.MarketSnapshot]
	histories *cache.Cache[historyKey, internal.PriceHistory]
}

// View is everything the presentation layer needs for one selected coin.
type View struct {
	Coin     internal.CoinRef        `json:"coin"`
	Snapshot internal.MarketSnapshot `json:"snapshot"`
	History  internal.PriceHistory   `json:"history"`
}

type Stats struct {
	Directory int `json:"directory"`
	Snapshots int `json:"snapshots"`
	Histories int `json:"histories"`
}

func New(source Source, opts Options, logger zerolog.Logger) *Tracker {
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = DefaultSnapshotTTL
	}
	if opts.HistoryDays <= 0 {
		opts.HistoryDays = internal.DefaultHistoryDays
	}
	if opts.DefaultCoin == "" {
		opts.DefaultCoin = internal.DefaultCoinName
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Tracker{
		source:      source,
		snapshotTTL: opts.SnapshotTTL,
		historyDays: opts.HistoryDays,
		defaultCoin: opts.DefaultCoin,
		now:         opts.Clock,
		logger:      logger.With().Str("component", "tracker").Logger(),
		directory:   cache.New[struct{}, []internal.CoinRef](opts.Clock),
		snapshots:   cache.New[string, internal.MarketSnapshot](opts.Clock),
		histories:   cache.New[historyKey, internal.PriceHistory](opts.Clock),
	}
}

// Coins returns the coin directory, fetched once per process.
func (t *Tracker) Coins(ctx context.Context) ([]internal.CoinRef, error) {
	return t.directory.GetOrFetch(ctx, struct{}{}, cache.NoExpiry, func(ctx context.Context) ([]internal.CoinRef, error) {
		t.logger.Info().Msg("Fetching coin directory")
		return t.source.GetCoinList(ctx)
	})
}

// Snapshot returns current market data for coinID, refetched once the cached
// copy is older than the snapshot TTL.
func (t *Tracker) Snapshot(ctx context.Context, coinID string) (internal.MarketSnapshot, error) {
	return t.snapshots.GetOrFetch(ctx, coinID, t.snapshotTTL, func(ctx context.Context) (internal.MarketSnapshot, error) {
		t.logger.Debug().Str("coin", coinID).Msg("Fetching market snapshot")
		return t.source.GetCoinData(ctx, coinID)
	})
}

// History returns the price series for (coinID, days). A days value of 0 or
// less means the configured default. Entries are never refreshed.
func (t *Tracker) History(ctx context.Context, coinID string, days int) (internal.PriceHistory, error) {
	if days <= 0 {
		days = t.historyDays
	}
	key := historyKey{CoinID: coinID, Days: days}
	return t.histories.GetOrFetch(ctx, key, cache.NoExpiry, func(ctx context.Context) (internal.PriceHistory, error) {
		t.logger.Debug().Str("coin", coinID).Int("days", days).Msg("Fetching price history")
		return t.source.GetPriceHistory(ctx, coinID, days)
	})
}

// Resolve maps a display name to a directory entry. When several entries
// share the name, the one whose id is the name's slug wins, then the first
// in directory order.
func (t *Tracker) Resolve(ctx context.Context, name string) (internal.CoinRef, error) {
	coins, err := t.Coins(ctx)
	if err != nil {
		return internal.CoinRef{}, err
	}

	var matches []internal.CoinRef
	for _, c := range coins {
		if c.Name == name {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return internal.CoinRef{}, fmt.Errorf("%w: name %q", ErrUnknownCoin, name)
	case 1:
		return matches[0], nil
	}

	slug := strings.ReplaceAll(strings.ToLower(name), " ", "-")
	for _, c := range matches {
		if c.ID == slug {
			return c, nil
		}
	}
	t.logger.Debug().Str("name", name).Int("matches", len(matches)).Str("picked", matches[0].ID).Msg("Ambiguous coin name")
	return matches[0], nil
}

func (t *Tracker) DefaultCoin(ctx context.Context) (internal.CoinRef, error) {
	return t.Resolve(ctx, t.defaultCoin)
}

func (t *Tracker) Lookup(ctx context.Context, coinID string) (internal.CoinRef, error) {
	coins, err := t.Coins(ctx)
	if err != nil {
		return internal.CoinRef{}, err
	}
	for _, c := range coins {
		if c.ID == coinID {
			return c, nil
		}
	}
	return internal.CoinRef{}, fmt.Errorf("%w: id %q", ErrUnknownCoin, coinID)
}

// View recomputes the derived state for coin. Cache policy alone decides
// which parts hit the network.
func (t *Tracker) View(ctx context.Context, coin internal.CoinRef) (View, error) {
	snap, err := t.Snapshot(ctx, coin.ID)
	if err != nil {
		return View{}, fmt.Errorf("snapshot [%s]: %w", coin.ID, err)
	}
	history, err := t.History(ctx, coin.ID, 0)
	if err != nil {
		return View{}, fmt.Errorf("history [%s]: %w", coin.ID, err)
	}
	return View{Coin: coin, Snapshot: snap, History: history}, nil
}

// SnapshotAge is how long ago the cached snapshot for coinID was fetched.
func (t *Tracker) SnapshotAge(coinID string) (time.Duration, bool) {
	at, ok := t.snapshots.FetchedAt(coinID)
	if !ok {
		return 0, false
	}
	return t.now().Sub(at), true
}

func (t *Tracker) HistoryDays() int {
	return t.historyDays
}

func (t *Tracker) Stats() Stats {
	return Stats{
		Directory: t.directory.Len(),
		Snapshots: t.snapshots.Len(),
		Histories: t.histories.Len(),
	}
}
