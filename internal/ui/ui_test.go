package ui

import (
	"testing"
	"time"

	"cryptotrack/internal"
)

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{35000.5, "$35,000.50"},
		{0.123, "$0.12"},
		{690000000000, "$690,000,000,000.00"},
		{-1234.5, "-$1,234.50"},
	}
	for _, tt := range tests {
		if got := FormatUSD(tt.in); got != tt.want {
			t.Errorf("FormatUSD(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(1.234); got != "+1.23%" {
		t.Errorf("got %q", got)
	}
	if got := FormatPercent(-0.5); got != "-0.50%" {
		t.Errorf("got %q", got)
	}
}

func TestMetrics(t *testing.T) {
	m := Metrics(internal.MarketSnapshot{PriceUSD: 35000.5, Change24hPct: -2, MarketCapUSD: 1000})
	if len(m) != 2 {
		t.Fatalf("expected 2 metrics, got %d", len(m))
	}
	if m[0].Label != "Current Price (USD)" || m[0].Value != "$35,000.50" || m[0].Delta != "-2.00%" || m[0].Trend != Down {
		t.Errorf("price metric = %+v", m[0])
	}
	if m[1].Label != "Market Cap (USD)" || m[1].Value != "$1,000.00" || m[1].Delta != "" {
		t.Errorf("market cap metric = %+v", m[1])
	}
}

var directory = []internal.CoinRef{
	{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin"},
	{ID: "bitcoin-cash", Symbol: "bch", Name: "Bitcoin Cash"},
	{ID: "ethereum", Symbol: "eth", Name: "Ethereum"},
	{ID: "solana", Symbol: "sol", Name: "Solana"},
	{ID: "tether", Symbol: "usdt", Name: "Tether"},
}

func TestFilter(t *testing.T) {
	if got := Filter(directory, ""); len(got) != len(directory) {
		t.Errorf("empty query kept %d", len(got))
	}
	if got := Filter(directory, "BITCOIN"); len(got) != 2 {
		t.Errorf("name filter = %v", got)
	}
	if got := Filter(directory, "usdt"); len(got) != 1 || got[0].ID != "tether" {
		t.Errorf("symbol filter = %v", got)
	}
}

func TestSelector_RevealsInitialSelection(t *testing.T) {
	s := NewSelector(directory, "tether", 2)
	if s.Offset() != 3 {
		t.Fatalf("offset = %d, want 3", s.Offset())
	}
	visible := s.Visible()
	if len(visible) != 2 || visible[1].ID != "tether" {
		t.Errorf("visible = %v", visible)
	}
}

func TestSelector_TypeAndPick(t *testing.T) {
	s := NewSelector(directory, "bitcoin", 3)

	s.Type([]rune("ereum"))
	if s.Len() != 1 {
		t.Fatalf("filtered len = %d", s.Len())
	}
	coin, ok := s.Pick(0)
	if !ok || coin.ID != "ethereum" || s.Selected() != "ethereum" {
		t.Fatalf("Pick = %+v, %v", coin, ok)
	}
	if _, ok := s.Pick(1); ok {
		t.Error("picked past the end")
	}

	for i := 0; i < len("ereum"); i++ {
		s.Backspace()
	}
	if s.Query() != "" || s.Len() != len(directory) {
		t.Errorf("query %q len %d after backspace", s.Query(), s.Len())
	}
}

func TestSelector_ScrollClamps(t *testing.T) {
	s := NewSelector(directory, "", 2)
	s.Scroll(10)
	if s.Offset() != 3 {
		t.Errorf("offset = %d, want 3", s.Offset())
	}
	s.Scroll(-10)
	if s.Offset() != 0 {
		t.Errorf("offset = %d, want 0", s.Offset())
	}
}

func TestSelector_Move(t *testing.T) {
	s := NewSelector(directory, "bitcoin", 2)

	coin, _ := s.Move(1)
	if coin.ID != "bitcoin-cash" {
		t.Fatalf("Move(1) = %s", coin.ID)
	}
	coin, _ = s.Move(2)
	if coin.ID != "solana" || s.Offset() != 2 {
		t.Fatalf("Move(2) = %s offset %d", coin.ID, s.Offset())
	}
	coin, _ = s.Move(10)
	if coin.ID != "tether" {
		t.Fatalf("Move past end = %s", coin.ID)
	}

	s.SetQuery("zzz")
	if _, ok := s.Move(1); ok {
		t.Error("moved in empty list")
	}
}

func TestRowAt(t *testing.T) {
	// Rows of height 20 from y=40; the panel leaves room for 3.5 rows.
	const top, bottom, height = 40.0, 110.0, 20.0

	if n := RowsFit(top, bottom, height); n != 3 {
		t.Fatalf("RowsFit = %d, want 3", n)
	}

	tests := []struct {
		y    float64
		row  int
		want bool
	}{
		{39, 0, false},
		{40, 0, true},
		{59.9, 0, true},
		{60, 1, true},
		{99.9, 2, true},
		{100, 0, false}, // partial fourth row is never drawn
		{109, 0, false},
		{110, 0, false},
		{500, 0, false},
	}
	for _, tt := range tests {
		row, ok := RowAt(tt.y, top, bottom, height)
		if ok != tt.want || (ok && row != tt.row) {
			t.Errorf("RowAt(%v) = %d, %v; want %d, %v", tt.y, row, ok, tt.row, tt.want)
		}
	}

	if _, ok := RowAt(50, top, bottom, 0); ok {
		t.Error("zero row height must not hit")
	}
}

func TestRowAt_ShrunkenPanelHidesSelectorRows(t *testing.T) {
	coins := []internal.CoinRef{
		{ID: "bitcoin", Name: "Bitcoin"},
		{ID: "ethereum", Name: "Ethereum"},
		{ID: "tether", Name: "Tether"},
		{ID: "solana", Name: "Solana"},
	}
	s := NewSelector(coins, "bitcoin", 4)

	// Only two rows fit; a click where the fourth row would be lands on
	// nothing instead of picking a coin the user cannot see.
	const top, bottom, height = 0.0, 45.0, 20.0
	if _, ok := RowAt(70, top, bottom, height); ok {
		t.Fatal("click below the drawn rows was a hit")
	}
	row, ok := RowAt(25, top, bottom, height)
	if !ok {
		t.Fatal("click on second row missed")
	}
	if coin, ok := s.Pick(row); !ok || coin.ID != "ethereum" {
		t.Errorf("Pick(%d) = %+v, %v", row, coin, ok)
	}
}

func TestLabel(t *testing.T) {
	if got := Label(directory[0]); got != "Bitcoin (BTC)" {
		t.Errorf("got %q", got)
	}
}

func series(prices ...float64) []internal.PricePoint {
	start := time.UnixMilli(1700000000000).UTC()
	out := make([]internal.PricePoint, len(prices))
	for i, p := range prices {
		out[i] = internal.PricePoint{Timestamp: start.Add(time.Duration(i) * time.Hour), PriceUSD: p}
	}
	return out
}

func TestProject(t *testing.T) {
	r := Rect{MinX: 0, MinY: 0, MaxX: 100, MaxY: 50}
	pts := Project(series(10, 20, 15), r)

	want := []Point{{0, 50}, {50, 0}, {100, 25}}
	for i := range want {
		if pts[i] != want[i] {
			t.Errorf("point %d = %+v, want %+v", i, pts[i], want[i])
		}
	}
}

func TestProject_FlatAndSingle(t *testing.T) {
	r := Rect{MinX: 0, MinY: 0, MaxX: 100, MaxY: 50}

	flat := Project(series(5, 5), r)
	if flat[0].Y != 25 || flat[1].Y != 25 {
		t.Errorf("flat series = %+v", flat)
	}

	single := Project(series(5), r)
	if single[0] != (Point{50, 25}) {
		t.Errorf("single point = %+v", single)
	}

	if Project(nil, r) != nil {
		t.Error("expected nil for empty series")
	}
}

func TestDownsample(t *testing.T) {
	pts := series(0, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	out := Downsample(pts, 4)
	if len(out) != 4 {
		t.Fatalf("len = %d", len(out))
	}
	if out[0].PriceUSD != 0 || out[3].PriceUSD != 9 {
		t.Errorf("endpoints = %v, %v", out[0].PriceUSD, out[3].PriceUSD)
	}
	if got := Downsample(pts, 20); len(got) != 10 {
		t.Errorf("short series changed: %d", len(got))
	}
}

func TestChartLabels(t *testing.T) {
	if got := ChartTitle("Bitcoin", 30); got != "Bitcoin - Last 30 Days Price" {
		t.Errorf("title = %q", got)
	}
	start, end := AxisLabels(series(1, 2, 3))
	if start != "Nov 14" || end != "Nov 15" {
		t.Errorf("axis = %q, %q", start, end)
	}
	min, max := PriceRange(series(3, 1, 2))
	if min != 1 || max != 3 {
		t.Errorf("range = %v, %v", min, max)
	}
}
