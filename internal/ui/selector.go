package ui

import (
	"fmt"
	"strings"

	"cryptotrack/internal"
)

// Selector is a filterable single-choice list over the coin directory.
// Rows is the number of entries visible at once.
type Selector struct {
	coins    []internal.CoinRef
	filtered []internal.CoinRef
	query    string
	selected string
	offset   int
	rows     int
}

func NewSelector(coins []internal.CoinRef, selectedID string, rows int) *Selector {
	if rows < 1 {
		rows = 1
	}
	s := &Selector{
		coins:    coins,
		filtered: coins,
		selected: selectedID,
		rows:     rows,
	}
	s.reveal()
	return s
}

func Label(c internal.CoinRef) string {
	if c.Symbol == "" {
		return c.Name
	}
	return fmt.Sprintf("%s (%s)", c.Name, strings.ToUpper(c.Symbol))
}

// Filter returns the coins whose name, symbol or id contains query, ignoring
// case. An empty query matches everything.
func Filter(coins []internal.CoinRef, query string) []internal.CoinRef {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return coins
	}
	var out []internal.CoinRef
	for _, c := range coins {
		if strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Symbol), q) ||
			strings.Contains(c.ID, q) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Selector) Query() string {
	return s.query
}

func (s *Selector) SetQuery(q string) {
	if q == s.query {
		return
	}
	s.query = q
	s.filtered = Filter(s.coins, q)
	s.offset = 0
	s.reveal()
}

func (s *Selector) Type(chars []rune) {
	if len(chars) == 0 {
		return
	}
	s.SetQuery(s.query + string(chars))
}

func (s *Selector) Backspace() {
	if s.query == "" {
		return
	}
	r := []rune(s.query)
	s.SetQuery(string(r[:len(r)-1]))
}

func (s *Selector) Len() int {
	return len(s.filtered)
}

func (s *Selector) Offset() int {
	return s.offset
}

func (s *Selector) Scroll(delta int) {
	s.offset += delta
	s.clamp()
}

func (s *Selector) Visible() []internal.CoinRef {
	end := s.offset + s.rows
	if end > len(s.filtered) {
		end = len(s.filtered)
	}
	return s.filtered[s.offset:end]
}

// Pick selects the entry at the given visible row.
func (s *Selector) Pick(row int) (internal.CoinRef, bool) {
	visible := s.Visible()
	if row < 0 || row >= len(visible) {
		return internal.CoinRef{}, false
	}
	c := visible[row]
	s.selected = c.ID
	return c, true
}

// Move shifts the selection by delta within the filtered list and scrolls it
// into view. With no visible selection it starts from the top.
func (s *Selector) Move(delta int) (internal.CoinRef, bool) {
	if len(s.filtered) == 0 {
		return internal.CoinRef{}, false
	}
	idx := s.index()
	if idx < 0 {
		idx = 0
	} else {
		idx += delta
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(s.filtered) {
		idx = len(s.filtered) - 1
	}
	c := s.filtered[idx]
	s.selected = c.ID
	s.reveal()
	return c, true
}

func (s *Selector) Selected() string {
	return s.selected
}

func (s *Selector) IsSelected(c internal.CoinRef) bool {
	return c.ID == s.selected
}

func (s *Selector) index() int {
	for i, c := range s.filtered {
		if c.ID == s.selected {
			return i
		}
	}
	return -1
}

func (s *Selector) reveal() {
	if idx := s.index(); idx >= 0 {
		if idx < s.offset {
			s.offset = idx
		} else if idx >= s.offset+s.rows {
			s.offset = idx - s.rows + 1
		}
	}
	s.clamp()
}

func (s *Selector) clamp() {
	max := len(s.filtered) - s.rows
	if max < 0 {
		max = 0
	}
	if s.offset > max {
		s.offset = max
	}
	if s.offset < 0 {
		s.offset = 0
	}
}

// RowsFit counts the whole rows of the given height between top and bottom.
func RowsFit(top, bottom, height float64) int {
	if height <= 0 || bottom <= top {
		return 0
	}
	return int((bottom - top) / height)
}

// RowAt maps a y coordinate to a row index in a list whose rows start at top
// and must end at or above bottom. Partially visible rows are not hits.
func RowAt(y, top, bottom, height float64) (int, bool) {
	if y < top || y >= bottom {
		return 0, false
	}
	row := int((y - top) / height)
	if row >= RowsFit(top, bottom, height) {
		return 0, false
	}
	return row, true
}
