package dashboard

import (
	"context"
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/rs/zerolog"
	"github.com/temidaradev/esset/v2"
	"golang.org/x/image/font/gofont/goregular"

	"cryptotrack/internal"
	"cryptotrack/internal/tracker"
	"cryptotrack/internal/ui"
)

const glyphsToPreload = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789.,:/$%+-()_ "

type Options struct {
	Title           string
	Width           int
	Height          int
	FontSize        float64
	VisibleRows     int
	RefreshInterval time.Duration
}

// Game renders the selector, metrics and chart for one selected coin. Data is
// loaded off the render loop and swapped in under mu.
type Game struct {
	ctx     context.Context
	tracker *tracker.Tracker
	logger  zerolog.Logger
	opts    Options

	mu          sync.Mutex
	wg          sync.WaitGroup
	selector    *ui.Selector
	selected    internal.CoinRef
	view        *tracker.View
	loadErr     error
	loadingID   string
	lastRefresh time.Time

	fontFace           text.Face
	physicalLineHeight float64
	deviceScale        float64
	solidColorImage    *ebiten.Image

	// Last size handed out by Layout, in screen pixels.
	screenWidth  int
	screenHeight int
}

func New(ctx context.Context, tr *tracker.Tracker, coins []internal.CoinRef, initial internal.CoinRef, opts Options, logger zerolog.Logger) (*Game, error) {
	deviceScale := ebiten.Monitor().DeviceScaleFactor()

	scaledFontSize := opts.FontSize * deviceScale
	fontFace, err := esset.GetFont(goregular.TTF, int(scaledFontSize))
	if err != nil {
		return nil, fmt.Errorf("font could not be loaded with scaled size %f: %w", scaledFontSize, err)
	}

	logger.Debug().Msg("Glyph caching...")
	tempImage := ebiten.NewImage(1, 1)
	text.Draw(tempImage, glyphsToPreload, fontFace, &text.DrawOptions{})
	logger.Debug().Msg("Glyph caching done.")

	physicalLineHeight := scaledFontSize * 1.5
	physicalLineHeight += 5.0 * deviceScale

	g := &Game{
		ctx:                ctx,
		tracker:            tr,
		logger:             logger.With().Str("component", "dashboard").Logger(),
		opts:               opts,
		selector:           ui.NewSelector(coins, initial.ID, opts.VisibleRows),
		selected:           initial,
		fontFace:           fontFace,
		physicalLineHeight: physicalLineHeight,
		deviceScale:        deviceScale,
	}

	g.mu.Lock()
	g.startLoadLocked()
	g.mu.Unlock()
	return g, nil
}

// Run opens the window and blocks until it is closed or ctx is cancelled.
func (g *Game) Run() error {
	ebiten.SetWindowSize(g.opts.Width, g.opts.Height)
	ebiten.SetWindowTitle(g.opts.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	err := ebiten.RunGame(g)
	g.wg.Wait()
	return err
}

func (g *Game) initSolidColorImage() {
	if g.solidColorImage == nil {
		g.solidColorImage = ebiten.NewImage(1, 1)
		g.solidColorImage.Fill(color.White)
	}
}

func (g *Game) selectLocked(coin internal.CoinRef) {
	if coin.ID == g.selected.ID {
		return
	}
	g.logger.Info().Str("coin", coin.ID).Msg("Coin selected")
	g.selected = coin
	g.view = nil
	g.loadErr = nil
	g.startLoadLocked()
}

func (g *Game) startLoadLocked() {
	coin := g.selected
	g.lastRefresh = time.Now()
	if g.loadingID == coin.ID {
		return
	}
	g.loadingID = coin.ID

	g.wg.Add(1)
	go g.load(coin)
}

func (g *Game) load(coin internal.CoinRef) {
	defer g.wg.Done()

	view, err := g.tracker.View(g.ctx, coin)

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.loadingID == coin.ID {
		g.loadingID = ""
	}
	if coin.ID != g.selected.ID {
		return
	}
	if err != nil {
		g.logger.Error().Err(err).Str("coin", coin.ID).Msg("Could not load coin")
		g.view = nil
		g.loadErr = err
		return
	}
	g.view = &view
	g.loadErr = nil
}

func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.handleKeys()
	g.handleMouse()

	if time.Since(g.lastRefresh) >= g.opts.RefreshInterval {
		g.startLoadLocked()
	}
	return nil
}

func (g *Game) handleKeys() {
	g.selector.Type(ebiten.AppendInputChars(nil))

	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		g.selector.Backspace()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.selector.SetQuery("")
	}

	delta := 0
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		delta = 1
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		delta = -1
	case inpututil.IsKeyJustPressed(ebiten.KeyPageDown):
		delta = g.opts.VisibleRows
	case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		delta = -g.opts.VisibleRows
	}
	if delta != 0 {
		if coin, ok := g.selector.Move(delta); ok {
			g.selectLocked(coin)
		}
	}
}

func (g *Game) handleMouse() {
	if _, dy := ebiten.Wheel(); dy != 0 {
		step := -1
		if dy < 0 {
			step = 1
		}
		g.selector.Scroll(step * 3)
	}

	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)

	l := g.layout(g.screenWidth, g.screenHeight)
	if x < l.list.MinX || x >= l.list.MaxX {
		return
	}
	row, ok := ui.RowAt(y, l.rowsStartY, l.rowsMaxY, g.physicalLineHeight)
	if !ok {
		return
	}
	if coin, ok := g.selector.Pick(row); ok {
		g.selectLocked(coin)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	g.screenWidth = int(float64(outsideWidth) * g.deviceScale)
	g.screenHeight = int(float64(outsideHeight) * g.deviceScale)
	return g.screenWidth, g.screenHeight
}
