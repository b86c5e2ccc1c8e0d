package dashboard

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/temidaradev/esset/v2"

	"cryptotrack/internal/tracker"
	"cryptotrack/internal/ui"
)

var (
	backgroundColor = color.RGBA{25, 25, 25, 255}
	panelColor      = color.RGBA{50, 50, 50, 255}
	highlightColor  = color.RGBA{70, 90, 120, 255}
	textColor       = color.RGBA{255, 255, 255, 255}
	mutedColor      = color.RGBA{150, 150, 150, 255}
	upColor         = color.RGBA{0, 255, 0, 255}
	downColor       = color.RGBA{255, 0, 0, 255}
	markerColor     = color.RGBA{255, 255, 0, 255}
)

type screenLayout struct {
	list       ui.Rect
	searchY    float64
	rowsStartY float64
	rowsMaxY   float64
	contentX   float64
	chart      ui.Rect
}

func (g *Game) layout(screenWidth, screenHeight int) screenLayout {
	pad := 10.0 * g.deviceScale
	listWidth := 260.0 * g.deviceScale

	l := screenLayout{
		list:       ui.Rect{MinX: pad, MinY: pad, MaxX: pad + listWidth, MaxY: float64(screenHeight) - pad},
		searchY:    pad,
		rowsStartY: pad + g.physicalLineHeight*1.5,
		contentX:   pad*3 + listWidth,
	}
	// The last line of the panel holds the coin count.
	l.rowsMaxY = l.list.MaxY - g.physicalLineHeight

	chartPadding := 30.0 * g.deviceScale
	l.chart = ui.Rect{
		MinX: l.contentX + chartPadding,
		MinY: pad + g.physicalLineHeight*6,
		MaxX: float64(screenWidth) - chartPadding,
		MaxY: float64(screenHeight) - chartPadding - g.physicalLineHeight,
	}
	return l
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.initSolidColorImage()

	screen.Fill(backgroundColor)

	screenWidth, screenHeight := screen.Bounds().Dx(), screen.Bounds().Dy()
	l := g.layout(screenWidth, screenHeight)

	g.mu.Lock()
	defer g.mu.Unlock()

	g.drawSelector(screen, l)

	esset.DrawText(screen, ui.Heading(g.selected), 0, l.contentX, l.searchY, g.fontFace, textColor)

	switch {
	case g.loadErr != nil:
		g.drawChartMessage(screen, l.chart, "Error: "+g.loadErr.Error(), downColor)
	case g.view == nil:
		g.drawChartMessage(screen, l.chart, "Loading...", mutedColor)
	default:
		g.drawMetrics(screen, l)
		g.drawChart(screen, l.chart, g.view)
	}
}

func (g *Game) drawSelector(screen *ebiten.Image, l screenLayout) {
	vector.DrawFilledRect(screen, float32(l.list.MinX), float32(l.list.MinY), float32(l.list.Dx()), float32(l.list.Dy()), panelColor, false)

	search := fmt.Sprintf("Search: %s_", g.selector.Query())
	esset.DrawText(screen, search, 0, l.list.MinX+5*g.deviceScale, l.searchY, g.fontFace, mutedColor)

	fit := ui.RowsFit(l.rowsStartY, l.rowsMaxY, g.physicalLineHeight)
	for i, coin := range g.selector.Visible() {
		if i >= fit {
			break
		}
		y := l.rowsStartY + float64(i)*g.physicalLineHeight
		if g.selector.IsSelected(coin) {
			vector.DrawFilledRect(screen, float32(l.list.MinX), float32(y), float32(l.list.Dx()), float32(g.physicalLineHeight), highlightColor, false)
		}
		esset.DrawText(screen, ui.Label(coin), 0, l.list.MinX+5*g.deviceScale, y, g.fontFace, textColor)
	}

	count := fmt.Sprintf("%d coins", g.selector.Len())
	esset.DrawText(screen, count, 0, l.list.MinX+5*g.deviceScale, l.rowsMaxY, g.fontFace, mutedColor)
}

func (g *Game) drawMetrics(screen *ebiten.Image, l screenLayout) {
	columnWidth := 280.0 * g.deviceScale
	y := l.searchY + g.physicalLineHeight*1.5

	for i, m := range ui.Metrics(g.view.Snapshot) {
		x := l.contentX + float64(i)*columnWidth
		esset.DrawText(screen, m.Label, 0, x, y, g.fontFace, mutedColor)
		esset.DrawText(screen, m.Value, 0, x, y+g.physicalLineHeight, g.fontFace, textColor)
		if m.Delta != "" {
			deltaColor := mutedColor
			switch m.Trend {
			case ui.Up:
				deltaColor = upColor
			case ui.Down:
				deltaColor = downColor
			}
			esset.DrawText(screen, m.Delta, 0, x, y+g.physicalLineHeight*2, g.fontFace, deltaColor)
		}
	}

	if age, ok := g.tracker.SnapshotAge(g.selected.ID); ok {
		updated := fmt.Sprintf("updated %ds ago", int(age.Seconds()))
		esset.DrawText(screen, updated, 0, l.contentX+2*columnWidth, y, g.fontFace, mutedColor)
	}
}

func (g *Game) drawChart(screen *ebiten.Image, rect ui.Rect, view *tracker.View) {
	vector.DrawFilledRect(screen, float32(rect.MinX), float32(rect.MinY), float32(rect.Dx()), float32(rect.Dy()), panelColor, false)

	title := ui.ChartTitle(view.Coin.Name, view.History.Days)
	titleWidth, titleHeight := text.Measure(title, g.fontFace, -1)
	titleX := rect.MinX + (rect.Dx()-titleWidth)/2.0
	titleY := rect.MinY - (titleHeight + (5.0 * g.deviceScale))
	esset.DrawText(screen, title, 0, titleX, titleY, g.fontFace, mutedColor)

	maxPointsToDisplay := int(rect.Dx())
	if maxPointsToDisplay < 100 {
		maxPointsToDisplay = 100
	}
	if maxPointsToDisplay > 1000 {
		maxPointsToDisplay = 1000
	}
	displayHistory := ui.Downsample(view.History.Points, maxPointsToDisplay)

	if len(displayHistory) == 0 {
		g.drawChartMessage(screen, rect, "No history data yet.", mutedColor)
		return
	}

	points := ui.Project(displayHistory, rect)
	if len(points) > 1 {
		path := &vector.Path{}
		path.MoveTo(float32(points[0].X), float32(points[0].Y))
		for _, p := range points[1:] {
			path.LineTo(float32(p.X), float32(p.Y))
		}

		vs, is := path.AppendVerticesAndIndicesForStroke(nil, nil, &vector.StrokeOptions{
			Width: 2.0 * float32(g.deviceScale),
		})
		for i := range vs {
			vs[i].ColorR = 0
			vs[i].ColorG = 200.0 / 255.0
			vs[i].ColorB = 1
			vs[i].ColorA = 1
		}
		screen.DrawTriangles(vs, is, g.solidColorImage, &ebiten.DrawTrianglesOptions{})
	}

	last := points[len(points)-1]
	vector.DrawFilledCircle(screen, float32(last.X), float32(last.Y), 3.0*float32(g.deviceScale), markerColor, false)

	minPrice, maxPrice := ui.PriceRange(displayHistory)
	esset.DrawText(screen, ui.FormatUSD(maxPrice), 0, rect.MinX+5*g.deviceScale, rect.MinY+5*g.deviceScale, g.fontFace, mutedColor)
	esset.DrawText(screen, ui.FormatUSD(minPrice), 0, rect.MinX+5*g.deviceScale, rect.MaxY-g.physicalLineHeight, g.fontFace, mutedColor)

	start, end := ui.AxisLabels(displayHistory)
	endWidth, _ := text.Measure(end, g.fontFace, -1)
	esset.DrawText(screen, start, 0, rect.MinX, rect.MaxY+5*g.deviceScale, g.fontFace, mutedColor)
	esset.DrawText(screen, end, 0, rect.MaxX-endWidth, rect.MaxY+5*g.deviceScale, g.fontFace, mutedColor)
}

func (g *Game) drawChartMessage(screen *ebiten.Image, rect ui.Rect, message string, clr color.RGBA) {
	vector.DrawFilledRect(screen, float32(rect.MinX), float32(rect.MinY), float32(rect.Dx()), float32(rect.Dy()), panelColor, false)

	textWidth, textHeight := text.Measure(message, g.fontFace, -1)
	msgX := rect.MinX + (rect.Dx()-textWidth)/2.0
	msgY := rect.MinY + (rect.Dy()-textHeight)/2.0
	esset.DrawText(screen, message, 0, msgX, msgY, g.fontFace, clr)
}
