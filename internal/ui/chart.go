package ui

import (
	"fmt"

	"cryptotrack/internal"
)

const axisDateFormat = "Jan 02"

type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

func (r Rect) Dx() float64 { return r.MaxX - r.MinX }
func (r Rect) Dy() float64 { return r.MaxY - r.MinY }

type Point struct {
	X, Y float64
}

func ChartTitle(name string, days int) string {
	return fmt.Sprintf("%s - Last %d Days Price", name, days)
}

func PriceRange(points []internal.PricePoint) (min, max float64) {
	if len(points) == 0 {
		return 0, 0
	}
	min, max = points[0].PriceUSD, points[0].PriceUSD
	for _, pp := range points[1:] {
		if pp.PriceUSD < min {
			min = pp.PriceUSD
		}
		if pp.PriceUSD > max {
			max = pp.PriceUSD
		}
	}
	return min, max
}

// AxisLabels returns the first and last dates of the series.
func AxisLabels(points []internal.PricePoint) (start, end string) {
	if len(points) == 0 {
		return "", ""
	}
	return points[0].Timestamp.Format(axisDateFormat), points[len(points)-1].Timestamp.Format(axisDateFormat)
}

// Downsample keeps at most max points, evenly spaced, always including the
// first and last.
func Downsample(points []internal.PricePoint, max int) []internal.PricePoint {
	if max < 2 || len(points) <= max {
		return points
	}
	out := make([]internal.PricePoint, 0, max)
	step := float64(len(points)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		out = append(out, points[int(float64(i)*step+0.5)])
	}
	return out
}

// Project maps points into r with x proportional to time and y to price.
// Higher prices map to smaller y, as on screen.
func Project(points []internal.PricePoint, r Rect) []Point {
	if len(points) == 0 {
		return nil
	}

	minPrice, maxPrice := PriceRange(points)
	priceRange := maxPrice - minPrice
	start := points[0].Timestamp
	span := points[len(points)-1].Timestamp.Sub(start)

	out := make([]Point, len(points))
	for i, pp := range points {
		x := r.MinX + r.Dx()/2
		if span > 0 {
			x = r.MinX + float64(pp.Timestamp.Sub(start))/float64(span)*r.Dx()
		}
		y := r.MinY + r.Dy()/2
		if priceRange > 0 {
			y = r.MaxY - (pp.PriceUSD-minPrice)/priceRange*r.Dy()
		}
		out[i] = Point{X: x, Y: y}
	}
	return out
}
