// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package enrich

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/floats"
)

var (
	groupColors = []string{"#000000", "#FFD39B", "#BCEE68", "#556B2E", "#FF6A6A", "#CD5555", "#8B393A"}
	binColors   = []string{"#929591", "#FFD700", "#FFA500", "#F97306", "#FE420F"}
	bandColor   = drawing.Color{R: 128, G: 128, B: 128, A: 77}
)

const (
	panelWidth  = 900
	rowHeight   = 36
	chartMargin = 120
)

func paletteColor(palette []string, i int) drawing.Color {
	return drawing.ColorFromHex(palette[i%len(palette)])
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// finiteRange returns a padded range covering every finite value.
func finiteRange(values ...[]float64) *chart.ContinuousRange {
	low, high := math.Inf(1), math.Inf(-1)
	for _, vs := range values {
		for _, v := range vs {
			if finite(v) {
				low = math.Min(low, v)
				high = math.Max(high, v)
			}
		}
	}
	if low > high {
		low, high = 0, 1
	} else if low == high {
		low, high = low-1, high+1
	}
	pad := (high - low) * 0.05
	return &chart.ContinuousRange{Min: low - pad, Max: high + pad}
}

// groupShifts spreads n groups evenly across one category slot.
func groupShifts(n int) []float64 {
	if n < 2 {
		return make([]float64, n)
	}
	return floats.Span(make([]float64, n), 0.4, -0.4)
}

// annotationTicks labels positions 0..n-1, with unlabelled ticks one
// slot beyond either end so shifted markers stay on the canvas.
func (s *Schema) annotationTicks(annotations []string, pad float64) []chart.Tick {
	ticks := []chart.Tick{{Value: -pad}}
	for i, a := range annotations {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: s.Label(a)})
	}
	return append(ticks, chart.Tick{Value: float64(len(annotations)-1) + pad})
}

// RenderAnnotationChart draws the group-vs-background view as a PNG:
// log2 fold enrichment per annotation on the left, proportion of
// variants carrying each annotation on the right.
func (s *Schema) RenderAnnotationChart(w io.Writer, res *AnnotationResult) error {
	n := len(res.Annotations)
	height := chartMargin + rowHeight*n
	rowPx := float64(rowHeight)
	ticks := s.annotationTicks(res.Annotations, 1)
	groups := res.Log2FoldEnrichment.Columns
	shifts := groupShifts(len(groups))

	skipped := 0
	xRange := finiteRange(append([][]float64{{0}}, res.Log2FoldEnrichment.Values...)...)
	var left []chart.Series
	for i := 0; i < n; i += 2 {
		left = append(left, chart.ContinuousSeries{
			YAxis:   chart.YAxisSecondary,
			XValues: []float64{xRange.Min, xRange.Max},
			YValues: []float64{float64(i), float64(i)},
			Style:   chart.Style{StrokeColor: bandColor, StrokeWidth: rowPx},
		})
	}
	left = append(left, chart.ContinuousSeries{
		YAxis:   chart.YAxisSecondary,
		XValues: []float64{0, 0},
		YValues: []float64{-1, float64(n)},
		Style:   chart.Style{StrokeColor: drawing.ColorBlack, StrokeWidth: 1, StrokeDashArray: []float64{5, 5}},
	})
	for g, label := range groups {
		var xs, ys []float64
		for i, v := range res.Log2FoldEnrichment.Values[g] {
			if !finite(v) {
				skipped++
				continue
			}
			xs = append(xs, v)
			ys = append(ys, float64(i)+shifts[g])
		}
		if len(xs) == 0 {
			continue
		}
		color := paletteColor(groupColors, g)
		left = append(left, chart.ContinuousSeries{
			Name:    label,
			YAxis:   chart.YAxisSecondary,
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeWidth: chart.Disabled, DotWidth: 5, DotColor: color, StrokeColor: color},
		})
	}
	if skipped > 0 {
		log.Warnf("%d non-finite log2 fold enrichment values are not drawn (see table output)", skipped)
	}
	feChart := chart.Chart{
		Width:      panelWidth,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      chart.XAxis{Name: "log2(Fold Enrichment)", Range: xRange},
		// the secondary (left) axis takes its range from the
		// primary axis ticks, so both get the same ticks
		YAxis:          chart.YAxis{Style: chart.Hidden(), Ticks: ticks},
		YAxisSecondary: chart.YAxis{Ticks: ticks},
		Series:         left,
	}

	barPx := rowPx * 0.8 / float64(len(groups))
	var right []chart.Series
	right = append(right, chart.ContinuousSeries{
		XValues: []float64{0, 0},
		YValues: []float64{-1, float64(n)},
		Style:   chart.Style{StrokeColor: drawing.ColorBlack, StrokeWidth: 1},
	})
	for g, label := range groups {
		named := false
		color := paletteColor(groupColors, g)
		for i, v := range res.Means.Values[g] {
			if !finite(v) {
				continue
			}
			bar := chart.ContinuousSeries{
				XValues: []float64{0, v},
				YValues: []float64{float64(i) + shifts[g], float64(i) + shifts[g]},
				Style:   chart.Style{StrokeColor: color, StrokeWidth: barPx},
			}
			if !named {
				bar.Name = legendLabel(label, res.GroupSizes[g])
				named = true
			}
			right = append(right, bar)
		}
	}
	propChart := chart.Chart{
		Width:      panelWidth,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      chart.XAxis{Name: "Prop. of Variants", Range: finiteRange([]float64{0}, flatten(res.Means.Values[:len(groups)]))},
		YAxis:      chart.YAxis{Style: chart.Hidden(), Ticks: ticks},
		Series:     right,
	}
	propChart.Elements = []chart.Renderable{chart.Legend(&propChart)}

	return sideBySide(w, feChart, propChart)
}

func legendLabel(group string, n int) string {
	return fmt.Sprintf("%s, n=%d", group, n)
}

func flatten(columns [][]float64) []float64 {
	var out []float64
	for _, col := range columns {
		out = append(out, col...)
	}
	return out
}

// RenderPIPChart draws grouped bars of fold enrichment per annotation,
// one bar per PIP bin.
func (s *Schema) RenderPIPChart(w io.Writer, res *PIPResult) error {
	n := len(res.Annotations)
	bins := res.FoldEnrichment.Columns
	width := 200 + 20*len(bins)*n
	if width < panelWidth {
		width = panelWidth
	}
	slotPx := float64(width-160) / float64(n+1)
	barPx := slotPx * 0.8 / float64(len(bins))
	barWidth := 0.8 / float64(len(bins))

	yRange := finiteRange(append([][]float64{{0}}, res.FoldEnrichment.Values...)...)
	yRange.Min = math.Min(0, yRange.Min)

	series := []chart.Series{chart.ContinuousSeries{
		XValues: []float64{-0.6, float64(n) - 0.4},
		YValues: []float64{0, 0},
		Style:   chart.Style{StrokeColor: drawing.ColorBlack, StrokeWidth: 1},
	}}
	skipped := 0
	for b, label := range bins {
		named := false
		color := paletteColor(binColors, b)
		for i, v := range res.FoldEnrichment.Values[b] {
			if !finite(v) {
				skipped++
				continue
			}
			x := float64(i) - 0.4 + (float64(b)+0.5)*barWidth
			bar := chart.ContinuousSeries{
				XValues: []float64{x, x},
				YValues: []float64{0, v},
				Style:   chart.Style{StrokeColor: color, StrokeWidth: barPx},
			}
			if !named {
				bar.Name = label
				named = true
			}
			series = append(series, bar)
		}
	}
	if skipped > 0 {
		log.Warnf("%s: %d non-finite fold enrichment values are not drawn (see table output)", res.Label, skipped)
	}
	ch := chart.Chart{
		Title:      strings.ReplaceAll(res.Label, "_", " "),
		Width:      width,
		Height:     600,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Ticks:     s.annotationTicks(res.Annotations, 0.6),
			TickStyle: chart.Style{TextRotationDegrees: 45},
		},
		YAxis:  chart.YAxis{Name: "Fold Enrichment", Range: yRange},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}

// sideBySide renders both charts and writes them as one PNG, left to
// right.
func sideBySide(w io.Writer, charts ...chart.Chart) error {
	var panels []image.Image
	width, height := 0, 0
	for _, ch := range charts {
		var buf bytes.Buffer
		err := ch.Render(chart.PNG, &buf)
		if err != nil {
			return err
		}
		img, err := png.Decode(&buf)
		if err != nil {
			return err
		}
		panels = append(panels, img)
		width += img.Bounds().Dx()
		if dy := img.Bounds().Dy(); dy > height {
			height = dy
		}
	}
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	x := 0
	for _, img := range panels {
		b := img.Bounds()
		draw.Draw(out, image.Rect(x, 0, x+b.Dx(), b.Dy()), img, b.Min, draw.Over)
		x += b.Dx()
	}
	return png.Encode(w, out)
}
