// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package enrich

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// barData converts values to echarts bar points. NaN and ±Inf have
// no JSON encoding; echarts draws "-" as a gap.
func barData(values []float64) []opts.BarData {
	data := make([]opts.BarData, len(values))
	for i, v := range values {
		if finite(v) {
			data[i] = opts.BarData{Value: v}
		} else {
			data[i] = opts.BarData{Value: "-"}
		}
	}
	return data
}

func (s *Schema) interactiveBar(title, yName string, annotations []string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     fmt.Sprintf("%dpx", 300+40*len(annotations)),
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30"}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: 45, Interval: "0"},
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
	)
	labels := make([]string, len(annotations))
	for i, a := range annotations {
		labels[i] = s.Label(a)
	}
	bar.SetXAxis(labels)
	return bar
}

// RenderAnnotationHTML writes an interactive page with one bar series
// of log2 fold enrichment per group.
func (s *Schema) RenderAnnotationHTML(w io.Writer, res *AnnotationResult) error {
	bar := s.interactiveBar("Annotation enrichment", "log2(Fold Enrichment)", res.Annotations)
	for g, label := range res.Log2FoldEnrichment.Columns {
		bar.AddSeries(legendLabel(label, res.GroupSizes[g]), barData(res.Log2FoldEnrichment.Values[g]),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: groupColors[g%len(groupColors)]}))
	}
	return bar.Render(w)
}

// RenderPIPHTML writes an interactive page with one bar series of fold
// enrichment per PIP bin.
func (s *Schema) RenderPIPHTML(w io.Writer, res *PIPResult) error {
	bar := s.interactiveBar(strings.ReplaceAll(res.Label, "_", " "), "Fold Enrichment", res.Annotations)
	for b, label := range res.FoldEnrichment.Columns {
		bar.AddSeries(label, barData(res.FoldEnrichment.Values[b]),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: binColors[b%len(binColors)]}))
	}
	return bar.Render(w)
}
