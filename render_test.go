// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package enrich

import (
	"bytes"
	"image/png"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/check.v1"
)

type renderSuite struct{}

var _ = check.Suite(&renderSuite{})

func sampleAnnotationResult(c *check.C) *AnnotationResult {
	means := NewTable([]string{"enhancer_d", "promoter_d", "missense_variant_d"}, []string{"day0", "day7", "background_snps"})
	means.Values[0] = []float64{0.5, 0.2, 0}
	means.Values[1] = []float64{0.25, 0.1, 0.1}
	means.Values[2] = []float64{0.25, 0.1, 0}
	fe, err := means.Ratio("background_snps", true)
	c.Assert(err, check.IsNil)
	return &AnnotationResult{
		Annotations:        means.Rows,
		Means:              means,
		Log2FoldEnrichment: fe.Log2(),
		GroupSizes:         []int{12, 30},
	}
}

func samplePIPResult() *PIPResult {
	schema := DefaultSchema()
	means := NewTable([]string{"enhancer_d", "ATAC__in_a_peak"}, schema.PIPBinLabels)
	means.Values[0] = []float64{0.2, 0.1}
	means.Values[1] = []float64{0.3, 0.1}
	means.Values[4] = []float64{0.5, 0.4}
	fe, _ := means.Ratio(schema.PIPBinLabels[0], false)
	return &PIPResult{
		Label:          "day_0",
		Annotations:    means.Rows,
		BinRows:        []int{10, 4, 0, 0, 2},
		BinGroups:      []int{9, 4, 0, 0, 2},
		Means:          means,
		FoldEnrichment: fe,
	}
}

func (s *renderSuite) TestAnnotationChart(c *check.C) {
	res := sampleAnnotationResult(c)
	// NaN and +Inf values are left out of the chart
	c.Check(math.IsNaN(res.Log2FoldEnrichment.Get("missense_variant_d", "day0")), check.Equals, true)
	c.Check(math.IsInf(res.Log2FoldEnrichment.Get("missense_variant_d", "day7"), 1), check.Equals, true)
	var buf bytes.Buffer
	err := DefaultSchema().RenderAnnotationChart(&buf, res)
	c.Assert(err, check.IsNil)
	cfg, err := png.DecodeConfig(&buf)
	c.Assert(err, check.IsNil)
	c.Check(cfg.Width, check.Equals, 2*panelWidth)
	c.Check(cfg.Height, check.Equals, chartMargin+rowHeight*3)
}

func (s *renderSuite) TestAnnotationChartSingleGroup(c *check.C) {
	means := NewTable([]string{"enhancer_d"}, []string{"day0", "background_snps"})
	means.Values[0] = []float64{1}
	means.Values[1] = []float64{1}
	fe, err := means.Ratio("background_snps", true)
	c.Assert(err, check.IsNil)
	var buf bytes.Buffer
	err = DefaultSchema().RenderAnnotationChart(&buf, &AnnotationResult{
		Annotations:        means.Rows,
		Means:              means,
		Log2FoldEnrichment: fe.Log2(),
		GroupSizes:         []int{1},
	})
	c.Assert(err, check.IsNil)
	_, err = png.Decode(&buf)
	c.Check(err, check.IsNil)
}

func (s *renderSuite) TestPIPChart(c *check.C) {
	var buf bytes.Buffer
	err := DefaultSchema().RenderPIPChart(&buf, samplePIPResult())
	c.Assert(err, check.IsNil)
	_, err = png.Decode(&buf)
	c.Check(err, check.IsNil)
}

func (s *renderSuite) TestGroupShifts(c *check.C) {
	c.Check(groupShifts(1), check.DeepEquals, []float64{0})
	c.Check(groupShifts(3), check.DeepEquals, []float64{0.4, 0, -0.4})
}

func (s *renderSuite) TestHTML(c *check.C) {
	schema := DefaultSchema()
	var buf bytes.Buffer
	c.Assert(schema.RenderAnnotationHTML(&buf, sampleAnnotationResult(c)), check.IsNil)
	c.Check(buf.String(), check.Matches, `(?s).*Nonsynonymous.*`)
	c.Check(buf.String(), check.Matches, `(?s).*day7, n=30.*`)

	buf.Reset()
	c.Assert(schema.RenderPIPHTML(&buf, samplePIPResult()), check.IsNil)
	c.Check(strings.Contains(buf.String(), "day 0"), check.Equals, true)
	c.Check(strings.Contains(buf.String(), "Fold Enrichment"), check.Equals, true)
}

func (s *renderSuite) TestWorkbook(c *check.C) {
	var buf bytes.Buffer
	c.Assert(WriteAnnotationWorkbook(&buf, sampleAnnotationResult(c)), check.IsNil)
	wb, err := excelize.OpenReader(&buf)
	c.Assert(err, check.IsNil)
	defer wb.Close()
	c.Check(wb.GetSheetList(), check.DeepEquals, []string{"mean", "log2_fold_enrichment", "group_size"})
	rows, err := wb.GetRows("log2_fold_enrichment")
	c.Assert(err, check.IsNil)
	c.Check(rows[0], check.DeepEquals, []string{"annotation", "day0", "day7"})
	c.Check(rows[1], check.DeepEquals, []string{"enhancer_d", "1", "0"})
	c.Check(rows[3], check.DeepEquals, []string{"missense_variant_d", "NaN", "+Inf"})
	rows, err = wb.GetRows("group_size")
	c.Assert(err, check.IsNil)
	c.Check(rows[2], check.DeepEquals, []string{"day7", "30"})

	buf.Reset()
	c.Assert(WritePIPWorkbook(&buf, samplePIPResult()), check.IsNil)
	wb, err = excelize.OpenReader(&buf)
	c.Assert(err, check.IsNil)
	defer wb.Close()
	rows, err = wb.GetRows("bin_size")
	c.Assert(err, check.IsNil)
	c.Check(rows[1], check.DeepEquals, []string{"PIP<0.01", "10", "9"})
}
