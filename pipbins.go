// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package enrich

import (
	"fmt"
	"math"
	"sort"
)

// BinIndex returns the PIP bin containing pip, or -1 if pip is missing
// or outside the outer edges. Bins are closed on the right, and the
// lowest edge belongs to the first bin.
func (s *Schema) BinIndex(pip float64) int {
	edges := s.PIPBinEdges
	if math.IsNaN(pip) || pip < edges[0] || pip > edges[len(edges)-1] {
		return -1
	}
	if pip == edges[0] {
		return 0
	}
	return sort.SearchFloat64s(edges, pip) - 1
}

// AssignBins returns the row numbers of g falling in each PIP bin.
// Rows with a missing or out-of-range pip are in no bin.
func (s *Schema) AssignBins(g Group) ([][]int, error) {
	pip, ok := g.Frame.Column(s.PIPColumn)
	if !ok {
		return nil, fmt.Errorf("group %q: no %q column", g.Label, s.PIPColumn)
	}
	if !pip.IsNumeric() {
		return nil, fmt.Errorf("group %q: %q column is not numeric", g.Label, s.PIPColumn)
	}
	bins := make([][]int, len(s.PIPBinLabels))
	for b := range bins {
		// non-nil: GroupRows reads a nil slice as "all rows"
		bins[b] = []int{}
	}
	for row, v := range pip.Values {
		if b := s.BinIndex(v); b >= 0 {
			bins[b] = append(bins[b], row)
		}
	}
	return bins, nil
}

type PIPResult struct {
	Label       string
	Annotations []string
	// rows per bin, before collapsing by GroupKeys
	BinRows []int
	// distinct GroupKeys combinations per bin
	BinGroups      []int
	Means          *Table
	FoldEnrichment *Table
}

// PIPEnrichment computes, for each PIP bin and annotation, the
// proportion of distinct GroupKeys combinations (phenotype/variant
// pairs) in the bin that carry the annotation on any of their rows,
// and the fold enrichment of each bin over the lowest bin.
//
// An empty bin has NaN proportions, and so NaN fold enrichment.
func (s *Schema) PIPEnrichment(g Group) (*PIPResult, error) {
	annotations := s.Annotations(g.Frame)
	if len(annotations) == 0 {
		return nil, fmt.Errorf("group %q: no annotation columns", g.Label)
	}
	for _, a := range annotations {
		col, _ := g.Frame.Column(a)
		if !col.IsNumeric() {
			return nil, fmt.Errorf("group %q: annotation column %q is not numeric (add it to excluded_columns?)", g.Label, a)
		}
	}
	bins, err := s.AssignBins(g)
	if err != nil {
		return nil, err
	}
	res := &PIPResult{
		Label:       g.Label,
		Annotations: annotations,
		BinRows:     make([]int, len(bins)),
		BinGroups:   make([]int, len(bins)),
		Means:       NewTable(annotations, s.PIPBinLabels),
	}
	for b, rows := range bins {
		groups, err := GroupRows(g.Frame, rows, s.GroupKeys)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", g.Label, err)
		}
		res.BinRows[b] = len(rows)
		res.BinGroups[b] = len(groups)
		for r, a := range annotations {
			col, _ := g.Frame.Column(a)
			res.Means.Values[b][r] = GroupedProportion(col, groups, Any)
		}
	}
	res.FoldEnrichment, err = res.Means.Ratio(s.PIPBinLabels[0], false)
	if err != nil {
		return nil, err
	}
	return res, nil
}
