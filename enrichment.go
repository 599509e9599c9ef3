// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package enrich

import (
	"errors"
	"fmt"
	"strings"

	"github.com/eqtl-annotations/enrich/frame"
	"github.com/samber/lo"
)

// Group is one labelled fine-mapped table.
type Group struct {
	Label string
	Frame *frame.Frame
}

type AnnotationResult struct {
	Annotations []string
	// group columns in input order, then the background column
	Means              *Table
	Log2FoldEnrichment *Table
	GroupSizes         []int
}

// AnnotationSet returns the annotation columns shared by all groups,
// in the column order of the first group. It is an error for the
// groups to disagree, or for an annotation column to be non-numeric.
func (s *Schema) AnnotationSet(groups []Group) ([]string, error) {
	if len(groups) == 0 {
		return nil, errors.New("no groups")
	}
	annotations := s.Annotations(groups[0].Frame)
	if len(annotations) == 0 {
		return nil, fmt.Errorf("group %q: no annotation columns", groups[0].Label)
	}
	for _, g := range groups[1:] {
		other := s.Annotations(g.Frame)
		missing, extra := lo.Difference(annotations, other)
		if len(missing) > 0 || len(extra) > 0 {
			return nil, fmt.Errorf("group %q annotation columns differ from group %q: missing %q, unexpected %q", g.Label, groups[0].Label, missing, extra)
		}
	}
	for _, g := range groups {
		for _, a := range annotations {
			col, _ := g.Frame.Column(a)
			if !col.IsNumeric() {
				return nil, fmt.Errorf("group %q: annotation column %q is not numeric (add it to excluded_columns?)", g.Label, a)
			}
		}
	}
	return annotations, nil
}

func (s *Schema) checkGroupLabels(groups []Group) error {
	seen := map[string]bool{}
	for _, g := range groups {
		switch {
		case g.Label == "":
			return errors.New("empty group label")
		case g.Label == s.BackgroundLabel:
			return fmt.Errorf("group label %q is reserved for the background column", g.Label)
		case seen[g.Label]:
			return fmt.Errorf("duplicate group label %q", g.Label)
		}
		seen[g.Label] = true
	}
	return nil
}

// AnnotationEnrichment compares the proportion of each annotation in
// every group with its proportion in the background table. All frames
// must already have been through DeriveProximity.
//
// The background must provide every annotation column found in the
// groups.
func (s *Schema) AnnotationEnrichment(background *frame.Frame, groups []Group) (*AnnotationResult, error) {
	err := s.checkGroupLabels(groups)
	if err != nil {
		return nil, err
	}
	annotations, err := s.AnnotationSet(groups)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, a := range annotations {
		if _, ok := background.Column(a); !ok {
			missing = append(missing, a)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("background table is missing annotation columns: %s", strings.Join(missing, ", "))
	}

	columns := make([]string, 0, len(groups)+1)
	sizes := make([]int, len(groups))
	for i, g := range groups {
		columns = append(columns, g.Label)
		sizes[i] = g.Frame.Rows()
	}
	columns = append(columns, s.BackgroundLabel)
	means := NewTable(annotations, columns)
	for c, f := range append(lo.Map(groups, func(g Group, _ int) *frame.Frame { return g.Frame }), background) {
		for r, a := range annotations {
			means.Values[c][r], err = Proportion(f, a, nil, nil, nil)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", columns[c], err)
			}
		}
	}
	fe, err := means.Ratio(s.BackgroundLabel, true)
	if err != nil {
		return nil, err
	}
	return &AnnotationResult{
		Annotations:        annotations,
		Means:              means,
		Log2FoldEnrichment: fe.Log2(),
		GroupSizes:         sizes,
	}, nil
}
