// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package enrich

import (
	"fmt"
	"math"
	"strings"

	"github.com/eqtl-annotations/enrich/frame"
)

// DeriveProximity prepares a freshly loaded table for aggregation:
// columns matching DropColumnPatterns are removed, and every distance
// column (name ending in DistanceSuffix) is replaced by two indicator
// columns, "<prefix><InPeakSuffix>" (distance == 0) and
// "<prefix><NearPeakSuffix>" (distance < NearPeakDistance).
//
// A missing distance yields missing (NaN) indicators.
//
// The same derivation must be applied to the background table and
// every fine-mapped table, otherwise their annotation columns will not
// line up.
func (s *Schema) DeriveProximity(f *frame.Frame) error {
	var drop []string
	for _, name := range f.Names() {
		for _, pattern := range s.DropColumnPatterns {
			if pattern != "" && strings.Contains(name, pattern) {
				drop = append(drop, name)
				break
			}
		}
	}
	f.Drop(drop...)

	for _, name := range f.Names() {
		if !strings.HasSuffix(name, s.DistanceSuffix) {
			continue
		}
		dist, _ := f.Column(name)
		if !dist.IsNumeric() {
			return fmt.Errorf("distance column %q is not numeric", name)
		}
		inPeak := make([]float64, dist.Len())
		nearPeak := make([]float64, dist.Len())
		for i, d := range dist.Values {
			if math.IsNaN(d) {
				inPeak[i] = math.NaN()
				nearPeak[i] = math.NaN()
				continue
			}
			inPeak[i] = indicator(d == 0)
			nearPeak[i] = indicator(d < s.NearPeakDistance)
		}
		prefix := strings.TrimSuffix(name, s.DistanceSuffix)
		f.Drop(name)
		for _, col := range []*frame.Column{
			{Name: prefix + s.InPeakSuffix, Values: inPeak},
			{Name: prefix + s.NearPeakSuffix, Values: nearPeak},
		} {
			err := f.Add(col)
			if err != nil {
				return fmt.Errorf("deriving from %q: %w", name, err)
			}
		}
	}
	return nil
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
