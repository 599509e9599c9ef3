// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package enrich

import (
	"fmt"
	"math"
	"strings"

	"github.com/eqtl-annotations/enrich/frame"
	"gonum.org/v1/gonum/stat"
)

// A Reducer collapses the values of one group of rows to a single
// value, or NaN if the group has nothing to contribute.
type Reducer func(values []float64) float64

// Any returns 1 if any non-missing value is non-zero, 0 if all
// non-missing values are zero, and NaN if every value is missing.
func Any(values []float64) float64 {
	seen := false
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if v != 0 {
			return 1
		}
		seen = true
	}
	if !seen {
		return math.NaN()
	}
	return 0
}

// Proportion returns the mean of an indicator column, ignoring missing
// values. Only the given rows are considered (nil means all rows).
//
// If groupBy names key columns, rows are first collapsed to one value
// per distinct key using reduce (Any if reduce is nil), and the mean is
// taken over groups instead of rows.
//
// The result is NaN if nothing is left to average.
func Proportion(f *frame.Frame, column string, rows []int, groupBy []string, reduce Reducer) (float64, error) {
	col, ok := f.Column(column)
	if !ok {
		return math.NaN(), fmt.Errorf("no column named %q", column)
	}
	if !col.IsNumeric() {
		return math.NaN(), fmt.Errorf("column %q is not numeric", column)
	}
	if len(groupBy) == 0 {
		if rows == nil {
			return nanMean(col.Values), nil
		}
		values := make([]float64, len(rows))
		for i, row := range rows {
			values[i] = col.Values[row]
		}
		return nanMean(values), nil
	}
	groups, err := GroupRows(f, rows, groupBy)
	if err != nil {
		return math.NaN(), err
	}
	return GroupedProportion(col, groups, reduce), nil
}

// GroupRows partitions rows (nil means all rows) by the values of the
// key columns. Each returned slice holds the row numbers of one group.
func GroupRows(f *frame.Frame, rows []int, keys []string) ([][]int, error) {
	keycols := make([]*frame.Column, len(keys))
	for i, key := range keys {
		col, ok := f.Column(key)
		if !ok {
			return nil, fmt.Errorf("no key column named %q", key)
		}
		keycols[i] = col
	}
	if rows == nil {
		rows = make([]int, f.Rows())
		for i := range rows {
			rows[i] = i
		}
	}
	var groups [][]int
	groupIndex := map[string]int{}
	var key strings.Builder
	for _, row := range rows {
		key.Reset()
		for i, col := range keycols {
			if i > 0 {
				key.WriteByte(0)
			}
			key.WriteString(col.Key(row))
		}
		if g, ok := groupIndex[key.String()]; ok {
			groups[g] = append(groups[g], row)
		} else {
			groupIndex[key.String()] = len(groups)
			groups = append(groups, []int{row})
		}
	}
	return groups, nil
}

// GroupedProportion reduces col within each group and returns the mean
// of the per-group values, ignoring groups that reduce to NaN.
func GroupedProportion(col *frame.Column, groups [][]int, reduce Reducer) float64 {
	if reduce == nil {
		reduce = Any
	}
	reduced := make([]float64, len(groups))
	var buf []float64
	for g, rows := range groups {
		buf = buf[:0]
		for _, row := range rows {
			buf = append(buf, col.Values[row])
		}
		reduced[g] = reduce(buf)
	}
	return nanMean(reduced)
}

// nanMean is the mean of the non-NaN values in x, or NaN if there are
// none.
func nanMean(x []float64) float64 {
	kept := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return math.NaN()
	}
	return stat.Mean(kept, nil)
}
