// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

// Package frame is a small in-memory column store for the annotation
// tables read by the enrichment commands.
//
// Every column carries a float64 vector. Missing values are NaN and
// boolean cells are stored as 1 (true) or 0 (false). Columns holding
// text that cannot be read as a number also keep the raw strings, so
// they can serve as grouping keys.
package frame

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Column struct {
	Name    string
	Values  []float64
	Strings []string // nil for numeric columns
}

// IsNumeric reports whether every non-missing cell in the column
// parsed as a number or boolean.
func (col *Column) IsNumeric() bool {
	return col.Strings == nil
}

// Key returns a text form of row i suitable for grouping rows.
func (col *Column) Key(i int) string {
	if col.Strings != nil {
		return col.Strings[i]
	}
	return strconv.FormatFloat(col.Values[i], 'g', -1, 64)
}

func (col *Column) Len() int {
	return len(col.Values)
}

type Frame struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New returns an empty frame whose columns must all have the given
// number of rows.
func New(rows int) *Frame {
	return &Frame{index: map[string]int{}, rows: rows}
}

func (f *Frame) Rows() int {
	return f.rows
}

// Names returns the column names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.columns))
	for i, col := range f.columns {
		names[i] = col.Name
	}
	return names
}

func (f *Frame) Column(name string) (*Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.columns[i], true
}

// Add appends a column.
func (f *Frame) Add(col *Column) error {
	if _, dup := f.index[col.Name]; dup {
		return fmt.Errorf("duplicate column %q", col.Name)
	}
	if col.Len() != f.rows {
		return fmt.Errorf("column %q has %d rows, frame has %d", col.Name, col.Len(), f.rows)
	}
	if col.Strings != nil && len(col.Strings) != f.rows {
		return fmt.Errorf("column %q has %d strings, frame has %d rows", col.Name, len(col.Strings), f.rows)
	}
	f.index[col.Name] = len(f.columns)
	f.columns = append(f.columns, col)
	return nil
}

// Drop removes the named columns. Names not present are ignored.
func (f *Frame) Drop(names ...string) {
	drop := map[string]bool{}
	for _, name := range names {
		drop[name] = true
	}
	kept := f.columns[:0]
	for _, col := range f.columns {
		if !drop[col.Name] {
			kept = append(kept, col)
		}
	}
	for i := len(kept); i < len(f.columns); i++ {
		f.columns[i] = nil
	}
	f.columns = kept
	f.index = make(map[string]int, len(kept))
	for i, col := range kept {
		f.index[col.Name] = i
	}
}

// missing cell spellings, as written by pandas, R and friends
var missingCells = map[string]bool{
	"":     true,
	"NA":   true,
	"NaN":  true,
	"nan":  true,
	"None": true,
	"null": true,
	"NULL": true,
	"<NA>": true,
}

// parseCell returns the numeric value of a cell. ok is false if the
// cell holds text that is neither a number, a boolean, nor a missing
// marker.
func parseCell(s string) (v float64, ok bool) {
	s = strings.TrimSpace(s)
	if missingCells[s] {
		return math.NaN(), true
	}
	switch s {
	case "True", "true", "TRUE":
		return 1, true
	case "False", "false", "FALSE":
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN(), false
	}
	return v, true
}

// columnBuilder accumulates one column cell by cell. The column
// becomes a text column as soon as one cell fails to parse.
type columnBuilder struct {
	name    string
	values  []float64
	strings []string
	text    bool
}

func (b *columnBuilder) appendCell(raw string) {
	v, ok := parseCell(raw)
	if !ok {
		b.text = true
	}
	b.values = append(b.values, v)
	b.strings = append(b.strings, raw)
}

func (b *columnBuilder) appendValue(v float64) {
	b.values = append(b.values, v)
	if math.IsNaN(v) {
		b.strings = append(b.strings, "")
	} else {
		b.strings = append(b.strings, strconv.FormatFloat(v, 'g', -1, 64))
	}
}

func (b *columnBuilder) appendText(s string) {
	b.text = true
	b.values = append(b.values, math.NaN())
	b.strings = append(b.strings, s)
}

func (b *columnBuilder) column() *Column {
	col := &Column{Name: b.name, Values: b.values}
	if b.text {
		col.Strings = b.strings
		// a number in a text column is still text
		for i := range col.Values {
			col.Values[i] = math.NaN()
		}
	}
	return col
}

func build(rows int, builders []*columnBuilder) (*Frame, error) {
	f := New(rows)
	for _, b := range builders {
		err := f.Add(b.column())
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}
