// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package enrich

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/kshedden/gonpy"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// Table is a small annotation × label matrix of proportions or fold
// enrichments. Values[c][r] is the value for Rows[r] under Columns[c].
type Table struct {
	Rows    []string
	Columns []string
	Values  [][]float64
}

// NewTable returns a table with every value set to NaN.
func NewTable(rows, columns []string) *Table {
	t := &Table{
		Rows:    append([]string(nil), rows...),
		Columns: append([]string(nil), columns...),
		Values:  make([][]float64, len(columns)),
	}
	for c := range t.Values {
		t.Values[c] = make([]float64, len(rows))
		for r := range t.Values[c] {
			t.Values[c][r] = math.NaN()
		}
	}
	return t
}

func (t *Table) columnIndex(name string) int {
	for c, col := range t.Columns {
		if col == name {
			return c
		}
	}
	return -1
}

// Column returns the values of the named column.
func (t *Table) Column(name string) ([]float64, bool) {
	c := t.columnIndex(name)
	if c < 0 {
		return nil, false
	}
	return t.Values[c], true
}

// Get returns the value at (row, column), looked up by name.
func (t *Table) Get(row, column string) float64 {
	c := t.columnIndex(column)
	if c < 0 {
		return math.NaN()
	}
	for r, name := range t.Rows {
		if name == row {
			return t.Values[c][r]
		}
	}
	return math.NaN()
}

// Ratio divides every column by the reference column. If dropRef is
// true the reference column itself is left out of the result.
//
// Division by zero is not special-cased: x/0 is ±Inf and 0/0 is NaN,
// so degenerate proportions stay visible downstream.
func (t *Table) Ratio(ref string, dropRef bool) (*Table, error) {
	refc := t.columnIndex(ref)
	if refc < 0 {
		return nil, fmt.Errorf("no reference column %q in %q", ref, t.Columns)
	}
	var columns []string
	for c, col := range t.Columns {
		if !dropRef || c != refc {
			columns = append(columns, col)
		}
	}
	out := NewTable(t.Rows, columns)
	for oc, col := range columns {
		floats.DivTo(out.Values[oc], t.Values[t.columnIndex(col)], t.Values[refc])
	}
	return out, nil
}

// Log2 returns a copy of t with every value log2-transformed.
func (t *Table) Log2() *Table {
	out := NewTable(t.Rows, t.Columns)
	for c, col := range t.Values {
		for r, v := range col {
			out.Values[c][r] = math.Log2(v)
		}
	}
	return out
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteTSV writes a header row ("annotation", then the column labels)
// and one row per annotation. NaN and infinite values are written as
// NaN, +Inf and -Inf.
func (t *Table) WriteTSV(w io.Writer) error {
	bufw := bufio.NewWriter(w)
	_, err := fmt.Fprintf(bufw, "annotation\t%s\n", strings.Join(t.Columns, "\t"))
	if err != nil {
		return err
	}
	for r, name := range t.Rows {
		bufw.WriteString(name)
		for c := range t.Columns {
			bufw.WriteByte('\t')
			bufw.WriteString(formatValue(t.Values[c][r]))
		}
		_, err = bufw.WriteString("\n")
		if err != nil {
			return err
		}
	}
	return bufw.Flush()
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// WriteNumpy writes the values as a float64 numpy array with shape
// (len(Rows), len(Columns)), row-major.
func (t *Table) WriteNumpy(w io.Writer) error {
	rows, cols := len(t.Rows), len(t.Columns)
	out := make([]float64, 0, rows*cols)
	for r := range t.Rows {
		for c := range t.Columns {
			out = append(out, t.Values[c][r])
		}
	}
	npw, err := gonpy.NewWriter(nopCloser{w})
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"rows": rows,
		"cols": cols,
	}).Debug("writing numpy matrix")
	npw.Shape = []int{rows, cols}
	return npw.WriteFloat64(out)
}
