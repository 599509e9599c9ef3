// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package enrich

import (
	"io"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
)

type sheet struct {
	name   string
	header []string
	rows   [][]interface{}
}

// tableSheet lays t out the same way as WriteTSV. Non-finite values
// are written as text, since xlsx numeric cells cannot hold them.
func tableSheet(name string, t *Table) sheet {
	sh := sheet{name: name, header: append([]string{"annotation"}, t.Columns...)}
	for r, rowname := range t.Rows {
		row := []interface{}{rowname}
		for c := range t.Columns {
			v := t.Values[c][r]
			if finite(v) {
				row = append(row, v)
			} else {
				row = append(row, formatValue(v))
			}
		}
		sh.rows = append(sh.rows, row)
	}
	return sh
}

func writeWorkbook(w io.Writer, sheets []sheet) error {
	wb := excelize.NewFile()
	defer wb.Close()
	for i, sh := range sheets {
		var err error
		if i == 0 {
			err = wb.SetSheetName("Sheet1", sh.name)
		} else {
			_, err = wb.NewSheet(sh.name)
		}
		if err != nil {
			return err
		}
		header := lo.Map(sh.header, func(s string, _ int) interface{} { return s })
		for r, row := range append([][]interface{}{header}, sh.rows...) {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			err = wb.SetSheetRow(sh.name, cell, &row)
			if err != nil {
				return err
			}
		}
		err = wb.SetColWidth(sh.name, "A", "A", 40)
		if err != nil {
			return err
		}
	}
	_, err := wb.WriteTo(w)
	return err
}

// WriteAnnotationWorkbook writes the proportions, log2 fold
// enrichments and group sizes as separate sheets.
func WriteAnnotationWorkbook(w io.Writer, res *AnnotationResult) error {
	sizes := sheet{name: "group_size", header: []string{"group", "variants"}}
	for g, label := range res.Log2FoldEnrichment.Columns {
		sizes.rows = append(sizes.rows, []interface{}{label, res.GroupSizes[g]})
	}
	return writeWorkbook(w, []sheet{
		tableSheet("mean", res.Means),
		tableSheet("log2_fold_enrichment", res.Log2FoldEnrichment),
		sizes,
	})
}

// WritePIPWorkbook writes the per-bin proportions, fold enrichments
// and bin occupancy as separate sheets.
func WritePIPWorkbook(w io.Writer, res *PIPResult) error {
	sizes := sheet{name: "bin_size", header: []string{"bin", "rows", "groups"}}
	for b, label := range res.Means.Columns {
		sizes.rows = append(sizes.rows, []interface{}{label, res.BinRows[b], res.BinGroups[b]})
	}
	return writeWorkbook(w, []sheet{
		tableSheet("mean", res.Means),
		tableSheet("fold_enrichment", res.FoldEnrichment),
		sizes,
	})
}
