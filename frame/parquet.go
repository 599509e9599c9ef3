// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package frame

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"
)

// pandas writes its row index as an extra column with this prefix
const pandasIndexPrefix = "__index_level_"

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func loadParquet(fnm string) (*Frame, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, err
	}
	defer db.Close()
	rows, err := db.Query("SELECT * FROM read_parquet(" + quoteLiteral(fnm) + ")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	builders := make([]*columnBuilder, len(names))
	for i, name := range names {
		builders[i] = &columnBuilder{name: name}
	}
	cells := make([]interface{}, len(names))
	ptrs := make([]interface{}, len(names))
	for i := range cells {
		ptrs[i] = &cells[i]
	}
	nrows := 0
	for rows.Next() {
		err = rows.Scan(ptrs...)
		if err != nil {
			return nil, err
		}
		for i, cell := range cells {
			err = appendParquetCell(builders[i], cell)
			if err != nil {
				return nil, err
			}
		}
		nrows++
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	var kept []*columnBuilder
	for _, b := range builders {
		if !strings.HasPrefix(b.name, pandasIndexPrefix) {
			kept = append(kept, b)
		}
	}
	return build(nrows, kept)
}

func appendParquetCell(b *columnBuilder, cell interface{}) error {
	switch v := cell.(type) {
	case nil:
		b.appendValue(math.NaN())
	case bool:
		if v {
			b.appendValue(1)
		} else {
			b.appendValue(0)
		}
	case float64:
		b.appendValue(v)
	case float32:
		b.appendValue(float64(v))
	case int8:
		b.appendValue(float64(v))
	case int16:
		b.appendValue(float64(v))
	case int32:
		b.appendValue(float64(v))
	case int64:
		b.appendValue(float64(v))
	case uint8:
		b.appendValue(float64(v))
	case uint16:
		b.appendValue(float64(v))
	case uint32:
		b.appendValue(float64(v))
	case uint64:
		b.appendValue(float64(v))
	case string:
		b.appendText(v)
	case []byte:
		b.appendText(string(v))
	case time.Time:
		b.appendText(v.Format(time.RFC3339Nano))
	default:
		return fmt.Errorf("column %q: unsupported parquet value type %T", b.name, cell)
	}
	return nil
}
