// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package frame

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/pgzip"
)

// Load reads a whole table into memory. The format is chosen by file
// name: *.parquet, or delimited text (*.csv comma-separated, anything
// else tab-separated), optionally gzip-compressed (*.gz).
func Load(fnm string) (*Frame, error) {
	if strings.HasSuffix(fnm, ".parquet") {
		f, err := loadParquet(fnm)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fnm, err)
		}
		return f, nil
	}
	file, err := os.Open(fnm)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	var rdr io.Reader = bufio.NewReaderSize(file, 1<<20)
	name := fnm
	if strings.HasSuffix(name, ".gz") {
		gzr, err := pgzip.NewReader(rdr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fnm, err)
		}
		defer gzr.Close()
		rdr = gzr
		name = strings.TrimSuffix(name, ".gz")
	}
	comma := '\t'
	if strings.HasSuffix(name, ".csv") {
		comma = ','
	}
	f, err := ReadDelimited(rdr, comma)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fnm, err)
	}
	return f, nil
}

// ReadDelimited reads a header row followed by data rows. Every row
// must have as many fields as the header. A leading unnamed column (a
// pandas index written with index=True) is dropped.
func ReadDelimited(rdr io.Reader, comma rune) (*Frame, error) {
	cr := csv.NewReader(rdr)
	cr.Comma = comma
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty input: no header row")
	} else if err != nil {
		return nil, err
	}
	skip := 0
	if len(header) > 0 && header[0] == "" {
		skip = 1
	}
	builders := make([]*columnBuilder, 0, len(header)-skip)
	for _, name := range header[skip:] {
		builders = append(builders, &columnBuilder{name: name})
	}
	rows := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		for i, b := range builders {
			b.appendCell(record[i+skip])
		}
		rows++
	}
	return build(rows, builders)
}
