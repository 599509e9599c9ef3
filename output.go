// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package enrich

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// outputSet collects rendered output files in memory so nothing is
// written unless every output renders.
type outputSet struct {
	dir   string
	names []string
	data  map[string][]byte
}

func newOutputSet(dir string) *outputSet {
	return &outputSet{dir: dir, data: map[string][]byte{}}
}

// Render calls render with an in-memory buffer and keeps the result
// as the named file.
func (o *outputSet) Render(name string, render func(io.Writer) error) error {
	if _, dup := o.data[name]; dup {
		return fmt.Errorf("output file %q would be written twice", name)
	}
	var buf bytes.Buffer
	err := render(&buf)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	o.names = append(o.names, name)
	o.data[name] = buf.Bytes()
	return nil
}

// Commit writes each file as name~ and renames it into place.
func (o *outputSet) Commit() error {
	err := os.MkdirAll(o.dir, 0777)
	if err != nil {
		return err
	}
	for _, name := range o.names {
		fnm := filepath.Join(o.dir, name)
		log.Infof("writing %s", fnm)
		err = os.WriteFile(fnm+"~", o.data[name], 0666)
		if err != nil {
			return err
		}
		err = os.Rename(fnm+"~", fnm)
		if err != nil {
			return err
		}
	}
	return nil
}
