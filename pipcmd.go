// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package enrich

import (
	"flag"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

type pipEnrichment struct {
	outputOptions
}

func (cmd *pipEnrichment) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	cmd.register(flags)
	if code, stop := cmd.parseArgs(flags, args, stderr); stop {
		return code
	}
	err = cmd.run()
	if err != nil {
		return 1
	}
	return 0
}

func (cmd *pipEnrichment) run() error {
	schema, err := cmd.schema()
	if err != nil {
		return err
	}
	groups, err := schema.loadGroups(cmd.groups, cmd.threads)
	if err != nil {
		return err
	}
	out := newOutputSet(cmd.outputDir)
	for _, g := range groups {
		res, err := schema.PIPEnrichment(g)
		if err != nil {
			return err
		}
		for b, label := range res.Means.Columns {
			log.WithFields(log.Fields{
				"group":  g.Label,
				"bin":    label,
				"rows":   res.BinRows[b],
				"groups": res.BinGroups[b],
			}).Info("pip bin")
			if res.BinRows[b] == 0 {
				log.Warnf("%s: no variants in bin %s", g.Label, label)
			}
		}
		err = out.Render(g.Label+"_mean_array_by_pip.tsv", res.Means.WriteTSV)
		if err != nil {
			return err
		}
		err = out.Render(g.Label+"_annotation_by_pip.png", func(w io.Writer) error { return schema.RenderPIPChart(w, res) })
		if err != nil {
			return err
		}
		if cmd.npy {
			err = out.Render(g.Label+"_mean_array_by_pip.npy", res.Means.WriteNumpy)
			if err != nil {
				return err
			}
		}
		if cmd.xlsx {
			err = out.Render(g.Label+"_annotation_by_pip.xlsx", func(w io.Writer) error { return WritePIPWorkbook(w, res) })
			if err != nil {
				return err
			}
		}
		if cmd.html {
			err = out.Render(g.Label+"_annotation_by_pip.html", func(w io.Writer) error { return schema.RenderPIPHTML(w, res) })
			if err != nil {
				return err
			}
		}
	}
	return out.Commit()
}
